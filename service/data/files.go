package data

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/khaledhikmat/crowd-go/model"
	"github.com/khaledhikmat/crowd-go/service/config"
)

type filesDBService struct {
	CfgSvc config.IService
}

// NewFilesDB keeps one JSON array file per entity under the data folder.
func NewFilesDB(cfgsvc config.IService) IService {
	return &filesDBService{
		CfgSvc: cfgsvc,
	}
}

func (svc *filesDBService) NewError(err interface{}) error {
	// Determine if the error is custom
	var customErr model.CustomError
	switch e := err.(type) {
	case model.CustomError:
		customErr = e
	case error:
		customErr.Processor = "N/A"
		customErr.Inner = e
		customErr.Message = e.Error()
		customErr.StackTrace = "N/A"
	default:
		customErr.Processor = "N/A"
		customErr.Message = fmt.Sprintf("%v", e)
		customErr.StackTrace = "N/A"
	}

	inner := ""
	if customErr.Inner != nil {
		inner = customErr.Inner.Error()
	}

	// Create an error object to persist
	errorData := struct {
		Timestamp  int64                  `json:"timestamp"`
		Processor  string                 `json:"processor"`
		Inner      string                 `json:"innerError"`
		Message    string                 `json:"message"`
		StackTrace string                 `json:"stackTrace"`
		Misc       map[string]interface{} `json:"misc"`
	}{
		Timestamp:  time.Now().Unix(),
		Processor:  customErr.Processor,
		Inner:      inner,
		Message:    customErr.Message,
		StackTrace: customErr.StackTrace,
		Misc:       customErr.Misc,
	}
	return newEntity(errorData, "errors", svc.CfgSvc)
}

func (svc *filesDBService) NewSensorStats(stats model.SensorStats) error {
	stats.Timestamp = time.Now().Unix()
	return newEntity(stats, "sensor-stats", svc.CfgSvc)
}

func (svc *filesDBService) NewAlert(alert model.AlertRecord) error {
	if alert.Timestamp == 0 {
		alert.Timestamp = time.Now().Unix()
	}
	return newEntity(alert, "alerts", svc.CfgSvc)
}

func (svc *filesDBService) RetrieveSensorStats() ([]model.SensorStats, error) {
	return retrieveEntities[model.SensorStats]("sensor-stats", svc.CfgSvc)
}

// RetrieveAlerts returns up to max of the most recent alerts, oldest first.
// A max <= 0 returns all of them.
func (svc *filesDBService) RetrieveAlerts(max int) ([]model.AlertRecord, error) {
	alerts, err := retrieveEntities[model.AlertRecord]("alerts", svc.CfgSvc)
	if err != nil {
		return nil, err
	}

	if max > 0 && len(alerts) > max {
		alerts = alerts[len(alerts)-max:]
	}
	return alerts, nil
}

func entityFile(filename string, cfgsvc config.IService) string {
	return fmt.Sprintf("%s/%s.json", cfgsvc.GetDataFolder(), filename)
}

func newEntity[T any](entity T, filename string, cfgsvc config.IService) error {
	entities, err := retrieveEntities[T](filename, cfgsvc)
	if err != nil {
		return err
	}

	entities = append(entities, entity)

	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfgsvc.GetDataFolder(), 0755); err != nil {
		return err
	}

	// Write the JSON data to the file (with truncation)
	return os.WriteFile(entityFile(filename, cfgsvc), data, 0644)
}

func retrieveEntities[T any](filename string, cfgsvc config.IService) ([]T, error) {
	entities := []T{}

	data, err := os.ReadFile(entityFile(filename, cfgsvc))
	if err != nil {
		if os.IsNotExist(err) {
			// WARNING: File not found, return empty slice
			return entities, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, err
	}

	return entities, nil
}
