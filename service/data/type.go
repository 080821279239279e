package data

import "github.com/khaledhikmat/crowd-go/model"

type IService interface {
	NewError(err interface{}) error
	NewSensorStats(stats model.SensorStats) error
	NewAlert(alert model.AlertRecord) error

	RetrieveSensorStats() ([]model.SensorStats, error)
	RetrieveAlerts(max int) ([]model.AlertRecord, error)
}
