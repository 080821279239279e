package data

import "github.com/khaledhikmat/crowd-go/model"

// PreviousRun returns the stats of the most recently persisted run, if any.
func PreviousRun(svc IService) (model.SensorStats, bool, error) {
	stats, err := svc.RetrieveSensorStats()
	if err != nil || len(stats) == 0 {
		return model.SensorStats{}, false, err
	}
	return stats[len(stats)-1], true, nil
}

// RunAlerts returns the alerts of one run among the most recent max records.
func RunAlerts(svc IService, runID string, max int) ([]model.AlertRecord, error) {
	alerts, err := svc.RetrieveAlerts(max)
	if err != nil {
		return nil, err
	}

	run := []model.AlertRecord{}
	for _, a := range alerts {
		if a.RunID == runID {
			run = append(run, a)
		}
	}
	return run, nil
}
