package mode

import (
	"context"
	"log/slog"

	"github.com/khaledhikmat/crowd-go/model"
	"github.com/khaledhikmat/crowd-go/service/config"
	"github.com/khaledhikmat/crowd-go/service/data"
	"github.com/khaledhikmat/crowd-go/service/lgr"
)

type Processor func(canxCtx context.Context,
	cfgSvc config.IService,
	dataSvc data.IService) error

func procStats(datasvc data.IService, stats interface{}) {
	switch stats := stats.(type) {
	case model.SensorStats:
		procSensorStats(datasvc, stats)
	default:
		lgr.Logger.Error(
			"unknown stats type",
			slog.Any("stats", stats),
		)
	}
}

func procSensorStats(datasvc data.IService, stats model.SensorStats) {
	err := datasvc.NewSensorStats(stats)
	if err != nil {
		lgr.Logger.Error(
			"failed to store sensor stats",
			slog.Any("stats", stats),
			slog.Any("error", err),
		)
	}
}

func procError(datasvc data.IService, err interface{}) {
	errTemp := datasvc.NewError(err)
	if errTemp != nil {
		lgr.Logger.Error(
			"failed to store error",
			slog.Any("error", errTemp),
		)
	}
}

// procAlerts reports what the journal holds for the run that just stopped.
func procAlerts(datasvc data.IService, runID string, stats model.SensorStats) {
	attempted := stats.Alerts + stats.AlertFailures
	if attempted == 0 {
		return
	}

	alerts, err := data.RunAlerts(datasvc, runID, attempted)
	if err != nil {
		lgr.Logger.Error(
			"failed to retrieve run alerts",
			slog.String("runID", runID),
			slog.Any("error", err),
		)
		return
	}

	delivered := 0
	for _, a := range alerts {
		if a.Delivered {
			delivered++
		}
	}
	lgr.Logger.Info(
		"run alerts",
		slog.String("runID", runID),
		slog.Int("journaled", len(alerts)),
		slog.Int("delivered", delivered),
	)
}
