package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/khaledhikmat/crowd-go/model"
	"github.com/khaledhikmat/crowd-go/service/config"
)

type folderConfig struct {
	config.IService
	folder string
}

func (c folderConfig) GetDataFolder() string {
	return c.folder
}

func newTestDB(t *testing.T) (IService, string) {
	t.Helper()
	folder := filepath.Join(t.TempDir(), "data")
	return NewFilesDB(folderConfig{IService: config.NewHardCoded(), folder: folder}), folder
}

func TestAlertsRoundTrip(t *testing.T) {
	db, _ := newTestDB(t)

	for i := 6; i <= 9; i++ {
		if err := db.NewAlert(model.AlertRecord{Count: i, Threshold: 5, Delivered: i%2 == 0}); err != nil {
			t.Fatalf("NewAlert failed: %v", err)
		}
	}

	all, err := db.RetrieveAlerts(0)
	if err != nil {
		t.Fatalf("RetrieveAlerts failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d alerts, want 4", len(all))
	}
	if all[0].Timestamp == 0 {
		t.Error("timestamp should be filled in")
	}

	last, err := db.RetrieveAlerts(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 2 || last[0].Count != 8 || last[1].Count != 9 {
		t.Errorf("unexpected most recent alerts: %+v", last)
	}
}

func TestRetrieveFromEmptyFolder(t *testing.T) {
	db, _ := newTestDB(t)

	alerts, err := db.RetrieveAlerts(10)
	if err != nil {
		t.Fatalf("RetrieveAlerts failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("expected no alerts, got %d", len(alerts))
	}

	stats, err := db.RetrieveSensorStats()
	if err != nil || len(stats) != 0 {
		t.Errorf("expected no stats, got %v (%v)", stats, err)
	}
}

func TestSensorStatsAppend(t *testing.T) {
	db, _ := newTestDB(t)

	if err := db.NewSensorStats(model.SensorStats{RunID: "a", Frames: 10}); err != nil {
		t.Fatal(err)
	}
	if err := db.NewSensorStats(model.SensorStats{RunID: "b", Frames: 3}); err != nil {
		t.Fatal(err)
	}

	stats, err := db.RetrieveSensorStats()
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 || stats[1].RunID != "b" {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestNewErrorAcceptsCustomAndPlainErrors(t *testing.T) {
	db, folder := newTestDB(t)

	custom := model.GenError("sensor", errors.New("boom"), map[string]interface{}{"frame": 3}, "detect failed on frame %d", 3)
	if err := db.NewError(custom); err != nil {
		t.Fatalf("NewError(custom) failed: %v", err)
	}
	if err := db.NewError(errors.New("plain")); err != nil {
		t.Fatalf("NewError(plain) failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(folder, "errors.json")); err != nil {
		t.Errorf("errors file not written: %v", err)
	}
}
