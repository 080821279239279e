package data

import (
	"testing"

	"github.com/khaledhikmat/crowd-go/model"
)

func TestPreviousRun(t *testing.T) {
	db, _ := newTestDB(t)

	if _, ok, err := PreviousRun(db); err != nil || ok {
		t.Fatalf("empty history: ok=%v err=%v", ok, err)
	}

	for _, id := range []string{"first", "second"} {
		if err := db.NewSensorStats(model.SensorStats{RunID: id, StopReason: "END_OF_STREAM"}); err != nil {
			t.Fatal(err)
		}
	}

	prev, ok, err := PreviousRun(db)
	if err != nil || !ok {
		t.Fatalf("PreviousRun: ok=%v err=%v", ok, err)
	}
	if prev.RunID != "second" {
		t.Errorf("previous run = %q, want second", prev.RunID)
	}
}

func TestRunAlertsFiltersByRun(t *testing.T) {
	db, _ := newTestDB(t)

	records := []model.AlertRecord{
		{RunID: "old", Count: 6},
		{RunID: "cur", Count: 7, Delivered: true},
		{RunID: "old", Count: 8},
		{RunID: "cur", Count: 9},
	}
	for _, r := range records {
		if err := db.NewAlert(r); err != nil {
			t.Fatal(err)
		}
	}

	alerts, err := RunAlerts(db, "cur", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(alerts) != 2 || alerts[0].Count != 7 || alerts[1].Count != 9 {
		t.Errorf("unexpected run alerts: %+v", alerts)
	}

	recent, err := RunAlerts(db, "old", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Count != 8 {
		t.Errorf("window of 2 should keep only count 8 for old run, got %+v", recent)
	}
}
