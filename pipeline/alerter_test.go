package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/khaledhikmat/crowd-go/model"
	"github.com/khaledhikmat/crowd-go/service/sms"
)

const testMessage = "Crowd Alert: %d people detected!"

type memJournal struct {
	records []model.AlertRecord
}

func (j *memJournal) NewAlert(alert model.AlertRecord) error {
	j.records = append(j.records, alert)
	return nil
}

func TestAlerterScenario(t *testing.T) {
	fake := sms.NewFake()
	alerter := NewThresholdAlerter(fake, 5, 60*time.Second, "+1000", "+2000", testMessage, time.Second)

	base := time.Now()
	steps := []struct {
		at        time.Duration
		count     int
		attempted bool
		throttled bool
	}{
		{0, 6, true, false},
		{30 * time.Second, 10, false, true},
		{61 * time.Second, 7, true, false},
	}

	for _, s := range steps {
		res := alerter.Observe(context.Background(), s.count, base.Add(s.at))
		if res.Attempted != s.attempted || res.Throttled != s.throttled {
			t.Errorf("t=%v: attempted=%v throttled=%v, want %v/%v", s.at, res.Attempted, res.Throttled, s.attempted, s.throttled)
		}
	}

	if len(fake.Messages) != 2 {
		t.Fatalf("sent %d alerts, want 2", len(fake.Messages))
	}
	msg := fake.Messages[0]
	if msg.Body != "Crowd Alert: 6 people detected!" {
		t.Errorf("first body = %q, want the count 6", msg.Body)
	}
	if msg.From != "+1000" || msg.To != "+2000" {
		t.Errorf("from/to = %s/%s", msg.From, msg.To)
	}

	// The alert after the interval carries the count observed then, not the
	// throttled 10.
	if body := fake.Messages[1].Body; !strings.Contains(body, "7") || strings.Contains(body, "10") {
		t.Errorf("second body = %q, want the count 7", body)
	}
}

func TestAlerterNeverAtOrBelowThreshold(t *testing.T) {
	fake := sms.NewFake()
	alerter := NewThresholdAlerter(fake, 5, 0, "", "", testMessage, time.Second)

	now := time.Now()
	for count := 0; count <= 5; count++ {
		res := alerter.Observe(context.Background(), count, now)
		if res.Attempted || res.Throttled {
			t.Errorf("count %d: unexpected alert activity %+v", count, res)
		}
	}
	if len(fake.Messages) != 0 {
		t.Fatalf("sent %d alerts, want 0", len(fake.Messages))
	}
	if alerter.Exceeds(5) || !alerter.Exceeds(6) {
		t.Fatal("threshold must be strict")
	}
}

func TestAlerterFailureStillAdvances(t *testing.T) {
	fake := sms.NewFake()
	fake.Err = errors.New("provider down")
	journal := &memJournal{}

	alerter := NewThresholdAlerter(fake, 1, time.Minute, "", "", testMessage, time.Second)
	alerter.Journal = journal
	alerter.RunID = "run-1"
	alerter.Camera = "lobby"

	base := time.Now()
	res := alerter.Observe(context.Background(), 3, base)
	if !res.Attempted || res.Err == nil {
		t.Fatalf("expected a failed attempt, got %+v", res)
	}

	res = alerter.Observe(context.Background(), 3, base.Add(10*time.Second))
	if !res.Throttled {
		t.Fatalf("expected the failed attempt to start the interval, got %+v", res)
	}

	if len(journal.records) != 1 {
		t.Fatalf("journaled %d alerts, want 1", len(journal.records))
	}
	rec := journal.records[0]
	if rec.Delivered || rec.Error != "provider down" {
		t.Errorf("record = %+v", rec)
	}
	if rec.RunID != "run-1" || rec.Camera != "lobby" || rec.Count != 3 || rec.Threshold != 1 {
		t.Errorf("record = %+v", rec)
	}
}

func TestAlerterSendsWithDeadline(t *testing.T) {
	var deadline bool
	svc := sendFunc(func(ctx context.Context) error {
		_, deadline = ctx.Deadline()
		return nil
	})

	alerter := NewThresholdAlerter(svc, 0, 0, "", "", testMessage, 5*time.Second)
	alerter.Observe(context.Background(), 1, time.Now())
	if !deadline {
		t.Fatal("send context has no deadline")
	}
}

type sendFunc func(ctx context.Context) error

func (f sendFunc) Send(ctx context.Context, _, _, _ string) error {
	return f(ctx)
}
