package pipeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/khaledhikmat/crowd-go/service/device"
	"github.com/khaledhikmat/crowd-go/service/sms"
)

func TestThrottleFirstCallFires(t *testing.T) {
	th := NewThrottle(time.Hour)
	if !th.TryFire(time.Now()) {
		t.Fatal("first call must fire")
	}
}

func TestNotifiersKeepTheirIntervals(t *testing.T) {
	pub := NewDevicePublisher(device.NewFake(), time.Second)
	if got := pub.Throttle.Interval(); got != time.Second {
		t.Errorf("device interval = %v, want 1s", got)
	}

	alerter := NewThresholdAlerter(sms.NewFake(), 5, time.Minute, "", "", testMessage, time.Second)
	if got := alerter.Throttle.Interval(); got != time.Minute {
		t.Errorf("alert interval = %v, want 1m", got)
	}
}

func TestThrottleWithinInterval(t *testing.T) {
	base := time.Now()
	th := NewThrottle(time.Second)

	tests := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{100 * time.Millisecond, false},
		{999 * time.Millisecond, false},
		{time.Second, true},
		{1500 * time.Millisecond, false},
		{2 * time.Second, true},
	}

	for _, tt := range tests {
		if got := th.TryFire(base.Add(tt.offset)); got != tt.want {
			t.Errorf("TryFire(+%v) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestThrottleZeroIntervalAlwaysFires(t *testing.T) {
	th := NewThrottle(0)
	now := time.Now()
	for i := 0; i < 5; i++ {
		if !th.TryFire(now) {
			t.Fatalf("call %d did not fire", i)
		}
	}
}

func TestThrottleSpacing(t *testing.T) {
	interval := 250 * time.Millisecond
	rng := rand.New(rand.NewSource(7))

	th := NewThrottle(interval)
	now := time.Now()
	var fires []time.Time
	for i := 0; i < 2000; i++ {
		now = now.Add(time.Duration(rng.Intn(40)) * time.Millisecond)
		if th.TryFire(now) {
			fires = append(fires, now)
		}
	}

	if len(fires) < 2 {
		t.Fatalf("expected several fires, got %d", len(fires))
	}
	for i := 1; i < len(fires); i++ {
		if gap := fires[i].Sub(fires[i-1]); gap < interval {
			t.Fatalf("fires %d and %d are %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}
