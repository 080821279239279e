package pipeline

import "time"

// Throttle lets an action fire at most once per interval. It is not safe for
// concurrent use; each notification channel owns its own instance.
type Throttle struct {
	interval time.Duration
	last     time.Time
	fired    bool
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// TryFire reports whether the action may fire at now and, if so, records now
// as the last firing. The first call always fires.
func (t *Throttle) TryFire(now time.Time) bool {
	if t.fired && now.Sub(t.last) < t.interval {
		return false
	}

	t.last = now
	t.fired = true
	return true
}

func (t *Throttle) Interval() time.Duration {
	return t.interval
}
