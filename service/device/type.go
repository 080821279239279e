package device

import (
	"context"
	"time"
)

// Outcome classifies a single device update attempt.
type Outcome int

const (
	Delivered Outcome = iota
	StatusRejected
	TimedOut
	ConnectionFailed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case StatusRejected:
		return "status_rejected"
	case TimedOut:
		return "timed_out"
	case ConnectionFailed:
		return "connection_failed"
	default:
		return "failed"
	}
}

type Result struct {
	Outcome    Outcome
	StatusCode int
	Err        error
	Elapsed    time.Duration
}

func (r Result) OK() bool {
	return r.Outcome == Delivered
}

// IService delivers a person count to the display/controller device.
// Implementations never block longer than their configured timeout.
type IService interface {
	Update(ctx context.Context, count int) Result
	Close() error
}
