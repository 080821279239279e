package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/khaledhikmat/crowd-go/service/device"
	"github.com/khaledhikmat/crowd-go/service/lgr"
)

// DevicePublisher pushes person counts to the display device, at most once
// per throttle interval.
type DevicePublisher struct {
	Device   device.IService
	Throttle *Throttle
}

func NewDevicePublisher(svc device.IService, minInterval time.Duration) *DevicePublisher {
	return &DevicePublisher{
		Device:   svc,
		Throttle: NewThrottle(minInterval),
	}
}

// Publish reports whether an update was attempted. The throttle advances on
// every attempt, failed or not, so a broken device is never hammered.
func (p *DevicePublisher) Publish(ctx context.Context, count int, now time.Time) (device.Result, bool) {
	if !p.Throttle.TryFire(now) {
		return device.Result{}, false
	}

	res := p.Device.Update(ctx, count)
	switch res.Outcome {
	case device.Delivered:
		lgr.Logger.InfoContext(ctx,
			"count sent",
			slog.Int("count", count),
			slog.Int("status", res.StatusCode),
			slog.Duration("elapsed", res.Elapsed),
		)
	case device.StatusRejected:
		lgr.Logger.WarnContext(ctx,
			"device returned non-success status",
			slog.Int("count", count),
			slog.Int("status", res.StatusCode),
		)
	case device.TimedOut:
		lgr.Logger.WarnContext(ctx,
			"timeout connecting to device",
			slog.Int("count", count),
			slog.Any("error", res.Err),
		)
	case device.ConnectionFailed:
		lgr.Logger.WarnContext(ctx,
			"connection error to device",
			slog.Int("count", count),
			slog.Any("error", res.Err),
		)
	default:
		lgr.Logger.ErrorContext(ctx,
			"unexpected device update error",
			slog.Int("count", count),
			slog.Any("error", res.Err),
		)
	}

	return res, true
}
