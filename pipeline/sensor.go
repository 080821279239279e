package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khaledhikmat/crowd-go/model"
	"github.com/khaledhikmat/crowd-go/service/lgr"
	"github.com/khaledhikmat/crowd-go/service/metrics"
)

var tracer = otel.Tracer("github.com/khaledhikmat/crowd-go/pipeline")

// Sensor is the sensing loop: one frame at a time it counts persons, updates
// the device and raises crowd alerts. Everything runs on the caller's
// goroutine; notifications for a frame finish before the next frame is read.
type Sensor struct {
	RunID  string
	Camera model.Camera

	Source    FrameSource
	Counter   *PersonCounter
	Publisher *DevicePublisher  // nil disables device updates
	Alerter   *ThresholdAlerter // nil disables alerts
	Displays  []Display
	Journal   *DetectionJournal // nil disables the detection journal
	Metrics   *metrics.Metrics

	// MaxReadFailures is how many consecutive failed reads end the loop.
	MaxReadFailures int
	Now             func() time.Time

	state State
	stats model.SensorStats
}

func (s *Sensor) State() State {
	return s.state
}

func (s *Sensor) Stats() model.SensorStats {
	return s.stats
}

// Run loops until the context is cancelled, the operator quits, or the source
// ends or keeps failing. The stop signal is checked once per iteration, never
// in the middle of one. The source and displays are closed on return.
func (s *Sensor) Run(canxCtx context.Context) StopReason {
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.MaxReadFailures < 1 {
		s.MaxReadFailures = 1
	}

	s.state = Running
	s.stats = model.SensorStats{
		RunID:  s.RunID,
		Camera: s.Camera.Name,
	}

	beginTime := time.Now()
	var totalDetectTime time.Duration

	defer func() {
		s.state = Stopped

		if err := s.Source.Close(); err != nil {
			lgr.Logger.Warn(
				"error releasing video source",
				slog.Any("error", err),
			)
		}
		for _, d := range s.Displays {
			if err := d.Close(); err != nil {
				lgr.Logger.Warn(
					"error closing display",
					slog.Any("error", err),
				)
			}
		}

		uptime := int64(time.Since(beginTime).Seconds())
		s.stats.Uptime = uptime
		if uptime > 0 {
			s.stats.FPS = int(float64(s.stats.Frames) / float64(uptime))
		}
		if s.stats.Frames > 0 {
			s.stats.AvgDetectTime = totalDetectTime.Seconds() / float64(s.stats.Frames)
		}
	}()

	lgr.Logger.Info(
		"crowd detection running",
		slog.String("runID", s.RunID),
		slog.String("camera", s.Camera.Name),
		slog.String("source", s.Camera.SourceType),
	)

	readFailures := 0
	for {
		if canxCtx.Err() != nil {
			lgr.Logger.Info(
				"sensor context cancelled",
			)
			return s.stop(StopCancelled)
		}

		frame, err := s.Source.Read()
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				lgr.Logger.Info(
					"end of video stream",
				)
				return s.stop(StopEndOfStream)
			}

			readFailures++
			s.stats.ReadErrors++
			s.Metrics.ObserveReadError()
			lgr.Logger.Warn(
				"error reading frame from source",
				slog.Int("consecutiveFailures", readFailures),
				slog.Any("error", err),
			)
			if readFailures >= s.MaxReadFailures {
				return s.stop(StopReadFailure)
			}
			continue
		}
		readFailures = 0

		detectTime, quit := s.iterate(canxCtx, frame)
		totalDetectTime += detectTime
		if quit {
			lgr.Logger.Info(
				"operator requested quit",
			)
			return s.stop(StopOperator)
		}
	}
}

// iterate processes one frame and reports the detection time and whether an
// operator quit was requested.
func (s *Sensor) iterate(canxCtx context.Context, frame FrameData) (time.Duration, bool) {
	ctx, span := tracer.Start(canxCtx, "sensor.iteration")
	defer span.End()
	defer frame.Image.Close()

	// An in-flight notification always completes, even if a stop arrives.
	notifyCtx := context.WithoutCancel(ctx)

	startDetect := time.Now()
	result, err := s.Counter.Count(frame)
	detectTime := time.Since(startDetect)
	if err != nil {
		s.stats.DetectErrors++
		s.Metrics.ObserveDetectError()
		span.RecordError(err)
		lgr.Logger.ErrorContext(ctx,
			"detection failed, skipping frame",
			slog.Any("error", err),
		)
		return detectTime, s.quitRequested()
	}

	s.stats.Frames++
	if result.Count > s.stats.MaxCount {
		s.stats.MaxCount = result.Count
	}
	s.Metrics.ObserveFrame(result.Count, detectTime)
	span.SetAttributes(attribute.Int("crowd.count", result.Count))

	if s.Journal != nil {
		if err := s.Journal.Record(frame, result); err != nil {
			lgr.Logger.WarnContext(ctx,
				"failed to journal detections",
				slog.Any("error", err),
			)
		}
	}

	for _, d := range s.Displays {
		d.Render(frame, result)
	}

	s.publish(notifyCtx, result.Count)

	if s.Alerter != nil && s.Alerter.Exceeds(result.Count) {
		s.stats.Exceedances++
		lgr.Logger.WarnContext(ctx,
			"crowd count exceeds threshold",
			slog.Int("count", result.Count),
			slog.Int("threshold", s.Alerter.Threshold),
		)
		s.alert(notifyCtx, result.Count)
	}

	return detectTime, s.quitRequested()
}

func (s *Sensor) publish(ctx context.Context, count int) {
	if s.Publisher == nil {
		return
	}

	res, fired := s.Publisher.Publish(ctx, count, s.Now())
	if !fired {
		s.stats.DeviceThrottled++
		s.Metrics.ObserveDeviceThrottled()
		return
	}

	s.Metrics.ObserveDevice(res.Outcome.String())
	if res.OK() {
		s.stats.DeviceUpdates++
	} else {
		s.stats.DeviceFailures++
	}
}

func (s *Sensor) alert(ctx context.Context, count int) {
	res := s.Alerter.Observe(ctx, count, s.Now())
	switch {
	case res.Throttled:
		s.stats.AlertsThrottled++
		s.Metrics.ObserveAlertThrottled()
	case res.Attempted && res.Err != nil:
		s.stats.AlertFailures++
		s.Metrics.ObserveAlert("failed")
	case res.Attempted:
		s.stats.Alerts++
		s.Metrics.ObserveAlert("sent")
	}
}

// quitRequested polls every display so each one gets to process its events.
func (s *Sensor) quitRequested() bool {
	quit := false
	for _, d := range s.Displays {
		if d.QuitRequested() {
			quit = true
		}
	}
	return quit
}

func (s *Sensor) stop(reason StopReason) StopReason {
	s.stats.StopReason = string(reason)
	lgr.Logger.Info(
		"sensor stopped",
		slog.String("runID", s.RunID),
		slog.String("reason", string(reason)),
		slog.Int("frames", s.stats.Frames),
	)
	return reason
}
