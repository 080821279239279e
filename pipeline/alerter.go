package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/khaledhikmat/crowd-go/model"
	"github.com/khaledhikmat/crowd-go/service/lgr"
	"github.com/khaledhikmat/crowd-go/service/sms"
)

// AlertJournal records alert attempts. The data service satisfies it.
type AlertJournal interface {
	NewAlert(alert model.AlertRecord) error
}

type AlertResult struct {
	Attempted bool
	Throttled bool
	Body      string
	Err       error
}

// ThresholdAlerter sends an SMS when the count exceeds Threshold, at most
// once per throttle interval.
type ThresholdAlerter struct {
	SMS       sms.IService
	Throttle  *Throttle
	Threshold int
	From      string
	To        string
	Message   string
	Timeout   time.Duration
	Journal   AlertJournal
	RunID     string
	Camera    string
}

func NewThresholdAlerter(svc sms.IService, threshold int, minInterval time.Duration, from, to, message string, timeout time.Duration) *ThresholdAlerter {
	return &ThresholdAlerter{
		SMS:       svc,
		Throttle:  NewThrottle(minInterval),
		Threshold: threshold,
		From:      from,
		To:        to,
		Message:   message,
		Timeout:   timeout,
	}
}

func (a *ThresholdAlerter) Exceeds(count int) bool {
	return count > a.Threshold
}

// Observe sends an alert for count if it exceeds the threshold and the
// throttle allows it. Send failures are logged and returned, never raised,
// and the throttle still advances.
func (a *ThresholdAlerter) Observe(ctx context.Context, count int, now time.Time) AlertResult {
	if !a.Exceeds(count) {
		return AlertResult{}
	}

	if !a.Throttle.TryFire(now) {
		return AlertResult{Throttled: true}
	}

	body := fmt.Sprintf(a.Message, count)

	sendCtx := ctx
	if a.Timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	err := a.SMS.Send(sendCtx, body, a.From, a.To)
	if err != nil {
		lgr.Logger.ErrorContext(ctx,
			"sms failed",
			slog.Int("count", count),
			slog.Any("error", err),
		)
	} else {
		lgr.Logger.InfoContext(ctx,
			"sms sent",
			slog.String("message", body),
		)
	}

	a.journal(ctx, count, body, err, now)

	return AlertResult{
		Attempted: true,
		Body:      body,
		Err:       err,
	}
}

func (a *ThresholdAlerter) journal(ctx context.Context, count int, body string, sendErr error, now time.Time) {
	if a.Journal == nil {
		return
	}

	record := model.AlertRecord{
		RunID:     a.RunID,
		Camera:    a.Camera,
		Count:     count,
		Threshold: a.Threshold,
		Body:      body,
		Delivered: sendErr == nil,
		Timestamp: now.Unix(),
	}
	if sendErr != nil {
		record.Error = sendErr.Error()
	}

	if err := a.Journal.NewAlert(record); err != nil {
		lgr.Logger.WarnContext(ctx,
			"failed to journal alert",
			slog.Any("error", err),
		)
	}
}
