package sms

import (
	"context"
	"log/slog"

	"github.com/khaledhikmat/crowd-go/service/lgr"
)

type Message struct {
	Body string
	From string
	To   string
}

// Fake records every message and fails with Err when it is set.
type Fake struct {
	Err      error
	Messages []Message
}

func NewFake() *Fake {
	return &Fake{}
}

func (svc *Fake) Send(_ context.Context, body, from, to string) error {
	svc.Messages = append(svc.Messages, Message{Body: body, From: from, To: to})
	return svc.Err
}

type logService struct {
}

// NewLog only logs the alert. It stands in for a provider when no
// credentials are configured.
func NewLog() IService {
	return &logService{}
}

func (svc *logService) Send(_ context.Context, body, from, to string) error {
	lgr.Logger.Warn(
		"sms alert (log provider)",
		slog.String("body", body),
		slog.String("from", from),
		slog.String("to", to),
	)
	return nil
}
