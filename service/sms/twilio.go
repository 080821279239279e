package sms

import (
	"context"
	"log/slog"
	"time"

	goxerrors "github.com/mdobak/go-xerrors"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/crowd-go/service/lgr"
)

type twilioService struct {
	Client *twilio.RestClient
}

func NewTwilio(accountSID, authToken string, timeout time.Duration) IService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	// The messages API has no context support; the HTTP timeout is the bound.
	client.SetTimeout(timeout)

	return &twilioService{
		Client: client,
	}
}

func (svc *twilioService) Send(ctx context.Context, body, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := svc.Client.Api.CreateMessage(params)
	if err != nil {
		return goxerrors.WithStackTrace(xerrors.Errorf("twilio create message: %w", err), 0)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	lgr.Logger.Debug(
		"twilio message accepted",
		slog.String("sid", sid),
		slog.String("to", to),
	)
	return nil
}
