package sms

import "context"

// IService sends a text message. Implementations bound the call with their
// own timeout so a hung provider cannot stall the caller indefinitely.
type IService interface {
	Send(ctx context.Context, body, from, to string) error
}
