package email

import (
	"context"
	"errors"
)

// Sender define la interfaz para envio de correos de alertas.
type Sender interface {
	SendHTML(ctx context.Context, to []string, subject, htmlBody string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendHTML(_ context.Context, _ []string, _ string, _ string) error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
