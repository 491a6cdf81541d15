// Package notify is the seam between the reconciliation engine and the
// center's outbound side channels (email/SMS gateways live behind the
// Sender interface; delivery itself is not this server's concern).
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Event is a single outbound notification.
type Event struct {
	Kind      string            `json:"kind"`
	Recipient string            `json:"recipient,omitempty"`
	Subject   string            `json:"subject"`
	Body      string            `json:"body,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sender delivers events to whatever channel is configured.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// LogSender writes events to the structured log. It is the default sender
// when no gateway is configured.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, ev Event) error {
	evt := s.logger.Info().
		Str("kind", ev.Kind).
		Str("subject", ev.Subject)
	if ev.Recipient != "" {
		evt = evt.Str("recipient", ev.Recipient)
	}
	for k, v := range ev.Metadata {
		evt = evt.Str(k, v)
	}
	evt.Msg("notification")
	return nil
}

// NopSender discards every event.
type NopSender struct{}

func (NopSender) Send(context.Context, Event) error { return nil }
