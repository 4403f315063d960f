package mailer

import (
	"context"
	"log/slog"
)

// Message is a single transactional email. HTML is the rendered body; the
// template builders in templates.go produce it.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	HTML    string
}

// Mailer sends one message and reports a provider message id. Callers treat
// every failure as best-effort: log it, never fail the request that
// triggered it.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// LogMailer is the dev-mode fallback when no transport is configured. Same
// contract, no delivery.
type LogMailer struct {
	Log *slog.Logger
}

func NewLog(log *slog.Logger) *LogMailer {
	return &LogMailer{Log: log}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) (string, error) {
	m.Log.Info("mailer: log-only delivery",
		slog.String("to", msg.ToEmail),
		slog.String("subject", msg.Subject),
	)
	return "log-only", nil
}
