package mail

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// logMailer records outbound messages instead of delivering them. Used when SMTP is
// disabled so local environments still exercise the invitation flows.
type logMailer struct {
	log *zap.Logger
}

// NewLogMailer returns a Mailer that only logs message metadata.
func NewLogMailer(log *zap.Logger) Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &logMailer{log: log}
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	recipients := uniqueAddresses(msg.To)
	if len(recipients) == 0 {
		return errors.New("mail: at least one recipient is required")
	}

	m.log.Info("email not delivered (smtp disabled)",
		zap.Strings("to", recipients),
		zap.String("subject", strings.TrimSpace(msg.Subject)),
		zap.Int("bytes", len(msg.HTML)+len(msg.Body)),
	)
	return nil
}
