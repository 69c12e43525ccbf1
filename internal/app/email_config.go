package app

import (
	"strings"

	"github.com/romyseb/wedding/pkg/mail"
)

const defaultFromAddress = "Romina & Sebas <contact@romyseb.ch>"

// SMTPSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.FromAddress(),
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

// FromAddress returns the configured sender, or the site default when unset.
func (c EmailConfig) FromAddress() string {
	if from := strings.TrimSpace(c.From); from != "" {
		return from
	}
	return defaultFromAddress
}
