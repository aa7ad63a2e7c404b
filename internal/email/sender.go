// Package email delivers composed messages over SMTP. The Sender
// interface keeps the transport swappable for tests and for local
// development without a mail server.
package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog/log"
)

// Sender sends a fully composed RFC 5322 message, headers included.
type Sender interface {
	Send(ctx context.Context, to []string, rawMessage []byte) error
}

// SMTPConfig is the subset of configuration the sender needs.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewSender returns an SMTP-backed sender, or a logging sender when no
// host is configured.
func NewSender(cfg SMTPConfig) Sender {
	if cfg.Host == "" {
		log.Info().Msg("SMTP host not configured, using logging email sender")
		return &LogSender{from: cfg.From}
	}
	return &SMTPSender{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
}

// SMTPSender delivers via net/smtp.
type SMTPSender struct {
	cfg  SMTPConfig
	auth smtp.Auth
	addr string
}

func (s *SMTPSender) Send(_ context.Context, to []string, rawMessage []byte) error {
	if err := smtp.SendMail(s.addr, s.auth, s.cfg.From, to, rawMessage); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	log.Debug().Strs("to", to).Msg("email sent")
	return nil
}

// LogSender logs messages instead of sending them.
type LogSender struct {
	from string
}

func (s *LogSender) Send(_ context.Context, to []string, rawMessage []byte) error {
	log.Info().
		Str("from", s.from).
		Strs("to", to).
		Int("bytes", len(rawMessage)).
		Msg("email logged instead of sent")
	return nil
}
