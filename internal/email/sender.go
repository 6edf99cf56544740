package email

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"storefront/internal/config"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// NewSender picks SMTP delivery when a host is configured and falls back to
// logging the message.
func NewSender(cfg config.Email, log *zap.Logger) Sender {
	if cfg.SMTPHost == "" {
		return NewLogSender(log)
	}
	return NewSMTPSender(cfg)
}

type logSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) Sender {
	return &logSender{log: log}
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.log.Info("email not sent, no smtp host configured",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
	)
	return nil
}

type smtpSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(cfg config.Email) Sender {
	s := &smtpSender{
		addr: net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort)),
		from: cfg.From,
	}
	if cfg.SMTPUser != "" {
		s.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPHost)
	}
	return s
}

func (s *smtpSender) Send(_ context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("send email: no recipient")
	}
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, buildMIME(s.from, msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	return nil
}

func buildMIME(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}
