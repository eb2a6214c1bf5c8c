package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"storeapi/internal/core/port"
	"storeapi/pkg/config"
)

type SmtpSender struct {
	settings config.SmtpSettings
}

func NewSmtpSender(settings config.SmtpSettings) port.EmailSender {
	return &SmtpSender{settings: settings}
}

func (s *SmtpSender) SendEmail(ctx context.Context, to string, subject string, body string) error {
	addr := fmt.Sprintf("%s:%s", s.settings.Host, s.settings.Port)

	var auth smtp.Auth

	if s.settings.SenderPassword != "" {
		auth = smtp.PlainAuth("", s.settings.SenderEmail, s.settings.SenderPassword, s.settings.Host)
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.settings.SenderName, s.settings.SenderEmail),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	done := make(chan error, 1)

	go func() {
		done <- smtp.SendMail(addr, auth, s.settings.SenderEmail, []string{to}, []byte(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			slog.Error("Email#SendEmail", "send_mail", err)
			return err
		}

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
