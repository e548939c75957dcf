package email

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"portfolio-backend/internal/config"
	"portfolio-backend/pkg/logger"
)

type EmailService interface {
	SendEmail(ctx context.Context, req EmailRequest) error
	// SendContactEmail relays a visitor's contact form to the site owner.
	SendContactEmail(ctx context.Context, data ContactEmailData) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpEmailService struct {
	smtpAddr  string
	smtpFrom  string
	contactTo string
	auth      smtp.Auth
	send      sendFunc
}

// NewSMTPEmailService uses PLAIN auth when a username is configured,
// otherwise it talks to an unauthenticated relay (mailhog in development).
func NewSMTPEmailService(cfg config.SMTPConfig) EmailService {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &smtpEmailService{
		smtpAddr:  cfg.Host + ":" + cfg.Port,
		smtpFrom:  cfg.From,
		contactTo: cfg.ContactTo,
		auth:      auth,
		send:      smtp.SendMail,
	}
}

func (s *smtpEmailService) SendEmail(ctx context.Context, req EmailRequest) error {
	if len(req.To) == 0 {
		return errors.New("email has no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.smtpFrom, req)
	if err := s.send(s.smtpAddr, s.auth, s.smtpFrom, req.To, msg); err != nil {
		logger.Info("Failed to send email", map[string]interface{}{
			"error":     err.Error(),
			"to":        strings.Join(req.To, ","),
			"smtp_addr": s.smtpAddr,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *smtpEmailService) SendContactEmail(ctx context.Context, data ContactEmailData) error {
	if s.contactTo == "" {
		return errors.New("contact recipient is not configured")
	}

	subject := data.Subject
	if subject == "" {
		subject = "New message from your portfolio"
	}
	sentAt := data.SentAt
	if sentAt.IsZero() {
		sentAt = time.Now()
	}

	body := fmt.Sprintf(`You received a new message through the contact form.

From:    %s <%s>
Sent at: %s
IP:      %s

%s
`, data.Name, data.Email, sentAt.UTC().Format(time.RFC1123), data.IPAddress, data.Message)

	return s.SendEmail(ctx, EmailRequest{
		To:      []string{s.contactTo},
		ReplyTo: data.Email,
		Subject: "[Contact] " + subject,
		Body:    body,
	})
}

func buildMessage(from string, req EmailRequest) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", headerValue(from))
	fmt.Fprintf(&b, "To: %s\r\n", headerValue(strings.Join(req.To, ", ")))
	if req.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", headerValue(req.ReplyTo))
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", headerValue(req.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(req.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// headerValue drops line breaks so user input cannot inject headers.
func headerValue(v string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(v)
}
