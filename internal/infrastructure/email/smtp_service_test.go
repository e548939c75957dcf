package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-backend/internal/config"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(t *testing.T, sendErr error) (*smtpEmailService, *capturedMail) {
	t.Helper()
	svc := NewSMTPEmailService(config.SMTPConfig{
		Host:      "localhost",
		Port:      "1025",
		From:      "noreply@portfolio.dev",
		ContactTo: "me@portfolio.dev",
	}).(*smtpEmailService)

	got := &capturedMail{}
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		got.addr, got.from, got.to, got.msg = addr, from, to, string(msg)
		return sendErr
	}
	return svc, got
}

func TestSendContactEmail(t *testing.T) {
	svc, got := newTestService(t, nil)

	err := svc.SendContactEmail(context.Background(), ContactEmailData{
		Name:    "Ada",
		Email:   "ada@example.com",
		Subject: "Hello\r\nBcc: victim@example.com",
		Message: "line one\nline two",
		SentAt:  time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost:1025", got.addr)
	assert.Equal(t, "noreply@portfolio.dev", got.from)
	assert.Equal(t, []string{"me@portfolio.dev"}, got.to)
	assert.Contains(t, got.msg, "Reply-To: ada@example.com\r\n")
	assert.Contains(t, got.msg, "Subject: [Contact] Hello Bcc: victim@example.com\r\n")
	assert.NotContains(t, got.msg, "\r\nBcc:")
	assert.Contains(t, got.msg, "line one\r\nline two")
	assert.True(t, strings.HasPrefix(got.msg, "From: noreply@portfolio.dev\r\n"))
}

func TestSendContactEmail_DefaultSubject(t *testing.T) {
	svc, got := newTestService(t, nil)

	require.NoError(t, svc.SendContactEmail(context.Background(), ContactEmailData{
		Name: "Ada", Email: "ada@example.com", Message: "hi",
	}))
	assert.Contains(t, got.msg, "Subject: [Contact] New message from your portfolio\r\n")
}

func TestSendEmail_Errors(t *testing.T) {
	svc, _ := newTestService(t, errors.New("connection refused"))

	err := svc.SendEmail(context.Background(), EmailRequest{To: []string{"a@b.c"}, Subject: "x"})
	assert.ErrorContains(t, err, "connection refused")

	err = svc.SendEmail(context.Background(), EmailRequest{})
	assert.Error(t, err)

	svc.contactTo = ""
	err = svc.SendContactEmail(context.Background(), ContactEmailData{Name: "a"})
	assert.Error(t, err)
}
