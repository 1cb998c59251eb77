package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

type Mailer struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	Enabled bool
}

func NewMailer(apiKey, fromName, fromEmail string) *Mailer {
	m := &Mailer{
		Enabled: apiKey != "" && fromEmail != "",
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
	if m.Enabled {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *Mailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	if !m.Enabled {
		return "", errors.New("mailer disabled (missing MAILERSEND_API_KEY or MAILER_FROM)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	// MailerSend uses X-Message-Id
	return res.Header.Get("X-Message-Id"), nil
}

func (m *Mailer) SendVerification(email, name, link string) error {
	subject := "Verify your Techfest account"
	text := fmt.Sprintf("Hi %s,\n\nConfirm your email address by opening this link:\n%s", name, link)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Confirm your email address by clicking <a href="%s">this link</a>.</p>`, name, link)
	_, err := m.Send(email, name, subject, text, html)
	return err
}

func (m *Mailer) SendPasswordReset(email, name, link string) error {
	subject := "Reset your Techfest password"
	text := fmt.Sprintf("Hi %s,\n\nReset your password by opening this link:\n%s\n\nIf you did not ask for this, ignore this mail.", name, link)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Reset your password by clicking <a href="%s">this link</a>.</p><p>If you did not ask for this, ignore this mail.</p>`, name, link)
	_, err := m.Send(email, name, subject, text, html)
	return err
}
