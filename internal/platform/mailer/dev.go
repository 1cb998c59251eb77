package mailer

import "github.com/techfest-sliet/festd/pkg/logger"

// DevMailer logs mail instead of sending it. Used when no provider is
// configured so local sign-up flows stay usable.
type DevMailer struct{}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("dev mailer: outgoing mail", "to", toEmail, "subject", subject, "text", text)
	return "", nil
}

func (d *DevMailer) SendVerification(email, name, link string) error {
	logger.Info("dev mailer: verification link", "to", email, "link", link)
	return nil
}

func (d *DevMailer) SendPasswordReset(email, name, link string) error {
	logger.Info("dev mailer: password reset link", "to", email, "link", link)
	return nil
}
