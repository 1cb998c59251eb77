package mailer

// Service delivers account mail. Implementations must tolerate being
// called concurrently from request handlers.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendVerification(email, name, link string) error
	SendPasswordReset(email, name, link string) error
}
