package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/samueldev/signature-api/internal/logging"
)

// Service sends transactional mail over SMTP. It implements auth.Notifier;
// the caller decides whether a delivery failure is fatal.
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	baseURL      string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, baseURL string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    smtpUser,
		baseURL:      baseURL,
	}
}

// SendVerificationEmail sends the account activation link
func (s *Service) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	logger := logging.GetLoggerFromContext(ctx)

	verificationLink := fmt.Sprintf("%s/auth/verify?token=%s", s.baseURL, token)

	subject := "Verify Your Email"
	body, err := renderVerificationTemplate(verificationLink)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.send(toEmail, subject, body); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("verification email sent", "email", toEmail)
	return nil
}

func (s *Service) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}

var verificationTmpl = template.Must(template.New("verification").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Verify your email address</h2>
    <p>Thank you for signing up! Click the link below to verify your email address and activate your account.</p>
    <p><a href="{{.VerificationLink}}">Verify Email Address</a></p>
    <p>Or copy and paste this link into your browser:</p>
    <p style="word-break: break-all;">{{.VerificationLink}}</p>
    <p>If you didn't create an account, you can safely ignore this email.</p>
    <p style="font-size: 12px; color: #666;">This link will expire in 24 hours.</p>
</body>
</html>
`))

func renderVerificationTemplate(verificationLink string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		VerificationLink string
	}{
		VerificationLink: verificationLink,
	}

	if err := verificationTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
