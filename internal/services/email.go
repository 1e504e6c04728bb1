package services

import (
	"fmt"
	"net/smtp"
	"time"

	"billing_app_echo/internal/config"
)

// Mailer is the outbound mail collaborator. Sends are best-effort; a failed
// send is logged by the caller and never rolls anything back.
type Mailer interface {
	SendPaymentConfirmation(to, name, planName string, amount float64) error
	SendSubscriptionExpiring(to, name string, expiresAt time.Time) error
}

type EmailService struct {
	host     string
	port     string
	user     string
	password string
	from     string
	appURL   string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPass,
		from:     cfg.EmailFrom,
		appURL:   cfg.AppURL,
	}
}

func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if s.host == "" || s.port == "" || s.user == "" || s.password == "" {
		return fmt.Errorf("SMTP credentials not fully configured")
	}

	auth := smtp.PlainAuth("", s.user, s.password, s.host)

	// Build the message
	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
		"\r\n"+
		"%s\r\n", to[0], subject, body))

	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, to, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendPaymentConfirmation notifies a user that their subscription payment was
// approved and the subscription is active
func (s *EmailService) SendPaymentConfirmation(to, name, planName string, amount float64) error {
	body := fmt.Sprintf(`<html><body>
<h2>Payment confirmed</h2>
<p>Hello, %s!</p>
<p>Your payment was processed successfully.</p>
<p><strong>Plan:</strong> %s<br><strong>Amount:</strong> %.2f</p>
<p>Your subscription is active. <a href="%s/dashboard">Open your dashboard</a>.</p>
</body></html>`, name, planName, amount, s.appURL)

	return s.SendEmail([]string{to}, "Payment confirmed", body)
}

// SendSubscriptionExpiring reminds a user that their current billing period
// ends soon
func (s *EmailService) SendSubscriptionExpiring(to, name string, expiresAt time.Time) error {
	body := fmt.Sprintf(`<html><body>
<h2>Subscription expiring</h2>
<p>Hello, %s!</p>
<p>Your subscription expires on <strong>%s</strong>.</p>
<p>Renew it to keep your access uninterrupted: <a href="%s/dashboard/subscription">manage subscription</a>.</p>
</body></html>`, name, expiresAt.Format("2006-01-02"), s.appURL)

	return s.SendEmail([]string{to}, "Your subscription is expiring", body)
}
