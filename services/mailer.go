// services/mailer.go
package services

import (
	"fmt"
	"os"
	"time"

	"github.com/dajohi/goemail"
)

// Mailer sends account and invoice notifications. Callers treat sends as
// fire-and-forget: a provider outage must never fail the write that
// triggered the notification.
type Mailer interface {
	IsEnabled() bool
	SendVerification(to, token string) error
	SendPasswordReset(to, token string) error
	SendPaymentReminder(to, invoiceNumber string, dueDate time.Time, amount float64, currency string) error
}

// smtpMailer sends email from a preset address over SMTP.
type smtpMailer struct {
	smtp        *goemail.SMTP
	mailAddress string
	mailName    string
	serverURL   string
}

// NewMailerFromEnv builds an SMTP mailer from SMTP_URL, MAIL_ADDRESS,
// MAIL_NAME and SERVER_URL. An empty SMTP_URL yields a disabled mailer
// whose sends are no-ops.
func NewMailerFromEnv() (Mailer, error) {
	smtpURL := os.Getenv("SMTP_URL")
	if smtpURL == "" {
		return &disabledMailer{}, nil
	}

	smtp, err := goemail.NewSMTP(smtpURL, nil)
	if err != nil {
		return nil, fmt.Errorf("smtp setup: %w", err)
	}

	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	return &smtpMailer{
		smtp:        smtp,
		mailAddress: os.Getenv("MAIL_ADDRESS"),
		mailName:    os.Getenv("MAIL_NAME"),
		serverURL:   serverURL,
	}, nil
}

func (m *smtpMailer) IsEnabled() bool { return true }

func (m *smtpMailer) send(to, subject, body string) error {
	msg := goemail.NewMessage(m.mailAddress, subject, body)
	if m.mailName != "" {
		msg.SetName(m.mailName)
	}
	msg.AddTo(to)
	return m.smtp.Send(msg)
}

func (m *smtpMailer) SendVerification(to, token string) error {
	link := fmt.Sprintf("%s/verify/%s", m.serverURL, token)
	body := fmt.Sprintf("Thank you for registering!\n\n"+
		"Please click the link below to verify your account:\n%s\n\n"+
		"If you did not register, you can safely ignore this email.", link)
	return m.send(to, "Verify your FreelanceBill account", body)
}

func (m *smtpMailer) SendPasswordReset(to, token string) error {
	link := fmt.Sprintf("%s/reset-password/%s", m.serverURL, token)
	body := fmt.Sprintf("To reset your password, click the link below:\n%s\n\n"+
		"If you did not request this, ignore this email.", link)
	return m.send(to, "Reset your FreelanceBill password", body)
}

func (m *smtpMailer) SendPaymentReminder(to, invoiceNumber string, dueDate time.Time, amount float64, currency string) error {
	body := fmt.Sprintf("This is a friendly reminder that invoice #%s for %.2f %s "+
		"was due on %s and is still unpaid.\n\n"+
		"If you have already sent the payment, please disregard this email.",
		invoiceNumber, amount, currency, dueDate.Format("2006-01-02"))
	return m.send(to, fmt.Sprintf("Invoice #%s is overdue", invoiceNumber), body)
}

// disabledMailer drops all mail. Used when no SMTP server is configured.
type disabledMailer struct{}

func (d *disabledMailer) IsEnabled() bool { return false }

func (d *disabledMailer) SendVerification(string, string) error { return nil }

func (d *disabledMailer) SendPasswordReset(string, string) error { return nil }

func (d *disabledMailer) SendPaymentReminder(string, string, time.Time, float64, string) error {
	return nil
}
