// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"freelancebill-backend/models"
	"freelancebill-backend/utils"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

// ReminderService runs the daily overdue sweep: invoices past their due
// date are flipped to Overdue and the billed client gets a payment
// reminder, by email when we have an address, by SMS otherwise. The lazy
// reconcile on read paths stays in place; the sweep only makes sure
// reminders go out even for invoices nobody is looking at.
type ReminderService struct {
	db     *gorm.DB
	mailer Mailer
	sms    *twilio.RestClient
}

func NewReminderService(db *gorm.DB, mailer Mailer) *ReminderService {
	s := &ReminderService{db: db, mailer: mailer}

	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	if accountSid != "" && authToken != "" {
		s.sms = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		})
	}

	return s
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	c.AddFunc("0 9 * * *", s.ProcessOverdueInvoices)

	c.Start()
	log.Println("Overdue reminder scheduler started")
}

// ProcessOverdueInvoices reconciles and notifies every unpaid invoice whose
// due date has passed. Failures are logged per invoice, never propagated.
func (s *ReminderService) ProcessOverdueInvoices() {
	log.Println("Starting daily overdue invoice processing...")

	today := utils.BeginningOfDay(time.Now())

	var invoices []models.Invoice
	if err := s.db.Where("status = ? AND due_date < ?", models.StatusUnpaid, today).
		Find(&invoices).Error; err != nil {
		log.Printf("Failed to fetch overdue invoices: %v", err)
		return
	}

	for i := range invoices {
		inv := &invoices[i]

		if err := s.db.Transaction(func(tx *gorm.DB) error {
			return ReconcileOverdue(tx, inv, time.Now())
		}); err != nil {
			log.Printf("Invoice %s: failed to mark overdue: %v", inv.ID, err)
			continue
		}

		s.sendReminder(inv)
	}

	log.Printf("Daily overdue invoice processing completed (%d invoices)", len(invoices))
}

func (s *ReminderService) sendReminder(inv *models.Invoice) {
	var client models.Client
	if err := s.db.First(&client, "id = ?", inv.ClientID).Error; err != nil {
		log.Printf("Invoice %s: failed to load client: %v", inv.ID, err)
		return
	}

	daysLate := utils.DaysBetween(inv.DueDate, time.Now())
	message := fmt.Sprintf("Invoice #%s for %.2f %s is %d day(s) overdue.",
		inv.InvoiceNumber, Round2(inv.TotalAmount), inv.Currency, daysLate)

	var (
		channel   string
		recipient string
		sendErr   error
	)

	switch {
	case client.Email != "" && s.mailer.IsEnabled():
		channel = "email"
		recipient = client.Email
		sendErr = s.mailer.SendPaymentReminder(client.Email, inv.InvoiceNumber, inv.DueDate, inv.TotalAmount, inv.Currency)
	case client.Phone != "" && s.sms != nil:
		channel = "sms"
		recipient = client.Phone
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(client.Phone)
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
		params.SetBody(message)
		_, sendErr = s.sms.Api.CreateMessage(params)
	default:
		// No reachable channel for this client.
		return
	}

	status := "sent"
	errorMsg := ""
	if sendErr != nil {
		log.Printf("Invoice %s: failed to send reminder to %s: %v", inv.ID, recipient, sendErr)
		status = "failed"
		errorMsg = sendErr.Error()
	}

	entry := models.NotificationLog{
		UserID:       inv.UserID,
		InvoiceID:    inv.ID,
		ClientID:     client.ID,
		Channel:      channel,
		Recipient:    recipient,
		Message:      message,
		Status:       status,
		ErrorMessage: errorMsg,
		SentAt:       time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("Invoice %s: failed to log reminder: %v", inv.ID, err)
	}
}
