package services

import (
	"errors"
	"testing"
	"time"

	"freelancebill-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	reminders []string
	fail      bool
}

func (m *recordingMailer) IsEnabled() bool                        { return true }
func (m *recordingMailer) SendVerification(string, string) error  { return nil }
func (m *recordingMailer) SendPasswordReset(string, string) error { return nil }

func (m *recordingMailer) SendPaymentReminder(to, number string, _ time.Time, _ float64, _ string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.reminders = append(m.reminders, to+":"+number)
	return nil
}

func TestProcessOverdueInvoicesFlipsAndNotifies(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db)
	yesterday := time.Now().AddDate(0, 0, -1)

	overdue := seedInvoice(t, db, user, client, "1", models.StatusUnpaid, yesterday)
	current := seedInvoice(t, db, user, client, "2", models.StatusUnpaid, time.Now().AddDate(0, 0, 14))
	paid := seedInvoice(t, db, user, client, "3", models.StatusPaid, yesterday)

	mailer := &recordingMailer{}
	svc := NewReminderService(db, mailer)
	svc.ProcessOverdueInvoices()

	assert.Equal(t, models.StatusOverdue, reloadStatus(t, db, overdue))
	assert.Equal(t, models.StatusUnpaid, reloadStatus(t, db, current))
	assert.Equal(t, models.StatusPaid, reloadStatus(t, db, paid))

	require.Len(t, mailer.reminders, 1)
	assert.Equal(t, "billing@clientco.test:1", mailer.reminders[0])

	var logs []models.NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "email", logs[0].Channel)
	assert.Equal(t, "sent", logs[0].Status)
	assert.Equal(t, overdue.ID, logs[0].InvoiceID)
}

func TestProcessOverdueInvoicesLogsSendFailures(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db)
	overdue := seedInvoice(t, db, user, client, "1", models.StatusUnpaid, time.Now().AddDate(0, 0, -2))

	svc := NewReminderService(db, &recordingMailer{fail: true})
	svc.ProcessOverdueInvoices()

	// The flip still happens; the failed send is recorded, not propagated.
	assert.Equal(t, models.StatusOverdue, reloadStatus(t, db, overdue))

	var logs []models.NotificationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "failed", logs[0].Status)
	assert.NotEmpty(t, logs[0].ErrorMessage)
}

func TestProcessOverdueInvoicesSkipsUnreachableClients(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedUserAndClient(t, db)
	silent := models.Client{UserID: user.ID, Name: "No Contact"}
	require.NoError(t, db.Create(&silent).Error)
	overdue := seedInvoice(t, db, user, silent, "9", models.StatusUnpaid, time.Now().AddDate(0, 0, -1))

	svc := NewReminderService(db, &recordingMailer{})
	svc.ProcessOverdueInvoices()

	assert.Equal(t, models.StatusOverdue, reloadStatus(t, db, overdue))

	var count int64
	require.NoError(t, db.Model(&models.NotificationLog{}).Count(&count).Error)
	assert.Zero(t, count)
}
