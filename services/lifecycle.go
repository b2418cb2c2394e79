// services/lifecycle.go
package services

import (
	"freelancebill-backend/apperrors"
	"freelancebill-backend/models"
	"freelancebill-backend/utils"
	"time"

	"gorm.io/gorm"
)

// ReconcileOverdue flips an Unpaid invoice to Overdue once its due date has
// passed, persisting the change in the caller's transaction. Read paths run
// this before returning an invoice, so reads can mutate stored status.
// Idempotent; Paid and Cancelled are never changed by date alone.
func ReconcileOverdue(tx *gorm.DB, inv *models.Invoice, now time.Time) error {
	if inv.Status != models.StatusUnpaid {
		return nil
	}
	today := utils.BeginningOfDay(now)
	if !utils.BeginningOfDay(inv.DueDate).Before(today) {
		return nil
	}
	inv.Status = models.StatusOverdue
	return tx.Model(inv).Update("status", models.StatusOverdue).Error
}

// MarkPaid transitions Unpaid or Overdue to Paid and records the payment
// date. Paid and Cancelled are rejected before any write.
func MarkPaid(tx *gorm.DB, inv *models.Invoice, now time.Time) error {
	switch inv.Status {
	case models.StatusPaid:
		return apperrors.NewConflict("invoice is already paid")
	case models.StatusCancelled:
		return apperrors.NewConflict("a cancelled invoice cannot be marked paid")
	}
	paidAt := utils.BeginningOfDay(now)
	inv.Status = models.StatusPaid
	inv.PaymentDate = &paidAt
	return tx.Model(inv).Updates(map[string]interface{}{
		"status":       models.StatusPaid,
		"payment_date": paidAt,
	}).Error
}

// Cancel transitions Unpaid or Overdue to Cancelled. A paid invoice cannot
// be cancelled; cancelling twice is rejected the same way.
func Cancel(tx *gorm.DB, inv *models.Invoice) error {
	switch inv.Status {
	case models.StatusPaid:
		return apperrors.NewConflict("a paid invoice cannot be cancelled")
	case models.StatusCancelled:
		return apperrors.NewConflict("invoice is already cancelled")
	}
	inv.Status = models.StatusCancelled
	return tx.Model(inv).Update("status", models.StatusCancelled).Error
}
