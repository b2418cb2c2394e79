// services/numbering.go
package services

import (
	"errors"
	"fmt"
	"strconv"

	"freelancebill-backend/apperrors"
	"freelancebill-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NextInvoiceNumber assigns the next sequential invoice number for a user.
// It must run inside the invoice creation transaction: the counter row
// update takes a row lock, so two concurrent creations for the same user
// serialize instead of computing the same number.
//
// A missing counter row is seeded from the user's most recently created
// invoice. A stored invoice number that does not parse as an integer is
// reported as a data integrity problem rather than silently colliding.
func NextInvoiceNumber(tx *gorm.DB, userID uuid.UUID) (string, error) {
	res := tx.Model(&models.InvoiceSequence{}).
		Where("user_id = ?", userID).
		UpdateColumn("next_number", gorm.Expr("next_number + 1"))
	if res.Error != nil {
		return "", res.Error
	}

	if res.RowsAffected == 0 {
		next, err := seedFromExistingInvoices(tx, userID)
		if err != nil {
			return "", err
		}
		seq := models.InvoiceSequence{UserID: userID, NextNumber: next + 1}
		if err := tx.Create(&seq).Error; err != nil {
			// Unique index on user_id: a concurrent creation seeded first.
			return "", err
		}
		return strconv.FormatInt(next, 10), nil
	}

	// The increment above holds the row lock, so this read is stable for
	// the rest of the transaction.
	var seq models.InvoiceSequence
	if err := tx.Where("user_id = ?", userID).First(&seq).Error; err != nil {
		return "", err
	}
	return strconv.FormatInt(seq.NextNumber-1, 10), nil
}

func seedFromExistingInvoices(tx *gorm.DB, userID uuid.UUID) (int64, error) {
	var last models.Invoice
	err := tx.Where("user_id = ?", userID).Order("created_at DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	n, perr := strconv.ParseInt(last.InvoiceNumber, 10, 64)
	if perr != nil {
		return 0, apperrors.NewDataIntegrity(
			fmt.Sprintf("invoice %s has non-numeric invoice number %q", last.ID, last.InvoiceNumber))
	}
	return n + 1, nil
}
