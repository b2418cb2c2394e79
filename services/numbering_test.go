package services

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"freelancebill-backend/apperrors"
	"freelancebill-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func nextNumber(t *testing.T, db *gorm.DB, user models.User) string {
	t.Helper()
	var number string
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		number, err = NextInvoiceNumber(tx, user.ID)
		return err
	})
	require.NoError(t, err)
	return number
}

func TestNextInvoiceNumberStartsAtOne(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedUserAndClient(t, db)

	assert.Equal(t, "1", nextNumber(t, db, user))
	assert.Equal(t, "2", nextNumber(t, db, user))
	assert.Equal(t, "3", nextNumber(t, db, user))
}

func TestNextInvoiceNumberSeedsFromExistingInvoices(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db)
	seedInvoice(t, db, user, client, "7", models.StatusUnpaid, time.Now().AddDate(0, 0, 14))

	assert.Equal(t, "8", nextNumber(t, db, user))
	assert.Equal(t, "9", nextNumber(t, db, user))
}

func TestNextInvoiceNumberPerUser(t *testing.T) {
	db := setupTestDB(t)
	user, _ := seedUserAndClient(t, db)
	other := models.User{Username: "other@test"}
	require.NoError(t, db.Create(&other).Error)

	assert.Equal(t, "1", nextNumber(t, db, user))
	assert.Equal(t, "1", nextNumber(t, db, other))
	assert.Equal(t, "2", nextNumber(t, db, user))
}

func TestNextInvoiceNumberNonNumericLegacyNumber(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db)
	seedInvoice(t, db, user, client, "INV-2024-001", models.StatusUnpaid, time.Now())

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := NextInvoiceNumber(tx, user.ID)
		return err
	})
	var de *apperrors.DataIntegrityError
	require.ErrorAs(t, err, &de)
}

func TestNextInvoiceNumberConcurrent(t *testing.T) {
	db := setupTestDB(t)
	user, client := seedUserAndClient(t, db)

	const n = 20
	var wg sync.WaitGroup
	results := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				var number string
				err := db.Transaction(func(tx *gorm.DB) error {
					var err error
					number, err = NextInvoiceNumber(tx, user.ID)
					if err != nil {
						return err
					}
					inv := models.Invoice{
						UserID:        user.ID,
						ClientID:      client.ID,
						InvoiceNumber: number,
						IssueDate:     time.Now(),
						DueDate:       time.Now().AddDate(0, 0, 14),
						Currency:      "USD",
						TotalAmount:   100,
						Subtotal:      100,
						Status:        models.StatusUnpaid,
						PaymentMethod: models.PaymentCash,
					}
					return tx.Create(&inv).Error
				})
				if err == nil {
					results <- number
					return
				}
				if !errors.Is(err, gorm.ErrDuplicatedKey) {
					t.Errorf("unexpected error: %v", err)
					results <- ""
					return
				}
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for number := range results {
		require.NotEmpty(t, number)
		assert.False(t, seen[number], "duplicate invoice number %s", number)
		seen[number] = true
		v, err := strconv.Atoi(number)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, n)
	}
	assert.Len(t, seen, n)
}
