package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"freelancebill-backend/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.InvoiceSequence{},
		&models.NotificationLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// A single connection keeps concurrent transactions from tripping over
	// sqlite's write locking in tests.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db
}

func seedUserAndClient(t *testing.T, db *gorm.DB) (models.User, models.Client) {
	t.Helper()
	hash := "$2a$14$notarealhashbutitdoesnotmatterfortests"
	user := models.User{Username: "freelancer@test", Password: &hash, IsVerified: true}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	client := models.Client{UserID: user.ID, Name: "ClientCo", Email: "billing@clientco.test"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("client: %v", err)
	}
	return user, client
}

func seedInvoice(t *testing.T, db *gorm.DB, user models.User, client models.Client, number string, status models.InvoiceStatus, dueDate time.Time) models.Invoice {
	t.Helper()
	inv := models.Invoice{
		UserID:        user.ID,
		ClientID:      client.ID,
		InvoiceNumber: number,
		IssueDate:     dueDate.AddDate(0, 0, -14),
		DueDate:       dueDate,
		Currency:      "USD",
		TaxRate:       8,
		Subtotal:      500,
		TotalDiscount: 50,
		TaxAmount:     36,
		TotalAmount:   486,
		Status:        status,
		PaymentMethod: models.PaymentBankTransfer,
	}
	if status == models.StatusPaid {
		paidAt := time.Now()
		inv.PaymentDate = &paidAt
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("invoice: %v", err)
	}
	return inv
}
