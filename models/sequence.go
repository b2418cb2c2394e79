package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceSequence is the per-user invoice number counter. It is incremented
// atomically inside the invoice creation transaction; the unique index on
// UserID makes concurrent first-invoice seeding lose cleanly and retry.
type InvoiceSequence struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	NextNumber int64     `gorm:"not null;default:1"`
	UpdatedAt  time.Time
}

func (s *InvoiceSequence) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
