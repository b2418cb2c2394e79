// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID  uuid.UUID `gorm:"type:uuid;index;not null"`

	Channel      string `gorm:"type:varchar(20)"` // email, sms
	Recipient    string `gorm:"type:varchar(100)"`
	Message      string `gorm:"type:text"`
	Status       string `gorm:"type:varchar(20)"` // sent, failed
	ErrorMessage string `gorm:"type:text"`
	SentAt       time.Time

	CreatedAt time.Time
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	return
}
