package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Username string    `gorm:"uniqueIndex;not null" json:"username"`

	// Password is nil for externally-authenticated accounts.
	Password          *string `json:"-"`
	IsVerified        bool    `gorm:"default:false" json:"is_verified"`
	VerificationToken *string `gorm:"uniqueIndex" json:"-"`

	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	TaxNumber    string `json:"tax_number"`

	Clients  []Client  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Invoices []Invoice `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	LastLogin *time.Time `json:"last_login,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Initialize UUID before creating
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
