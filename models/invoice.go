package models

import (
	"strings"
	"time"

	"freelancebill-backend/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus is a closed set stored as a string column. Use
// ParseInvoiceStatus for untrusted input; never compare case-insensitively
// elsewhere.
type InvoiceStatus string

const (
	StatusUnpaid    InvoiceStatus = "Unpaid"
	StatusPaid      InvoiceStatus = "Paid"
	StatusOverdue   InvoiceStatus = "Overdue"
	StatusCancelled InvoiceStatus = "Cancelled"
)

// Terminal reports whether no transition may leave the status.
func (s InvoiceStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unpaid":
		return StatusUnpaid, nil
	case "paid":
		return StatusPaid, nil
	case "overdue":
		return StatusOverdue, nil
	case "cancelled":
		return StatusCancelled, nil
	}
	return "", apperrors.NewValidation("status", "must be one of Unpaid, Paid, Overdue, Cancelled")
}

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentCreditCard   PaymentMethod = "Credit Card"
	PaymentPayPal       PaymentMethod = "PayPal"
	PaymentCheck        PaymentMethod = "Check"
	PaymentOther        PaymentMethod = "Other"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cash":
		return PaymentCash, nil
	case "bank transfer":
		return PaymentBankTransfer, nil
	case "credit card":
		return PaymentCreditCard, nil
	case "paypal":
		return PaymentPayPal, nil
	case "check":
		return PaymentCheck, nil
	case "other":
		return PaymentOther, nil
	}
	return "", apperrors.NewValidation("payment_method", "must be one of Cash, Bank Transfer, Credit Card, PayPal, Check, Other")
}

type ItemType string

const (
	ItemTypeService ItemType = "Service"
	ItemTypeProduct ItemType = "Product"
)

func ParseItemType(s string) (ItemType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "service":
		return ItemTypeService, nil
	case "product":
		return ItemTypeProduct, nil
	}
	return "", apperrors.NewValidation("type", "must be Service or Product")
}

type ItemUnit string

const (
	UnitHour ItemUnit = "Hour"
	UnitItem ItemUnit = "Item"
)

func ParseItemUnit(s string) (ItemUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hour":
		return UnitHour, nil
	case "item":
		return UnitItem, nil
	}
	return "", apperrors.NewValidation("unit", "must be Hour or Item")
}

type Invoice struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_invoice_number,priority:1" json:"user_id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	InvoiceNumber string `gorm:"not null;uniqueIndex:idx_user_invoice_number,priority:2" json:"invoice_number"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	Currency string  `gorm:"type:varchar(3);not null" json:"currency"`
	TaxRate  float64 `gorm:"not null;default:0.0" json:"tax_rate"`

	// Derived amounts, never client-supplied. Stored at full precision;
	// rounding happens at presentation only.
	Subtotal      float64 `gorm:"not null" json:"subtotal"`
	TotalDiscount float64 `gorm:"not null;default:0.0" json:"total_discount"`
	TaxAmount     float64 `gorm:"not null;default:0.0" json:"tax_amount"`
	TotalAmount   float64 `gorm:"not null" json:"total_amount"`

	Status         InvoiceStatus `gorm:"type:varchar(20);not null;default:'Unpaid'" json:"status"`
	PaymentMethod  PaymentMethod `gorm:"type:varchar(50);not null" json:"payment_method"`
	PaymentDetails string        `json:"payment_details"`
	PaymentDate    *time.Time    `json:"payment_date,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}

type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null" json:"invoice_id"`

	// Position preserves insertion order for display; totals ignore it.
	Position int `gorm:"not null;default:0" json:"position"`

	ItemType    ItemType `gorm:"type:varchar(20);not null" json:"type"`
	Description string   `gorm:"not null" json:"description"`
	Quantity    float64  `gorm:"not null" json:"quantity"`
	Unit        ItemUnit `gorm:"type:varchar(20);not null" json:"unit"`
	Rate        float64  `gorm:"not null" json:"rate"`
	Discount    float64  `gorm:"not null;default:0.0" json:"discount"`

	GrossAmount float64 `gorm:"not null" json:"gross_amount"`
	NetAmount   float64 `gorm:"not null" json:"net_amount"`
}

func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) (err error) {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return
}
