// controllers/invoice.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"freelancebill-backend/apperrors"
	"freelancebill-backend/config"
	"freelancebill-backend/models"
	"freelancebill-backend/services"
	"freelancebill-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const invoiceNumberRetries = 3

// InvoiceItemInput defines the structure for an invoice item
type InvoiceItemInput struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Quantity    Number `json:"quantity"`
	Unit        string `json:"unit"`
	Rate        Number `json:"rate"`
	Discount    Number `json:"discount"`
}

// CreateInvoiceInput defines the expected JSON structure for creating an invoice
type CreateInvoiceInput struct {
	ClientID       string             `json:"client_id" binding:"required"`
	IssueDate      string             `json:"issue_date" binding:"required"`
	DueDate        string             `json:"due_date" binding:"required"`
	Currency       string             `json:"currency" binding:"required"`
	TaxRate        Number             `json:"tax_rate"`
	Status         string             `json:"status"`
	PaymentMethod  string             `json:"payment_method" binding:"required"`
	PaymentDetails string             `json:"payment_details" binding:"required"`
	Items          []InvoiceItemInput `json:"items"`
}

// buildInvoice validates the full payload and assembles an invoice with all
// derived amounts. Nothing is persisted here: validation completes before
// any write.
func buildInvoice(user *models.User, input *CreateInvoiceInput) (*models.Invoice, error) {
	clientUUID, err := uuid.Parse(input.ClientID)
	if err != nil {
		return nil, apperrors.NewValidation("client_id", "must be a valid id")
	}

	var client models.Client
	if err := config.DB.Where("user_id = ? AND id = ?", user.ID, clientUUID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("client")
		}
		return nil, err
	}

	issueDate, err := time.Parse("2006-01-02", input.IssueDate)
	if err != nil {
		return nil, apperrors.NewValidation("issue_date", "must be a date in YYYY-MM-DD format")
	}
	dueDate, err := time.Parse("2006-01-02", input.DueDate)
	if err != nil {
		return nil, apperrors.NewValidation("due_date", "must be a date in YYYY-MM-DD format")
	}
	if dueDate.Before(issueDate) {
		return nil, apperrors.NewValidation("due_date", "must be on or after issue_date")
	}

	currency, ok := models.NormalizeCurrency(input.Currency)
	if !ok {
		return nil, apperrors.NewValidation("currency", "must be a recognized ISO 4217 code")
	}

	status := models.StatusUnpaid
	if input.Status != "" {
		status, err = models.ParseInvoiceStatus(input.Status)
		if err != nil {
			return nil, err
		}
	}

	method, err := models.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, err
	}

	if len(input.Items) == 0 {
		return nil, apperrors.NewValidation("items", "must contain at least one item")
	}

	items := make([]models.InvoiceItem, 0, len(input.Items))
	for i, in := range input.Items {
		itemType, err := models.ParseItemType(in.Type)
		if err != nil {
			return nil, prefixItemField(i, err)
		}
		unit, err := models.ParseItemUnit(in.Unit)
		if err != nil {
			return nil, prefixItemField(i, err)
		}
		if in.Description == "" {
			return nil, apperrors.NewValidation(fmt.Sprintf("items[%d].description", i), "is required")
		}

		gross, net, err := services.ComputeItem(float64(in.Quantity), float64(in.Rate), float64(in.Discount))
		if err != nil {
			return nil, prefixItemField(i, err)
		}

		items = append(items, models.InvoiceItem{
			Position:    i,
			ItemType:    itemType,
			Description: in.Description,
			Quantity:    float64(in.Quantity),
			Unit:        unit,
			Rate:        float64(in.Rate),
			Discount:    float64(in.Discount),
			GrossAmount: gross,
			NetAmount:   net,
		})
	}

	totals, err := services.ComputeInvoiceTotals(items, float64(input.TaxRate))
	if err != nil {
		return nil, err
	}

	inv := &models.Invoice{
		UserID:         user.ID,
		ClientID:       client.ID,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		Currency:       currency,
		TaxRate:        float64(input.TaxRate),
		Subtotal:       totals.Subtotal,
		TotalDiscount:  totals.TotalDiscount,
		TaxAmount:      totals.TaxAmount,
		TotalAmount:    totals.TotalAmount,
		Status:         status,
		PaymentMethod:  method,
		PaymentDetails: input.PaymentDetails,
		Items:          items,
	}
	if status == models.StatusPaid {
		paidAt := utils.BeginningOfDay(time.Now())
		inv.PaymentDate = &paidAt
	}
	return inv, nil
}

func prefixItemField(index int, err error) error {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		return apperrors.NewValidation(fmt.Sprintf("items[%d].%s", index, ve.Field), ve.Reason)
	}
	return err
}

// CreateInvoice validates the payload, computes all derived amounts,
// assigns the next per-user invoice number and persists the invoice.
// A lost numbering race retries with a freshly computed number.
func CreateInvoice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	template, err := buildInvoice(user, &input)
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	var created models.Invoice
	var lastErr error
	for attempt := 0; attempt < invoiceNumberRetries; attempt++ {
		lastErr = config.DB.Transaction(func(tx *gorm.DB) error {
			number, err := services.NextInvoiceNumber(tx, user.ID)
			if err != nil {
				return err
			}
			inv := *template
			inv.ID = uuid.Nil
			inv.InvoiceNumber = number
			inv.Items = make([]models.InvoiceItem, len(template.Items))
			copy(inv.Items, template.Items)
			for i := range inv.Items {
				inv.Items[i].ID = uuid.Nil
			}
			if err := tx.Create(&inv).Error; err != nil {
				return err
			}
			created = inv
			return nil
		})
		if lastErr == nil || !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if lastErr != nil {
		if errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			utils.RespondWithAppError(c, apperrors.NewConflict("could not assign a unique invoice number"))
		} else {
			utils.RespondWithAppError(c, lastErr)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":             created.ID,
		"invoice_number": created.InvoiceNumber,
		"invoice":        created,
	})
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// GetInvoices lists the caller's invoices. Status is reconciled against the
// current date inside the same transaction as the read, so listing can
// persist Unpaid -> Overdue flips.
func GetInvoices(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var invoices []models.Invoice
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items", preloadItems).
			Where("user_id = ?", user.ID).
			Order("created_at").
			Find(&invoices).Error; err != nil {
			return err
		}
		now := time.Now()
		for i := range invoices {
			if err := services.ReconcileOverdue(tx, &invoices[i], now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func findInvoiceTx(tx *gorm.DB, c *gin.Context, userID uuid.UUID, withItems bool) (*models.Invoice, error) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, apperrors.NewValidation("id", "must be a valid invoice id")
	}

	q := tx.Where("user_id = ? AND id = ?", userID, invoiceUUID)
	if withItems {
		q = q.Preload("Items", preloadItems)
	}

	var invoice models.Invoice
	if err := q.First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("invoice")
		}
		return nil, err
	}
	return &invoice, nil
}

// GetInvoice retrieves a specific invoice with its items, reconciling the
// overdue status in the same transaction.
func GetInvoice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var invoice *models.Invoice
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		invoice, err = findInvoiceTx(tx, c, user.ID, true)
		if err != nil {
			return err
		}
		return services.ReconcileOverdue(tx, invoice, time.Now())
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// MarkInvoicePaid marks an unpaid or overdue invoice as paid.
func MarkInvoicePaid(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var invoice *models.Invoice
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		invoice, err = findInvoiceTx(tx, c, user.ID, true)
		if err != nil {
			return err
		}
		if err := services.ReconcileOverdue(tx, invoice, time.Now()); err != nil {
			return err
		}
		return services.MarkPaid(tx, invoice, time.Now())
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice marked as paid", "invoice": invoice})
}

// CancelInvoice cancels an unpaid or overdue invoice.
func CancelInvoice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var invoice *models.Invoice
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		invoice, err = findInvoiceTx(tx, c, user.ID, true)
		if err != nil {
			return err
		}
		return services.Cancel(tx, invoice)
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice cancelled", "invoice": invoice})
}

// DeleteInvoice removes an invoice and its items
func DeleteInvoice(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		invoice, err := findInvoiceTx(tx, c, user.ID, false)
		if err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(invoice).Error
	})
	if err != nil {
		utils.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
