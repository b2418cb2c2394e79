// services/calculator.go
package services

import (
	"math"

	"freelancebill-backend/apperrors"
	"freelancebill-backend/models"
)

// Totals holds the invoice-level amounts derived from its items.
type Totals struct {
	Subtotal      float64
	TotalDiscount float64
	TaxAmount     float64
	TotalAmount   float64
}

// ComputeItem derives the gross and net amounts of a single line item.
// No intermediate rounding; callers round at the presentation boundary.
func ComputeItem(quantity, rate, discount float64) (gross, net float64, err error) {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return 0, 0, apperrors.NewValidation("quantity", "must be a number greater than zero")
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0, 0, apperrors.NewValidation("rate", "must be a non-negative number")
	}
	if math.IsNaN(discount) || discount < 0 || discount > 100 {
		return 0, 0, apperrors.NewValidation("discount", "must be a percentage between 0 and 100")
	}
	gross = quantity * rate
	net = gross * (1 - discount/100)
	return gross, net, nil
}

// ComputeInvoiceTotals aggregates item amounts and the invoice tax rate.
// Pure function; an empty item slice yields all-zero totals.
func ComputeInvoiceTotals(items []models.InvoiceItem, taxRate float64) (Totals, error) {
	if math.IsNaN(taxRate) || math.IsInf(taxRate, 0) || taxRate < 0 {
		return Totals{}, apperrors.NewValidation("tax_rate", "must be a non-negative percentage")
	}

	var t Totals
	for _, it := range items {
		gross, _, err := ComputeItem(it.Quantity, it.Rate, it.Discount)
		if err != nil {
			return Totals{}, err
		}
		t.Subtotal += gross
		t.TotalDiscount += gross * it.Discount / 100
	}

	discounted := t.Subtotal - t.TotalDiscount
	t.TaxAmount = discounted * taxRate / 100
	t.TotalAmount = discounted + t.TaxAmount
	return t, nil
}

// Round2 rounds to currency precision. Presentation use only; stored
// amounts keep full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
