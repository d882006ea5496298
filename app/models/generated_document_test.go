package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGeneratedDocumentAmountDue(t *testing.T) {
	doc := &GeneratedDocument{
		PaymentStatus: PaymentStatusPending,
		Amount:        decimal.RequireFromString("15.00"),
		FinalPrice:    decimal.RequireFromString("25.00"),
	}
	assert.True(t, doc.AmountDue().IsZero(), "unpaid documents owe nothing yet")

	doc.MarkAsPaid("pay-1", decimal.RequireFromString("15.00"), "pix", time.Now())
	assert.Equal(t, "10.00", doc.AmountDue().StringFixed(2))

	doc.Amount = decimal.RequireFromString("25.00")
	assert.True(t, doc.AmountDue().IsZero())

	doc.FinalPrice = decimal.Zero
	doc.Amount = decimal.RequireFromString("15.00")
	assert.True(t, doc.AmountDue().IsZero(), "unpriced documents owe nothing")
}
