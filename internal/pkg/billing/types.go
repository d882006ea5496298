package billing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lexforge/lexforge/app/models"
)

const ProviderMercadoPago = "mercadopago"

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	Topic           string
	Action          string
	ResourceID      string
	RequestID       string
	PayloadJSON     string
	SignatureValid  bool
}

// PaymentUpdate is the provider-agnostic payment state applied to a
// generated document.
type PaymentUpdate struct {
	DocumentID string
	PaymentID  string
	Status     string
	Method     string
	Amount     decimal.Decimal
	ApprovedAt *time.Time
}

// MapPaymentStatus translates a Mercado Pago payment status into the local
// payment status of a document.
func MapPaymentStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved":
		return models.PaymentStatusApproved
	case "rejected":
		return models.PaymentStatusRejected
	case "cancelled", "refunded", "charged_back":
		return models.PaymentStatusCancelled
	default:
		// pending, in_process, authorized and anything new
		return models.PaymentStatusPending
	}
}
