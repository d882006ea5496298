package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/lexforge/lexforge/app/models"
)

var ErrAlreadyPaid = errors.New("document already paid")

// PaymentGateway is the part of the Mercado Pago client the service needs.
type PaymentGateway interface {
	CreatePreference(ctx context.Context, item CheckoutItem) (*Preference, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// Service contains billing domain logic: checkout, payment sync and webhook
// bookkeeping.
type Service struct {
	repo    Repository
	gateway PaymentGateway
}

func NewService(repo Repository, gateway PaymentGateway) *Service {
	return &Service{repo: repo, gateway: gateway}
}

func NewServiceFromDB(db *gorm.DB, gateway PaymentGateway) *Service {
	return NewService(NewRepository(db), gateway)
}

// CreateCheckout opens a checkout preference for a stored document and keeps
// the preference id on it.
func (s *Service) CreateCheckout(ctx context.Context, documentID string) (*Preference, error) {
	doc, err := s.repo.FindDocument(strings.TrimSpace(documentID))
	if err != nil {
		return nil, err
	}
	if doc.IsPaid() {
		return nil, ErrAlreadyPaid
	}

	price := doc.FinalPrice
	if !price.IsPositive() {
		price = doc.Amount
	}
	pref, err := s.gateway.CreatePreference(ctx, CheckoutItem{
		DocumentID:   doc.DocumentID,
		TemplateName: doc.TemplateName,
		UnitPrice:    price,
		PayerName:    doc.CustomerName,
		PayerEmail:   doc.CustomerEmail,
	})
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPreferenceID(doc.DocumentID, pref.ID); err != nil {
		return nil, err
	}
	log.Infof("[Billing] preference %s created for document %s", pref.ID, doc.DocumentID)
	return pref, nil
}

// SyncPayment fetches a payment from the provider and applies its state to
// the document named by the payment's external reference.
func (s *Service) SyncPayment(ctx context.Context, paymentID string) (*models.GeneratedDocument, error) {
	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	documentID := strings.TrimSpace(payment.ExternalReference)
	if documentID == "" {
		return nil, fmt.Errorf("payment %s has no external reference", payment.ID)
	}

	doc, err := s.repo.ApplyPayment(PaymentUpdate{
		DocumentID: documentID,
		PaymentID:  payment.ID,
		Status:     MapPaymentStatus(payment.Status),
		Method:     payment.PaymentMethodID,
		Amount:     payment.TransactionAmount,
		ApprovedAt: payment.DateApproved,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("[Billing] payment %s (%s) applied to document %s: %s", payment.ID, payment.Status, documentID, doc.PaymentStatus)
	return doc, nil
}

// RecordWebhookEvent persists the event once. The bool reports whether the
// event still needs processing: it is new, or an earlier attempt failed.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		Topic:           strings.TrimSpace(in.Topic),
		Action:          strings.TrimSpace(in.Action),
		ResourceID:      strings.TrimSpace(in.ResourceID),
		RequestID:       strings.TrimSpace(in.RequestID),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	created, stored, err := s.repo.CreateWebhookEventIfNotExists(event)
	if err != nil || created {
		return created, stored, err
	}
	if stored != nil && stored.ProcessedAt != nil && stored.ProcessingError != "" {
		log.Infof("[Billing] retrying webhook event %s/%s after failure: %s", provider, eventID, stored.ProcessingError)
		return true, stored, nil
	}
	return false, stored, nil
}

func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	msg := ""
	if processingErr != nil {
		msg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, msg)
}
