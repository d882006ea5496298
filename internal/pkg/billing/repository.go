package billing

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexforge/lexforge/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	FindDocument(documentID string) (*models.GeneratedDocument, error)
	SetPreferenceID(documentID, preferenceID string) error
	ApplyPayment(update PaymentUpdate) (*models.GeneratedDocument, error)
	CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindDocument(documentID string) (*models.GeneratedDocument, error) {
	return models.FindGeneratedDocumentByDocumentID(r.db, documentID)
}

func (r *gormRepository) SetPreferenceID(documentID, preferenceID string) error {
	tx := r.db.Model(&models.GeneratedDocument{}).
		Where("document_id = ?", documentID).
		Update("preference_id", preferenceID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.ErrDocumentNotFound
	}
	return nil
}

// ApplyPayment stores the payment state on the document. An approved
// document is never moved back to another state.
func (r *gormRepository) ApplyPayment(update PaymentUpdate) (*models.GeneratedDocument, error) {
	var doc *models.GeneratedDocument
	err := r.db.Transaction(func(tx *gorm.DB) error {
		found, err := models.FindGeneratedDocumentByDocumentID(tx, update.DocumentID)
		if err != nil {
			return err
		}
		doc = found
		if doc.IsPaid() && update.Status != models.PaymentStatusApproved {
			return nil
		}

		if update.Status == models.PaymentStatusApproved {
			at := time.Now()
			if update.ApprovedAt != nil {
				at = *update.ApprovedAt
			}
			doc.MarkAsPaid(update.PaymentID, update.Amount, update.Method, at)
		} else {
			doc.PaymentStatus = update.Status
			doc.PaymentID = update.PaymentID
			doc.PaymentMethod = update.Method
		}
		return tx.Model(doc).Select("payment_status", "payment_id", "payment_method", "amount", "paid_at").Updates(doc).Error
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
