package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusApproved  = "approved"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
)

var ErrDocumentNotFound = errors.New("document not found")

// GeneratedDocument is an order for a template document: the customer, the
// filled field values, its payment state and the rendered file.
type GeneratedDocument struct {
	ID               uint            `gorm:"primaryKey" json:"-"`
	DocumentID       string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"documentId" validate:"required,uuid"`
	TemplateID       string          `gorm:"type:varchar(64);not null;index" json:"templateId" validate:"required,max=64"`
	TemplateName     string          `gorm:"type:varchar(255)" json:"templateName"`
	CustomerName     string          `gorm:"type:varchar(255);not null" json:"customerName" validate:"required,max=255"`
	CustomerEmail    string          `gorm:"type:varchar(255);not null;index:idx_documents_customer_email" json:"customerEmail" validate:"required,email"`
	CustomerPhone    string          `gorm:"type:varchar(50)" json:"customerPhone,omitempty" validate:"max=50"`
	CustomerDocument string          `gorm:"type:varchar(50)" json:"customerDocument,omitempty" validate:"max=50"`
	FieldValuesJSON  string          `gorm:"type:longtext;not null" json:"-"`
	PaymentStatus    string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"paymentStatus" validate:"oneof=pending approved rejected cancelled"`
	PreferenceID     string          `gorm:"type:varchar(100)" json:"preferenceId,omitempty"`
	PaymentID        string          `gorm:"type:varchar(100);index" json:"paymentId,omitempty"`
	PaymentMethod    string          `gorm:"type:varchar(50)" json:"paymentMethod,omitempty"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"amount"`
	PaidAt           *time.Time      `gorm:"type:timestamp;default:null" json:"paidAt,omitempty"`
	PageCount        int             `gorm:"not null;default:0" json:"pageCount"`
	FinalPrice       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"finalPrice"`
	FileName         string          `gorm:"type:varchar(255)" json:"fileName,omitempty"`
	FilePath         string          `gorm:"type:varchar(512)" json:"-"`
	ArchiveKey       string          `gorm:"type:varchar(512)" json:"-"`
	GeneratedAt      *time.Time      `gorm:"type:timestamp;default:null" json:"generatedAt,omitempty"`
	DownloadCount    int             `gorm:"not null;default:0" json:"downloadCount"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (d *GeneratedDocument) Validate() error {
	v := validator.New()
	return v.Struct(d)
}

// FieldValues decodes the stored field values.
func (d *GeneratedDocument) FieldValues() (map[string]string, error) {
	values := map[string]string{}
	if d.FieldValuesJSON == "" {
		return values, nil
	}
	err := json.Unmarshal([]byte(d.FieldValuesJSON), &values)
	return values, err
}

func (d *GeneratedDocument) SetFieldValues(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	d.FieldValuesJSON = string(raw)
	return nil
}

func (d *GeneratedDocument) IsPaid() bool {
	return d.PaymentStatus == PaymentStatusApproved
}

// AmountDue returns how much of FinalPrice a paid document still owes. It is
// zero for unpaid or unpriced documents.
func (d *GeneratedDocument) AmountDue() decimal.Decimal {
	if !d.IsPaid() || !d.FinalPrice.IsPositive() || d.Amount.GreaterThanOrEqual(d.FinalPrice) {
		return decimal.Zero
	}
	return d.FinalPrice.Sub(d.Amount)
}

// MarkAsPaid records an approved payment.
func (d *GeneratedDocument) MarkAsPaid(paymentID string, amount decimal.Decimal, method string, at time.Time) {
	d.PaymentStatus = PaymentStatusApproved
	d.PaymentID = paymentID
	d.Amount = amount
	d.PaymentMethod = method
	d.PaidAt = &at
}

func FindGeneratedDocumentByDocumentID(db *gorm.DB, documentID string) (*GeneratedDocument, error) {
	var doc GeneratedDocument
	err := db.Where("document_id = ?", documentID).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
