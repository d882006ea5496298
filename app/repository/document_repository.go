package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexforge/lexforge/app/models"
)

// documentRepository implements the DocumentRepository interface
type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new document repository instance
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(doc *models.GeneratedDocument) error {
	return r.db.Create(doc).Error
}

func (r *documentRepository) GetByDocumentID(documentID string) (*models.GeneratedDocument, error) {
	return models.FindGeneratedDocumentByDocumentID(r.db, documentID)
}

// SaveRendered inserts the document or, when its document id exists,
// updates the rendering columns and counts one more download.
func (r *documentRepository) SaveRendered(doc *models.GeneratedDocument) error {
	if doc.DownloadCount == 0 {
		doc.DownloadCount = 1
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "document_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"page_count":     doc.PageCount,
			"final_price":    doc.FinalPrice,
			"file_name":      doc.FileName,
			"file_path":      doc.FilePath,
			"generated_at":   doc.GeneratedAt,
			"download_count": gorm.Expr("generated_documents.download_count + 1"),
			"updated_at":     time.Now(),
		}),
	}).Create(doc).Error
}

// SaveQuote stores the page count and price of a document priced before
// generation.
func (r *documentRepository) SaveQuote(documentID string, pageCount int, price decimal.Decimal) error {
	tx := r.db.Model(&models.GeneratedDocument{}).
		Where("document_id = ?", documentID).
		Updates(map[string]interface{}{
			"page_count":  pageCount,
			"final_price": price,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return models.ErrDocumentNotFound
	}
	return nil
}

// CountByPaymentStatus returns the number of documents per payment status
func (r *documentRepository) CountByPaymentStatus() (map[string]int64, error) {
	var rows []struct {
		PaymentStatus string
		Count         int64
	}
	err := r.db.Model(&models.GeneratedDocument{}).
		Select("payment_status, COUNT(*) AS count").
		Group("payment_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.PaymentStatus] = row.Count
	}
	return out, nil
}

// ApprovedRevenue sums the paid amount of approved documents
func (r *documentRepository) ApprovedRevenue() (decimal.Decimal, error) {
	var row struct {
		Total decimal.NullDecimal
	}
	err := r.db.Model(&models.GeneratedDocument{}).
		Select("SUM(amount) AS total").
		Where("payment_status = ?", models.PaymentStatusApproved).
		Scan(&row).Error
	if err != nil || !row.Total.Valid {
		return decimal.Zero, err
	}
	return row.Total.Decimal, nil
}
