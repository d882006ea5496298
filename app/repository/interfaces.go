package repository

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lexforge/lexforge/app/models"
)

// DocumentRepository defines the database operations on generated documents
type DocumentRepository interface {
	Create(doc *models.GeneratedDocument) error
	GetByDocumentID(documentID string) (*models.GeneratedDocument, error)
	SaveRendered(doc *models.GeneratedDocument) error
	SaveQuote(documentID string, pageCount int, price decimal.Decimal) error
	CountByPaymentStatus() (map[string]int64, error)
	ApprovedRevenue() (decimal.Decimal, error)
}

// TemplateStatRepository defines the read side of the template counters
type TemplateStatRepository interface {
	Get(templateID string) (*models.TemplateStat, error)
	List() ([]models.TemplateStat, error)
	Totals() (*TemplateTotals, error)
}

// TemplateTotals aggregates the counters of every template
type TemplateTotals struct {
	Views     int64
	Purchases int64
	Revenue   decimal.Decimal
}

// Repositories struct holds all repository instances
type Repositories struct {
	Document     DocumentRepository
	TemplateStat TemplateStatRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Document:     NewDocumentRepository(db),
		TemplateStat: NewTemplateStatRepository(db),
	}
}
