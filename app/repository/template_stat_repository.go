package repository

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lexforge/lexforge/app/models"
)

// templateStatRepository implements the TemplateStatRepository interface
type templateStatRepository struct {
	db *gorm.DB
}

// NewTemplateStatRepository creates a new template stat repository instance
func NewTemplateStatRepository(db *gorm.DB) TemplateStatRepository {
	return &templateStatRepository{db: db}
}

// Get returns the counters of one template; a template without a row has
// zero counters.
func (r *templateStatRepository) Get(templateID string) (*models.TemplateStat, error) {
	var stat models.TemplateStat
	err := r.db.Where("template_id = ?", templateID).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.TemplateStat{TemplateID: templateID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (r *templateStatRepository) List() ([]models.TemplateStat, error) {
	var stats []models.TemplateStat
	err := r.db.Order("template_id").Find(&stats).Error
	return stats, err
}

func (r *templateStatRepository) Totals() (*TemplateTotals, error) {
	var row struct {
		Views     int64
		Purchases int64
		Revenue   decimal.NullDecimal
	}
	err := r.db.Model(&models.TemplateStat{}).
		Select("COALESCE(SUM(views), 0) AS views, COALESCE(SUM(purchases), 0) AS purchases, SUM(revenue) AS revenue").
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	totals := &TemplateTotals{Views: row.Views, Purchases: row.Purchases, Revenue: decimal.Zero}
	if row.Revenue.Valid {
		totals.Revenue = row.Revenue.Decimal
	}
	return totals, nil
}
