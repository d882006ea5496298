package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TemplateStat accumulates view and purchase counters per template. Rows are
// upserted by the counter flush; templates themselves live in code.
type TemplateStat struct {
	TemplateID string          `gorm:"type:varchar(64);primaryKey" json:"templateId"`
	Views      int64           `gorm:"not null;default:0" json:"views"`
	Purchases  int64           `gorm:"not null;default:0" json:"purchases"`
	Revenue    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"revenue"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}
