package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lexforge/lexforge/app/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.GeneratedDocument{}, &models.TemplateStat{}))
	return db
}

func newDocument(status string, amount string) *models.GeneratedDocument {
	return &models.GeneratedDocument{
		DocumentID:      uuid.NewString(),
		TemplateID:      "contrato-moderno",
		CustomerName:    "Maria",
		CustomerEmail:   "maria@example.com",
		FieldValuesJSON: "{}",
		PaymentStatus:   status,
		Amount:          decimal.RequireFromString(amount),
	}
}

func TestDocumentRepository_SaveRenderedUpserts(t *testing.T) {
	repo := NewRepositories(newTestDB(t)).Document
	doc := newDocument(models.PaymentStatusPending, "15.00")
	require.NoError(t, repo.Create(doc))

	at := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	rendered := &models.GeneratedDocument{
		DocumentID:      doc.DocumentID,
		TemplateID:      doc.TemplateID,
		FieldValuesJSON: "{}",
		PageCount:       12,
		FinalPrice:      decimal.RequireFromString("25.00"),
		FileName:        doc.DocumentID + ".pdf",
		FilePath:        "/data/2026/03/" + doc.DocumentID + ".pdf",
		GeneratedAt:     &at,
	}
	require.NoError(t, repo.SaveRendered(rendered))
	require.NoError(t, repo.SaveRendered(rendered))

	stored, err := repo.GetByDocumentID(doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.PageCount)
	assert.Equal(t, "25", stored.FinalPrice.String())
	assert.Equal(t, 2, stored.DownloadCount)
	assert.Equal(t, "Maria", stored.CustomerName)
	assert.Equal(t, rendered.FilePath, stored.FilePath)
}

func TestDocumentRepository_SaveQuote(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))
	doc := newDocument(models.PaymentStatusPending, "15.00")
	require.NoError(t, repo.Create(doc))

	require.NoError(t, repo.SaveQuote(doc.DocumentID, 12, decimal.RequireFromString("25.00")))

	stored, err := repo.GetByDocumentID(doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.PageCount)
	assert.Equal(t, "25.00", stored.FinalPrice.StringFixed(2))
	assert.Equal(t, "15.00", stored.Amount.StringFixed(2))
	assert.Equal(t, 0, stored.DownloadCount)

	err = repo.SaveQuote(uuid.NewString(), 1, decimal.RequireFromString("15.00"))
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestDocumentRepository_SaveRenderedInsertsNew(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))
	at := time.Now()
	doc := &models.GeneratedDocument{
		DocumentID:      uuid.NewString(),
		TemplateID:      "proposta-azul",
		FieldValuesJSON: `{"cliente":"ACME"}`,
		PageCount:       1,
		FinalPrice:      decimal.RequireFromString("15.00"),
		GeneratedAt:     &at,
	}
	require.NoError(t, repo.SaveRendered(doc))

	stored, err := repo.GetByDocumentID(doc.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.DownloadCount)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
}

func TestDocumentRepository_NotFound(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))
	_, err := repo.GetByDocumentID(uuid.NewString())
	assert.ErrorIs(t, err, models.ErrDocumentNotFound)
}

func TestDocumentRepository_Aggregates(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))

	revenue, err := repo.ApprovedRevenue()
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())

	require.NoError(t, repo.Create(newDocument(models.PaymentStatusApproved, "15.00")))
	require.NoError(t, repo.Create(newDocument(models.PaymentStatusApproved, "25.50")))
	require.NoError(t, repo.Create(newDocument(models.PaymentStatusPending, "15.00")))

	counts, err := repo.CountByPaymentStatus()
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"approved": 2, "pending": 1}, counts)

	revenue, err = repo.ApprovedRevenue()
	require.NoError(t, err)
	assert.True(t, revenue.Equal(decimal.RequireFromString("40.50")), revenue.String())
}

func TestTemplateStatRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewTemplateStatRepository(db)

	totals, err := repo.Totals()
	require.NoError(t, err)
	assert.Zero(t, totals.Views)
	assert.True(t, totals.Revenue.IsZero())

	missing, err := repo.Get("contrato-simples")
	require.NoError(t, err)
	assert.Zero(t, missing.Views)

	require.NoError(t, db.Create(&models.TemplateStat{TemplateID: "contrato-moderno", Views: 10, Purchases: 2, Revenue: decimal.RequireFromString("30.00")}).Error)
	require.NoError(t, db.Create(&models.TemplateStat{TemplateID: "proposta-azul", Views: 5, Purchases: 1, Revenue: decimal.RequireFromString("15.00")}).Error)

	stat, err := repo.Get("contrato-moderno")
	require.NoError(t, err)
	assert.Equal(t, int64(10), stat.Views)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "contrato-moderno", list[0].TemplateID)

	totals, err = repo.Totals()
	require.NoError(t, err)
	assert.Equal(t, int64(15), totals.Views)
	assert.Equal(t, int64(3), totals.Purchases)
	assert.True(t, totals.Revenue.Equal(decimal.RequireFromString("45")), totals.Revenue.String())
}

func TestFactory(t *testing.T) {
	f := NewFactory(newTestDB(t))
	assert.Same(t, f.GetRepositories(), f.GetRepositories())
	assert.NotNil(t, f.GetRepositories().Document)
	assert.NotNil(t, f.GetRepositories().TemplateStat)
}
