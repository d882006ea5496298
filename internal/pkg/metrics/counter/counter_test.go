package counter

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lexforge/lexforge/app/models"
	"github.com/lexforge/lexforge/internal/pkg/cache"
	"github.com/lexforge/lexforge/internal/pkg/database"
)

func setup(t *testing.T) (*miniredis.Miniredis, *gorm.DB) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache.SetClient(client)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.TemplateStat{}))
	database.SetDB(db)
	t.Cleanup(func() { database.SetDB(nil) })
	return mr, db
}

func TestFlushCreatesAndIncrements(t *testing.T) {
	mr, db := setup(t)

	require.NoError(t, AddTemplateView("contrato-moderno"))
	require.NoError(t, AddTemplateView("contrato-moderno"))
	require.NoError(t, AddTemplateView("proposta-azul"))
	require.NoError(t, AddTemplatePurchase("contrato-moderno", decimal.RequireFromString("15.00")))

	require.NoError(t, FlushAll())
	assert.False(t, mr.Exists(templateViewsKey))

	var stat models.TemplateStat
	require.NoError(t, db.First(&stat, "template_id = ?", "contrato-moderno").Error)
	assert.Equal(t, int64(2), stat.Views)
	assert.Equal(t, int64(1), stat.Purchases)
	assert.True(t, stat.Revenue.Equal(decimal.RequireFromString("15")), stat.Revenue.String())

	require.NoError(t, AddTemplateView("contrato-moderno"))
	require.NoError(t, AddTemplatePurchase("contrato-moderno", decimal.RequireFromString("25.00")))
	require.NoError(t, FlushAll())

	require.NoError(t, db.First(&stat, "template_id = ?", "contrato-moderno").Error)
	assert.Equal(t, int64(3), stat.Views)
	assert.Equal(t, int64(2), stat.Purchases)
	assert.True(t, stat.Revenue.Equal(decimal.RequireFromString("40")), stat.Revenue.String())

	var count int64
	require.NoError(t, db.Model(&models.TemplateStat{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestFlushWithNothingPending(t *testing.T) {
	setup(t)
	assert.NoError(t, FlushAll())
}

func TestFlushWithoutDatabase(t *testing.T) {
	setup(t)
	database.SetDB(nil)
	assert.Error(t, FlushAll())
}
