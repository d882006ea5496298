// Package counter buffers template telemetry in Redis hashes and drains it
// into the template_stats table.
package counter

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lexforge/lexforge/app/models"
	"github.com/lexforge/lexforge/internal/pkg/cache"
	"github.com/lexforge/lexforge/internal/pkg/database"
)

const (
	templateViewsKey     = "template:counters:views"
	templatePurchasesKey = "template:counters:purchases"
	templateRevenueKey   = "template:counters:revenue_cents"
)

// AddTemplateView increments the pending view counter for a template.
func AddTemplateView(templateID string) error {
	return cache.GetClient().HIncrBy(context.Background(), templateViewsKey, templateID, 1).Err()
}

// AddTemplatePurchase increments the pending purchase counter and revenue of
// a template.
func AddTemplatePurchase(templateID string, price decimal.Decimal) error {
	ctx := context.Background()
	pipe := cache.GetClient().TxPipeline()
	pipe.HIncrBy(ctx, templatePurchasesKey, templateID, 1)
	pipe.HIncrBy(ctx, templateRevenueKey, templateID, price.Shift(2).Round(0).IntPart())
	_, err := pipe.Exec(ctx)
	return err
}

// FlushAll drains the pending counters into template_stats.
func FlushAll() error {
	return Flush(database.GetDB())
}

// Flush drains the pending counters into template_stats on db.
func Flush(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	views, err := drainHash(templateViewsKey)
	if err != nil {
		return err
	}
	purchases, err := drainHash(templatePurchasesKey)
	if err != nil {
		return err
	}
	revenue, err := drainHash(templateRevenueKey)
	if err != nil {
		return err
	}

	ids := make(map[string]struct{})
	for _, m := range []map[string]int64{views, purchases, revenue} {
		for id := range m {
			ids[id] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	return db.Transaction(func(tx *gorm.DB) error {
		for _, id := range sorted {
			stat := models.TemplateStat{
				TemplateID: id,
				Views:      views[id],
				Purchases:  purchases[id],
				Revenue:    decimal.New(revenue[id], -2),
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "template_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"views":      gorm.Expr("template_stats.views + ?", stat.Views),
					"purchases":  gorm.Expr("template_stats.purchases + ?", stat.Purchases),
					"revenue":    gorm.Expr("template_stats.revenue + ?", stat.Revenue),
					"updated_at": time.Now(),
				}),
			}).Create(&stat).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// drainHash atomically moves a Redis hash to a temporary key and returns its
// numeric fields. Increments arriving during the drain land in a fresh hash.
func drainHash(redisKey string) (map[string]int64, error) {
	ctx := context.Background()
	rdb := cache.GetClient()

	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Rename(ctx, redisKey, tmpKey).Err(); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil, nil
		}
		return nil, err
	}
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(data))
	for k, v := range data {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil || n == 0 {
			continue
		}
		out[k] = n
	}
	return out, nil
}
