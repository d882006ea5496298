package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lexforge/lexforge/app/repository"
	"github.com/lexforge/lexforge/internal/pkg/catalog"
	"github.com/lexforge/lexforge/internal/pkg/pricing"
)

type templateView struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    catalog.Category `json:"category"`
	Price       string           `json:"price"`
	Color       string           `json:"color"`
	Fields      []catalog.Field  `json:"fields"`
}

func newTemplateView(d catalog.Definition) templateView {
	return templateView{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		Price:       pricing.Format(d.BasePrice),
		Color:       d.Color,
		Fields:      d.Fields,
	}
}

func templateViews(defs []catalog.Definition) []templateView {
	out := make([]templateView, 0, len(defs))
	for _, d := range defs {
		out = append(out, newTemplateView(d))
	}
	return out
}

// HandleListTemplates returns every template in catalog order.
func (ctl *Controller) HandleListTemplates(c *fiber.Ctx) error {
	defs := ctl.deps.Registry.List()
	return c.JSON(fiber.Map{
		"templates": templateViews(defs),
		"total":     len(defs),
	})
}

func (ctl *Controller) HandleListTemplatesByCategory(c *fiber.Ctx) error {
	category := catalog.Category(c.Params("category"))
	if !category.IsValid() {
		return errorJSON(c, fiber.StatusBadRequest, "invalid_category", "unknown category "+string(category))
	}
	defs := ctl.deps.Registry.ListByCategory(category)
	return c.JSON(fiber.Map{
		"category":  category,
		"templates": templateViews(defs),
		"total":     len(defs),
	})
}

// HandleGetTemplate returns one template and counts the view.
func (ctl *Controller) HandleGetTemplate(c *fiber.Ctx) error {
	def, err := ctl.deps.Registry.Get(c.Params("id"))
	if err != nil {
		return errorJSON(c, fiber.StatusNotFound, "not_found", "template not found")
	}
	if err := ctl.deps.Counters.AddTemplateView(def.ID); err != nil {
		log.Warnf("[Templates] view counter for %s not updated: %v", def.ID, err)
	}
	return c.JSON(newTemplateView(def))
}

// HandleTemplateStats aggregates catalog, telemetry and payment figures.
func (ctl *Controller) HandleTemplateStats(c *fiber.Ctx) error {
	repos := ctl.deps.Repositories

	var (
		totals   *repository.TemplateTotals
		byStatus map[string]int64
	)
	revenue := pricing.Format(decimal.Zero)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		totals, err = repos.TemplateStat.Totals()
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = repos.Document.CountByPaymentStatus()
		return err
	})
	g.Go(func() error {
		amount, err := repos.Document.ApprovedRevenue()
		if err == nil {
			revenue = pricing.Format(amount)
		}
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("[Templates] stats query failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_error", "statistics unavailable")
	}

	byCategory := fiber.Map{}
	for _, category := range catalog.Categories {
		if n := len(ctl.deps.Registry.ListByCategory(category)); n > 0 {
			byCategory[string(category)] = n
		}
	}

	total := ctl.deps.Registry.Len()
	return c.JSON(fiber.Map{
		"total":          total,
		"active":         total,
		"byCategory":     byCategory,
		"totalViews":     totals.Views,
		"totalPurchases": totals.Purchases,
		"totalRevenue":   pricing.Format(totals.Revenue),
		"documents":      byStatus,
		"paidRevenue":    revenue,
	})
}
