// Package pricing maps a rendered page count to one of two fixed price tiers.
package pricing

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"

	"github.com/lexforge/lexforge/internal/pkg/env"
)

const (
	DefaultBasePrice     = "15.00"
	DefaultExtendedPrice = "25.00"
	DefaultPageThreshold = 10
)

// Policy holds the two price points and the page threshold between them.
type Policy struct {
	BasePrice     decimal.Decimal
	ExtendedPrice decimal.Decimal
	PageThreshold int
}

// Price returns extended when pageCount is strictly greater than threshold.
// A document with exactly threshold pages stays on the base tier.
func Price(pageCount int, basePrice, extendedPrice decimal.Decimal, threshold int) decimal.Decimal {
	if pageCount > threshold {
		return extendedPrice
	}
	return basePrice
}

// Price applies the policy to pageCount.
func (p Policy) Price(pageCount int) decimal.Decimal {
	return Price(pageCount, p.BasePrice, p.ExtendedPrice, p.PageThreshold)
}

// IsExtended reports whether pageCount falls in the extended tier.
func (p Policy) IsExtended(pageCount int) bool {
	return pageCount > p.PageThreshold
}

// DefaultPolicy is 15.00 up to 10 pages and 25.00 above.
func DefaultPolicy() Policy {
	return Policy{
		BasePrice:     decimal.RequireFromString(DefaultBasePrice),
		ExtendedPrice: decimal.RequireFromString(DefaultExtendedPrice),
		PageThreshold: DefaultPageThreshold,
	}
}

// LoadPolicy reads PRICE_BASE, PRICE_EXTENDED and PRICE_PAGE_THRESHOLD.
// Malformed values and a negative threshold fall back to the defaults. A
// threshold of 0 puts every document on the extended tier.
func LoadPolicy() Policy {
	p := DefaultPolicy()
	p.BasePrice = decimalFromEnv("PRICE_BASE", p.BasePrice)
	p.ExtendedPrice = decimalFromEnv("PRICE_EXTENDED", p.ExtendedPrice)
	p.PageThreshold = env.GetEnvInt("PRICE_PAGE_THRESHOLD", p.PageThreshold)
	if p.PageThreshold < 0 {
		log.Warnf("[Pricing] PRICE_PAGE_THRESHOLD=%d is negative, using %d", p.PageThreshold, DefaultPageThreshold)
		p.PageThreshold = DefaultPageThreshold
	}
	return p
}

// Format renders an amount with two decimals, the form used in response headers.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

func decimalFromEnv(key string, def decimal.Decimal) decimal.Decimal {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		log.Warnf("[Pricing] %s=%q is not a valid amount, using %s", key, raw, Format(def))
		return def
	}
	return v
}
