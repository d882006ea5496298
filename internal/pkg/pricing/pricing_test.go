package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/lexforge/lexforge/internal/pkg/env"
)

func TestPriceTierBoundary(t *testing.T) {
	base := decimal.NewFromInt(15)
	extended := decimal.NewFromInt(25)

	tests := []struct {
		pages int
		want  decimal.Decimal
	}{
		{pages: 1, want: base},
		{pages: 9, want: base},
		{pages: 10, want: base},
		{pages: 11, want: extended},
		{pages: 12, want: extended},
		{pages: 500, want: extended},
	}

	for _, tt := range tests {
		got := Price(tt.pages, base, extended, 10)
		assert.True(t, tt.want.Equal(got), "Price(%d) = %s, want %s", tt.pages, got, tt.want)
	}
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, "15.00", Format(p.Price(10)))
	assert.Equal(t, "25.00", Format(p.Price(11)))
	assert.False(t, p.IsExtended(10))
	assert.True(t, p.IsExtended(11))
}

func TestLoadPolicyFromEnv(t *testing.T) {
	env.Env = map[string]string{
		"PRICE_BASE":           "19.90",
		"PRICE_EXTENDED":       "29.90",
		"PRICE_PAGE_THRESHOLD": "5",
	}
	t.Cleanup(func() { env.Env = nil })

	p := LoadPolicy()
	assert.Equal(t, "19.90", Format(p.BasePrice))
	assert.Equal(t, "29.90", Format(p.ExtendedPrice))
	assert.Equal(t, 5, p.PageThreshold)
}

func TestLoadPolicyIgnoresInvalidValues(t *testing.T) {
	env.Env = map[string]string{
		"PRICE_BASE":           "abc",
		"PRICE_EXTENDED":       "-3",
		"PRICE_PAGE_THRESHOLD": "-1",
	}
	t.Cleanup(func() { env.Env = nil })

	p := LoadPolicy()
	assert.Equal(t, DefaultBasePrice, Format(p.BasePrice))
	assert.Equal(t, DefaultExtendedPrice, Format(p.ExtendedPrice))
	assert.Equal(t, DefaultPageThreshold, p.PageThreshold)
}

func TestLoadPolicyAcceptsZeroThreshold(t *testing.T) {
	env.Env = map[string]string{"PRICE_PAGE_THRESHOLD": "0"}
	t.Cleanup(func() { env.Env = nil })

	p := LoadPolicy()
	assert.Equal(t, 0, p.PageThreshold)
	assert.Equal(t, DefaultExtendedPrice, Format(p.Price(1)))
	assert.True(t, p.IsExtended(1))
}
