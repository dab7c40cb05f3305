package totals

import (
	"log/slog"
	"strings"

	"nostrmart/internal/domain"

	"github.com/shopspring/decimal"
)

// defaultRates maps a currency code to sats per unit. The table is a static
// approximation, not live market data; rates are overridable via SetRate.
var defaultRates = map[string]decimal.Decimal{
	"SATS": decimal.NewFromInt(1),
	"SAT":  decimal.NewFromInt(1),
	"BTC":  decimal.NewFromInt(100_000_000),
	"USD":  decimal.NewFromInt(40_000),
	"EUR":  decimal.NewFromInt(43_000),
	"GBP":  decimal.NewFromInt(50_000),
}

// Converter turns native-currency prices into sats via a fixed rate table.
type Converter struct {
	rates map[string]decimal.Decimal
	log   *slog.Logger
}

// NewConverter returns a converter seeded with the default rate table.
func NewConverter(log *slog.Logger) *Converter {
	if log == nil {
		log = slog.Default()
	}
	rates := make(map[string]decimal.Decimal, len(defaultRates))
	for k, v := range defaultRates {
		rates[k] = v
	}
	return &Converter{rates: rates, log: log}
}

// SetRate overrides the sats-per-unit rate for a currency.
func (c *Converter) SetRate(currency string, satsPerUnit decimal.Decimal) {
	c.rates[strings.ToUpper(currency)] = satsPerUnit
}

// ToSats converts a price to sats, floored to the nearest sat. An unknown
// currency code is passed through at rate 1 with a warning; it must never
// crash the computation.
func (c *Converter) ToSats(p domain.Price) int64 {
	rate, ok := c.rates[strings.ToUpper(p.Currency)]
	if !ok {
		c.log.Warn("unknown currency, applying default rate", "currency", p.Currency)
		rate = decimal.NewFromInt(1)
	}
	return p.Amount.Mul(rate).Floor().IntPart()
}
