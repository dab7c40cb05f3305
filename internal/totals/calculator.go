// Package totals derives per-product, per-user and grand cart totals from the
// normalized cart and resolver facts. Derivation is pure apart from cache
// population: the same store state and resolver answers always produce the
// same result.
package totals

import (
	"context"
	"log/slog"
	"sort"

	"nostrmart/internal/domain"
	"nostrmart/internal/resolver"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ProductTotal is the derived cost of one line item in its native currency
// and in sats. An unresolved product contributes zero and is flagged.
type ProductTotal struct {
	ProductID        string
	SellerPubkey     string
	Currency         string
	Subtotal         decimal.Decimal
	Shipping         decimal.Decimal
	SubtotalSats     int64
	ShippingSats     int64
	Resolved         bool
	ShippingExcluded bool
}

// TotalSats is the line's full contribution to the grand total.
func (t ProductTotal) TotalSats() int64 {
	return t.SubtotalSats + t.ShippingSats
}

// CurrencyTotal aggregates native-currency amounts for one currency code.
type CurrencyTotal struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// CartTotals is the derived aggregate: sats plus a per-currency partition.
// Never persisted; always recomputed from the live store.
type CartTotals struct {
	SubtotalSats int64                    `json:"subtotalInSats"`
	ShippingSats int64                    `json:"shippingInSats"`
	TotalSats    int64                    `json:"totalInSats"`
	Currency     map[string]CurrencyTotal `json:"currencyTotals"`
}

// NewCartTotals returns an all-zero total with the partition map allocated.
func NewCartTotals() CartTotals {
	return CartTotals{Currency: make(map[string]CurrencyTotal)}
}

func (t *CartTotals) add(p ProductTotal) {
	t.SubtotalSats += p.SubtotalSats
	t.ShippingSats += p.ShippingSats
	t.TotalSats += p.TotalSats()
	if !p.Resolved {
		return
	}
	ct := t.Currency[p.Currency]
	ct.Subtotal = ct.Subtotal.Add(p.Subtotal)
	ct.Shipping = ct.Shipping.Add(p.Shipping)
	ct.Total = ct.Total.Add(p.Subtotal).Add(p.Shipping)
	t.Currency[p.Currency] = ct
}

func (t *CartTotals) merge(other CartTotals) {
	t.SubtotalSats += other.SubtotalSats
	t.ShippingSats += other.ShippingSats
	t.TotalSats += other.TotalSats
	for currency, ct := range other.Currency {
		cur := t.Currency[currency]
		cur.Subtotal = cur.Subtotal.Add(ct.Subtotal)
		cur.Shipping = cur.Shipping.Add(ct.Shipping)
		cur.Total = cur.Total.Add(ct.Total)
		t.Currency[currency] = cur
	}
}

// UserTotal aggregates one user's line items.
type UserTotal struct {
	Pubkey   string
	Products []ProductTotal
	Totals   CartTotals
}

// Summary is one full derivation pass over the cart: grand totals, per-user
// totals, and sats attributable to each seller (the v4v split base).
type Summary struct {
	Totals  CartTotals
	Users   map[string]UserTotal
	Sellers map[string]int64
}

// Calculator derives totals using the resolver for prices and shipping.
type Calculator struct {
	resolver *resolver.Resolver
	conv     *Converter
	log      *slog.Logger
}

// NewCalculator wires a calculator over a resolver and a converter.
func NewCalculator(r *resolver.Resolver, conv *Converter, log *slog.Logger) *Calculator {
	if log == nil {
		log = slog.Default()
	}
	return &Calculator{resolver: r, conv: conv, log: log}
}

// ProductTotal derives one line item's cost. A failed catalog resolution
// contributes zero and is logged, never surfaced as an error. A shipping
// snapshot priced in a different currency than the product is excluded from
// the sums and flagged, never coerced.
func (c *Calculator) ProductTotal(ctx context.Context, line *domain.CartProduct) ProductTotal {
	out := ProductTotal{ProductID: line.ID, SellerPubkey: line.SellerPubkey}

	rec, ok := c.resolver.Product(ctx, line.ID)
	if !ok {
		c.log.Warn("excluding unresolved product from totals", "product_id", line.ID)
		return out
	}

	out.Resolved = true
	out.Currency = rec.Price.Currency
	if rec.SellerPubkey != "" {
		out.SellerPubkey = rec.SellerPubkey
	}

	qty := line.Amount
	if qty < 1 {
		qty = 1
	}
	out.Subtotal = rec.Price.Amount.Mul(decimal.NewFromInt(int64(qty)))
	out.SubtotalSats = c.conv.ToSats(domain.Price{Amount: out.Subtotal, Currency: rec.Price.Currency})

	if line.ShippingCost != nil {
		if line.ShippingCost.Currency != rec.Price.Currency {
			c.log.Warn("shipping selection unresolved",
				"product_id", line.ID,
				"product_currency", rec.Price.Currency,
				"shipping_currency", line.ShippingCost.Currency,
				"err", domain.ErrCurrencyMismatch)
			out.ShippingExcluded = true
		} else {
			out.Shipping = line.ShippingCost.Amount
			out.ShippingSats = c.conv.ToSats(*line.ShippingCost)
		}
	}
	return out
}

// UserTotal derives one user's totals. Per-product resolutions run
// concurrently and are joined, so latency is bounded by the slowest single
// lookup rather than their sum.
func (c *Calculator) UserTotal(ctx context.Context, cart domain.NormalizedCart, pubkey string) UserTotal {
	out := UserTotal{Pubkey: pubkey, Totals: NewCartTotals()}
	user, ok := cart.Users[pubkey]
	if !ok {
		return out
	}

	lines := make([]*domain.CartProduct, 0, len(user.ProductIDs))
	for _, id := range user.ProductIDs {
		line, ok := cart.Products[id]
		if !ok {
			c.log.Warn("user references missing product", "user", pubkey, "product_id", id)
			continue
		}
		lines = append(lines, line)
	}

	results := make([]ProductTotal, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			results[i] = c.ProductTotal(gctx, line)
			return nil
		})
	}
	_ = g.Wait()

	out.Products = results
	for _, pt := range results {
		out.Totals.add(pt)
	}
	return out
}

// Summarize runs one derivation pass over the whole cart. An empty cart
// yields an all-zero summary, not an error.
func (c *Calculator) Summarize(ctx context.Context, cart domain.NormalizedCart) Summary {
	sum := Summary{
		Totals:  NewCartTotals(),
		Users:   make(map[string]UserTotal),
		Sellers: make(map[string]int64),
	}

	pubkeys := make([]string, 0, len(cart.Users))
	for pk := range cart.Users {
		pubkeys = append(pubkeys, pk)
	}
	sort.Strings(pubkeys)

	for _, pk := range pubkeys {
		ut := c.UserTotal(ctx, cart, pk)
		sum.Users[pk] = ut
		sum.Totals.merge(ut.Totals)
		for _, pt := range ut.Products {
			if pt.SellerPubkey != "" {
				sum.Sellers[pt.SellerPubkey] += pt.TotalSats()
			}
		}
	}
	return sum
}

// GrandTotal derives the cart-wide totals.
func (c *Calculator) GrandTotal(ctx context.Context, cart domain.NormalizedCart) CartTotals {
	return c.Summarize(ctx, cart).Totals
}
