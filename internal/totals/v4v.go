package totals

import (
	"log/slog"

	"nostrmart/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Allocation is one recipient's cut of a seller-attributable total.
type Allocation struct {
	Recipient  string
	Name       string
	Percentage decimal.Decimal
	AmountSats int64
	IsSeller   bool
}

// SplitShares distributes totalSats between the seller and the v4v
// recipients. Each recipient's amount is floored to the nearest sat; the
// seller absorbs the rounding remainder, so the allocations always sum to
// totalSats exactly. Shares whose percentages sum past 100 are ignored
// wholesale and the full amount goes to the seller.
func SplitShares(totalSats int64, sellerPubkey string, shares []domain.V4VShare, log *slog.Logger) []Allocation {
	if log == nil {
		log = slog.Default()
	}

	pctSum := decimal.Zero
	for _, s := range shares {
		pctSum = pctSum.Add(s.Percentage)
	}
	if pctSum.GreaterThan(hundred) {
		log.Warn("v4v percentages exceed 100, paying seller in full",
			"seller", sellerPubkey, "percent_sum", pctSum.String())
		shares = nil
		pctSum = decimal.Zero
	}

	total := decimal.NewFromInt(totalSats)
	allocs := make([]Allocation, 0, len(shares)+1)
	var distributed int64
	for _, s := range shares {
		amount := total.Mul(s.Percentage).Div(hundred).Floor().IntPart()
		distributed += amount
		allocs = append(allocs, Allocation{
			Recipient:  s.Recipient,
			Name:       s.Name,
			Percentage: s.Percentage,
			AmountSats: amount,
		})
	}

	allocs = append(allocs, Allocation{
		Recipient:  sellerPubkey,
		Percentage: hundred.Sub(pctSum),
		AmountSats: totalSats - distributed,
		IsSeller:   true,
	})
	return allocs
}
