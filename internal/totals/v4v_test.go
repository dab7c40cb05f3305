package totals

import (
	"log/slog"
	"testing"

	"nostrmart/internal/domain"

	"github.com/shopspring/decimal"
)

func pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sumAllocs(allocs []Allocation) int64 {
	var total int64
	for _, a := range allocs {
		total += a.AmountSats
	}
	return total
}

func sellerAlloc(t *testing.T, allocs []Allocation) Allocation {
	t.Helper()
	for _, a := range allocs {
		if a.IsSeller {
			return a
		}
	}
	t.Fatalf("no seller allocation in %+v", allocs)
	return Allocation{}
}

func TestSplitSharesConservation(t *testing.T) {
	shares := []domain.V4VShare{
		{ID: "one", Recipient: "r1", Percentage: pct("33.33")},
		{ID: "two", Recipient: "r2", Percentage: pct("10.5")},
	}
	for _, total := range []int64{0, 1, 999, 1001, 123457} {
		allocs := SplitShares(total, "seller", shares, slog.Default())
		if got := sumAllocs(allocs); got != total {
			t.Fatalf("total %d: allocations sum to %d", total, got)
		}
	}
}

func TestSplitSharesFloorsRecipients(t *testing.T) {
	shares := []domain.V4VShare{
		{ID: "one", Recipient: "r1", Percentage: pct("33.33")},
	}
	allocs := SplitShares(1001, "seller", shares, slog.Default())
	if len(allocs) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(allocs))
	}
	// 1001 * 33.33% = 333.6333, floored.
	if allocs[0].AmountSats != 333 {
		t.Fatalf("recipient amount: got %d", allocs[0].AmountSats)
	}
	seller := sellerAlloc(t, allocs)
	if seller.AmountSats != 668 {
		t.Fatalf("seller must absorb the remainder, got %d", seller.AmountSats)
	}
	if !seller.Percentage.Equal(pct("66.67")) {
		t.Fatalf("seller percentage: got %s", seller.Percentage)
	}
}

func TestSplitSharesNoRecipients(t *testing.T) {
	allocs := SplitShares(5000, "seller", nil, slog.Default())
	if len(allocs) != 1 {
		t.Fatalf("expected only the seller, got %d allocations", len(allocs))
	}
	seller := sellerAlloc(t, allocs)
	if seller.AmountSats != 5000 || !seller.Percentage.Equal(pct("100")) {
		t.Fatalf("unexpected seller allocation: %+v", seller)
	}
}

func TestSplitSharesOverHundredIgnored(t *testing.T) {
	shares := []domain.V4VShare{
		{ID: "one", Recipient: "r1", Percentage: pct("60")},
		{ID: "two", Recipient: "r2", Percentage: pct("55")},
	}
	allocs := SplitShares(1000, "seller", shares, slog.Default())
	if len(allocs) != 1 {
		t.Fatalf("invalid shares must be ignored wholesale, got %+v", allocs)
	}
	if sellerAlloc(t, allocs).AmountSats != 1000 {
		t.Fatalf("seller must receive the full amount")
	}
}

func TestSplitSharesExactHundred(t *testing.T) {
	shares := []domain.V4VShare{
		{ID: "one", Recipient: "r1", Percentage: pct("100")},
	}
	allocs := SplitShares(1000, "seller", shares, slog.Default())
	if allocs[0].AmountSats != 1000 {
		t.Fatalf("recipient should receive everything, got %d", allocs[0].AmountSats)
	}
	seller := sellerAlloc(t, allocs)
	if seller.AmountSats != 0 || !seller.Percentage.Equal(decimal.Zero) {
		t.Fatalf("seller keeps nothing at 100%%, got %+v", seller)
	}
}
