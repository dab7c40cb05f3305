package resolver

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"nostrmart/internal/domain"

	"github.com/shopspring/decimal"
)

type stubProducts struct {
	records map[string]domain.ProductRecord
	err     error
	calls   int
}

func (s *stubProducts) ProductByID(_ context.Context, id string) (*domain.ProductRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	rec, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

type stubShipping struct {
	options map[string][]domain.ShippingOption
	err     error
	calls   int
}

func (s *stubShipping) ShippingOptionsBySeller(_ context.Context, pubkey string) ([]domain.ShippingOption, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.options[pubkey], nil
}

type stubShares struct {
	shares []domain.V4VShare
	err    error
}

func (s *stubShares) SharesForUser(_ context.Context, _ string) ([]domain.V4VShare, error) {
	return s.shares, s.err
}

func satsPrice(n int64) domain.Price {
	return domain.Price{Amount: decimal.NewFromInt(n), Currency: "SATS"}
}

func newTestResolver(p *stubProducts, sh *stubShipping) *Resolver {
	return New(p, sh, &stubShares{}, time.Second, slog.Default())
}

func TestProductCached(t *testing.T) {
	products := &stubProducts{records: map[string]domain.ProductRecord{
		"p1": {ID: "p1", SellerPubkey: "seller", Price: satsPrice(1000)},
	}}
	r := newTestResolver(products, &stubShipping{})

	rec, ok := r.Product(context.Background(), "p1")
	if !ok || rec.ID != "p1" {
		t.Fatalf("expected resolution, got ok=%v rec=%+v", ok, rec)
	}
	if _, ok := r.Product(context.Background(), "p1"); !ok {
		t.Fatalf("expected cached resolution")
	}
	if products.calls != 1 {
		t.Fatalf("expected one collaborator call, got %d", products.calls)
	}
}

func TestProductNotFoundCachedNegatively(t *testing.T) {
	products := &stubProducts{}
	r := newTestResolver(products, &stubShipping{})

	for i := 0; i < 3; i++ {
		if _, ok := r.Product(context.Background(), "missing"); ok {
			t.Fatalf("expected not found")
		}
	}
	if products.calls != 1 {
		t.Fatalf("expected one collaborator call, got %d", products.calls)
	}
}

func TestProductLookupErrorTreatedAsNotFound(t *testing.T) {
	products := &stubProducts{err: errors.New("relay unreachable")}
	r := newTestResolver(products, &stubShipping{})

	if _, ok := r.Product(context.Background(), "p1"); ok {
		t.Fatalf("expected failed lookup to resolve as not found")
	}
	if _, ok := r.Product(context.Background(), "p1"); ok {
		t.Fatalf("expected cached negative after failure")
	}
	if products.calls != 1 {
		t.Fatalf("expected one collaborator call, got %d", products.calls)
	}
}

func TestCachedProductNeverFetches(t *testing.T) {
	products := &stubProducts{records: map[string]domain.ProductRecord{
		"p1": {ID: "p1", SellerPubkey: "seller", Price: satsPrice(1)},
	}}
	r := newTestResolver(products, &stubShipping{})

	if _, ok := r.CachedProduct("p1"); ok {
		t.Fatalf("expected cache miss before any resolution")
	}
	if products.calls != 0 {
		t.Fatalf("CachedProduct must not hit the collaborator")
	}

	r.Product(context.Background(), "p1")
	if rec, ok := r.CachedProduct("p1"); !ok || rec.SellerPubkey != "seller" {
		t.Fatalf("expected cached record, got ok=%v rec=%+v", ok, rec)
	}
}

func TestShippingOptionResolution(t *testing.T) {
	shipping := &stubShipping{options: map[string][]domain.ShippingOption{
		"seller": {
			{ID: "std", SellerPubkey: "seller", Name: "Standard", Price: satsPrice(300)},
			{ID: "exp", SellerPubkey: "seller", Name: "Express", Price: satsPrice(900)},
		},
	}}
	r := newTestResolver(&stubProducts{}, shipping)

	opt := r.ShippingOption(context.Background(), "30406:seller:exp")
	if opt == nil || opt.Name != "Express" {
		t.Fatalf("unexpected option: %+v", opt)
	}

	if opt := r.ShippingOption(context.Background(), "30406:seller:absent"); opt != nil {
		t.Fatalf("expected nil for absent local id, got %+v", opt)
	}
	if opt := r.ShippingOption(context.Background(), "30406:stranger:std"); opt != nil {
		t.Fatalf("expected nil for seller without shipping set, got %+v", opt)
	}
	if opt := r.ShippingOption(context.Background(), "not-a-ref"); opt != nil {
		t.Fatalf("expected nil for malformed ref, got %+v", opt)
	}
	if shipping.calls != 2 {
		t.Fatalf("expected one call per seller, got %d", shipping.calls)
	}
}

func TestInvalidateShippingRefIsNarrow(t *testing.T) {
	shipping := &stubShipping{options: map[string][]domain.ShippingOption{
		"a": {{ID: "std", SellerPubkey: "a", Price: satsPrice(1)}},
		"b": {{ID: "std", SellerPubkey: "b", Price: satsPrice(2)}},
	}}
	r := newTestResolver(&stubProducts{}, shipping)

	r.ShippingOption(context.Background(), "30406:a:std")
	r.ShippingOption(context.Background(), "30406:b:std")
	if shipping.calls != 2 {
		t.Fatalf("expected two calls, got %d", shipping.calls)
	}

	r.InvalidateShippingRef("30406:a:std")

	r.ShippingOption(context.Background(), "30406:a:std")
	r.ShippingOption(context.Background(), "30406:b:std")
	if shipping.calls != 3 {
		t.Fatalf("only seller a should have been refetched, got %d calls", shipping.calls)
	}
}

func TestCacheSupersededWriteLoses(t *testing.T) {
	c := newCache[string]()

	v1 := c.begin("k")
	v2 := c.begin("k")

	if c.commit("k", v1, result[string]{value: "stale", found: true}) {
		t.Fatalf("superseded write must lose")
	}
	if !c.commit("k", v2, result[string]{value: "fresh", found: true}) {
		t.Fatalf("latest write must land")
	}
	got, ok := c.get("k")
	if !ok || got.value != "fresh" {
		t.Fatalf("unexpected entry: %+v ok=%v", got, ok)
	}
}

func TestCacheInvalidateOutracesInFlightWrite(t *testing.T) {
	c := newCache[string]()

	v := c.begin("k")
	c.invalidate("k")

	if c.commit("k", v, result[string]{value: "stale", found: true}) {
		t.Fatalf("write claimed before invalidation must lose")
	}
	if _, ok := c.get("k"); ok {
		t.Fatalf("invalidated key must stay absent")
	}
}
