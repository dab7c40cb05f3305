package catalog

import (
	"context"
	"sync"

	"nostrmart/internal/domain"

	"github.com/shopspring/decimal"
)

// Static is an in-memory catalog fed from parsed records. It backs cartsim
// and tests; a real deployment substitutes the relay-backed lookups.
type Static struct {
	mu       sync.RWMutex
	products map[string]*domain.ProductRecord
	shipping map[string][]domain.ShippingOption
	shares   map[string][]domain.V4VShare
}

// NewStatic returns an empty static catalog.
func NewStatic() *Static {
	return &Static{
		products: make(map[string]*domain.ProductRecord),
		shipping: make(map[string][]domain.ShippingOption),
		shares:   make(map[string][]domain.V4VShare),
	}
}

// PutProduct registers or replaces a product record.
func (s *Static) PutProduct(p domain.ProductRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// PutShipping registers a seller's shipping set, replacing any previous one.
func (s *Static) PutShipping(pubkey string, options []domain.ShippingOption) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shipping[pubkey] = append([]domain.ShippingOption(nil), options...)
}

// PutShares registers a user's revenue-split recipients.
func (s *Static) PutShares(pubkey string, shares []domain.V4VShare) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shares[pubkey] = append([]domain.V4VShare(nil), shares...)
}

// IngestEvent parses a raw marketplace event and stores the typed record.
// Malformed events are rejected with domain.ErrMalformedRecord.
func (s *Static) IngestEvent(e domain.RawEvent) error {
	switch e.Kind {
	case domain.KindProduct:
		p, err := domain.ParseProductRecord(e)
		if err != nil {
			return err
		}
		s.PutProduct(*p)
		return nil
	case domain.KindShippingOption:
		opt, err := domain.ParseShippingOption(e)
		if err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		existing := s.shipping[opt.SellerPubkey]
		for i, o := range existing {
			if o.ID == opt.ID {
				existing[i] = *opt
				return nil
			}
		}
		s.shipping[opt.SellerPubkey] = append(existing, *opt)
		return nil
	}
	return domain.ErrMalformedRecord
}

func (s *Static) ProductByID(_ context.Context, id string) (*domain.ProductRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *Static) ShippingOptionsBySeller(_ context.Context, pubkey string) ([]domain.ShippingOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ShippingOption(nil), s.shipping[pubkey]...), nil
}

func (s *Static) SharesForUser(_ context.Context, pubkey string) ([]domain.V4VShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.V4VShare(nil), s.shares[pubkey]...), nil
}

// Demo populates the catalog with fixture data for manual runs. Idempotent.
func Demo() *Static {
	s := NewStatic()
	seller := "npub1demo-seller"
	s.PutProduct(domain.ProductRecord{
		ID:           "demo-shirt",
		SellerPubkey: seller,
		Title:        "Demo T-Shirt",
		Images:       []string{"https://example.com/shirt.png"},
		Price:        domain.Price{Amount: decimal.NewFromFloat(19.99), Currency: "USD"},
		Stock:        25,
	})
	s.PutProduct(domain.ProductRecord{
		ID:           "demo-sticker-pack",
		SellerPubkey: seller,
		Title:        "Sticker Pack",
		Price:        domain.Price{Amount: decimal.NewFromInt(2100), Currency: "SATS"},
		Stock:        100,
	})
	s.PutShipping(seller, []domain.ShippingOption{
		{
			ID:           "std-us",
			SellerPubkey: seller,
			Name:         "Standard US",
			Price:        domain.Price{Amount: decimal.NewFromFloat(4.50), Currency: "USD"},
			Carrier:      "USPS",
			Service:      "ground",
			Country:      "US",
		},
		{
			ID:           "std-sats",
			SellerPubkey: seller,
			Name:         "Standard (sats)",
			Price:        domain.Price{Amount: decimal.NewFromInt(900), Currency: "SATS"},
			Carrier:      "USPS",
			Service:      "ground",
			Country:      "US",
		},
	})
	s.PutShares("npub1demo-buyer", []domain.V4VShare{
		{ID: "community", Name: "Community fund", Recipient: "npub1community", Percentage: decimal.NewFromInt(5)},
	})
	return s
}
