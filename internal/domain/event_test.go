package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func productEvent() RawEvent {
	return RawEvent{
		Kind:   KindProduct,
		Pubkey: "seller-pk",
		Tags: [][]string{
			{"d", "prod-1"},
			{"title", "Handmade Mug"},
			{"image", "https://example.com/a.png"},
			{"image", "https://example.com/b.png"},
			{"price", "21.50", "usd"},
			{"quantity", "7"},
		},
	}
}

func TestParseProductRecord(t *testing.T) {
	rec, err := ParseProductRecord(productEvent())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "prod-1" || rec.SellerPubkey != "seller-pk" || rec.Title != "Handmade Mug" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(rec.Images))
	}
	if rec.Price.Currency != "USD" || !rec.Price.Amount.Equal(decimal.NewFromFloat(21.50)) {
		t.Fatalf("unexpected price: %+v", rec.Price)
	}
	if rec.Stock != 7 {
		t.Fatalf("unexpected stock: %d", rec.Stock)
	}
}

func TestParseProductRecordMalformed(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RawEvent)
	}{
		{"wrong kind", func(e *RawEvent) { e.Kind = 1 }},
		{"missing d", func(e *RawEvent) { e.Tags = e.Tags[1:] }},
		{"missing price", func(e *RawEvent) {
			var tags [][]string
			for _, tag := range e.Tags {
				if tag[0] != "price" {
					tags = append(tags, tag)
				}
			}
			e.Tags = tags
		}},
		{"bad amount", func(e *RawEvent) { e.Tags[4] = []string{"price", "abc", "USD"} }},
		{"empty currency", func(e *RawEvent) { e.Tags[4] = []string{"price", "10", " "} }},
		{"negative quantity", func(e *RawEvent) { e.Tags[5] = []string{"quantity", "-1"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := productEvent()
			tc.mutate(&e)
			if _, err := ParseProductRecord(e); !errors.Is(err, ErrMalformedRecord) {
				t.Fatalf("expected malformed record error, got %v", err)
			}
		})
	}
}

func TestParseShippingOption(t *testing.T) {
	e := RawEvent{
		Kind:   KindShippingOption,
		Pubkey: "seller-pk",
		Tags: [][]string{
			{"d", "ship-1"},
			{"title", "Standard"},
			{"price", "4.50", "USD"},
			{"carrier", "USPS"},
			{"service", "ground"},
			{"country", "US"},
		},
	}
	opt, err := ParseShippingOption(e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opt.ID != "ship-1" || opt.SellerPubkey != "seller-pk" || opt.Name != "Standard" {
		t.Fatalf("unexpected option: %+v", opt)
	}
	if opt.Carrier != "USPS" || opt.Service != "ground" || opt.Country != "US" {
		t.Fatalf("unexpected metadata: %+v", opt)
	}
}

func TestParseShippingOptionMalformed(t *testing.T) {
	e := RawEvent{Kind: KindShippingOption, Tags: [][]string{{"price", "1", "USD"}}}
	if _, err := ParseShippingOption(e); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected malformed record error, got %v", err)
	}
}

func TestParseShippingRef(t *testing.T) {
	ref, err := ParseShippingRef("30406:seller-pk:ship-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != 30406 || ref.SellerPubkey != "seller-pk" || ref.LocalID != "ship-1" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.String() != "30406:seller-pk:ship-1" {
		t.Fatalf("round trip mismatch: %s", ref.String())
	}

	for _, bad := range []string{"", "30406", "30406:pk", "x:pk:id", "30406::id", "30406:pk:"} {
		if _, err := ParseShippingRef(bad); !errors.Is(err, ErrMalformedRecord) {
			t.Fatalf("expected malformed ref error for %q, got %v", bad, err)
		}
	}
}

func TestCartUserRemoveProduct(t *testing.T) {
	u := &CartUser{Pubkey: "u", ProductIDs: []string{"a", "b", "c"}}
	u.RemoveProduct("b")
	if len(u.ProductIDs) != 2 || u.HasProduct("b") {
		t.Fatalf("unexpected product ids: %v", u.ProductIDs)
	}
	u.RemoveProduct("missing")
	if len(u.ProductIDs) != 2 {
		t.Fatalf("remove of missing id should be a no-op: %v", u.ProductIDs)
	}
}

func TestNormalizedCartClone(t *testing.T) {
	cart := NewNormalizedCart()
	cart.Users["u"] = &CartUser{Pubkey: "u", ProductIDs: []string{"p"}}
	cart.Products["p"] = &CartProduct{ID: "p", Amount: 1}

	clone := cart.Clone()
	clone.Users["u"].ProductIDs[0] = "other"
	clone.Products["p"].Amount = 99

	if cart.Users["u"].ProductIDs[0] != "p" || cart.Products["p"].Amount != 1 {
		t.Fatalf("clone shares state with original")
	}
}
