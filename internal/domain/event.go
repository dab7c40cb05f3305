package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Event kinds for the marketplace records the cart consumes.
const (
	KindProduct        = 30402
	KindShippingOption = 30406
)

// RawEvent is the loosely-typed shape arriving from the protocol layer:
// a kind, an author and a bag of string tag arrays. Parsing happens here,
// at the boundary; malformed events are rejected, never propagated inward.
type RawEvent struct {
	Kind    int        `json:"kind"`
	Pubkey  string     `json:"pubkey"`
	Tags    [][]string `json:"tags"`
	Content string     `json:"content"`
}

// Tag returns the first value of the named tag, or "" when absent.
func (e RawEvent) Tag(name string) string {
	for _, t := range e.Tags {
		if len(t) >= 2 && t[0] == name {
			return t[1]
		}
	}
	return ""
}

// TagValues returns the first value of every occurrence of the named tag.
func (e RawEvent) TagValues(name string) []string {
	var out []string
	for _, t := range e.Tags {
		if len(t) >= 2 && t[0] == name {
			out = append(out, t[1])
		}
	}
	return out
}

func (e RawEvent) price() (Price, error) {
	for _, t := range e.Tags {
		if len(t) >= 3 && t[0] == "price" {
			amount, err := decimal.NewFromString(t[1])
			if err != nil {
				return Price{}, fmt.Errorf("price amount %q: %w", t[1], ErrMalformedRecord)
			}
			currency := strings.ToUpper(strings.TrimSpace(t[2]))
			if currency == "" {
				return Price{}, fmt.Errorf("empty price currency: %w", ErrMalformedRecord)
			}
			return Price{Amount: amount, Currency: currency}, nil
		}
	}
	return Price{}, fmt.Errorf("missing price tag: %w", ErrMalformedRecord)
}

// ParseProductRecord validates a product listing event into a ProductRecord.
func ParseProductRecord(e RawEvent) (*ProductRecord, error) {
	if e.Kind != KindProduct {
		return nil, fmt.Errorf("kind %d is not a product listing: %w", e.Kind, ErrMalformedRecord)
	}
	id := e.Tag("d")
	if id == "" {
		return nil, fmt.Errorf("product missing d tag: %w", ErrMalformedRecord)
	}
	price, err := e.price()
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", id, err)
	}
	stock := 0
	if v := e.Tag("quantity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("product %s quantity %q: %w", id, v, ErrMalformedRecord)
		}
		stock = n
	}
	return &ProductRecord{
		ID:           id,
		SellerPubkey: e.Pubkey,
		Title:        e.Tag("title"),
		Images:       e.TagValues("image"),
		Price:        price,
		Stock:        stock,
	}, nil
}

// ParseShippingOption validates a shipping option event into a ShippingOption.
func ParseShippingOption(e RawEvent) (*ShippingOption, error) {
	if e.Kind != KindShippingOption {
		return nil, fmt.Errorf("kind %d is not a shipping option: %w", e.Kind, ErrMalformedRecord)
	}
	id := e.Tag("d")
	if id == "" {
		return nil, fmt.Errorf("shipping option missing d tag: %w", ErrMalformedRecord)
	}
	price, err := e.price()
	if err != nil {
		return nil, fmt.Errorf("shipping option %s: %w", id, err)
	}
	return &ShippingOption{
		ID:           id,
		SellerPubkey: e.Pubkey,
		Name:         e.Tag("title"),
		Price:        price,
		Carrier:      e.Tag("carrier"),
		Service:      e.Tag("service"),
		Country:      e.Tag("country"),
	}, nil
}

// ShippingRef is the composite coordinate of a seller-published shipping
// option: <kind>:<sellerPubkey>:<localId>.
type ShippingRef struct {
	Kind         int
	SellerPubkey string
	LocalID      string
}

// ParseShippingRef parses a coordinate string into its parts.
func ParseShippingRef(s string) (ShippingRef, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return ShippingRef{}, fmt.Errorf("shipping ref %q: %w", s, ErrMalformedRecord)
	}
	kind, err := strconv.Atoi(parts[0])
	if err != nil {
		return ShippingRef{}, fmt.Errorf("shipping ref kind %q: %w", parts[0], ErrMalformedRecord)
	}
	return ShippingRef{Kind: kind, SellerPubkey: parts[1], LocalID: parts[2]}, nil
}

// String renders the coordinate back into its wire form.
func (r ShippingRef) String() string {
	return fmt.Sprintf("%d:%s:%s", r.Kind, r.SellerPubkey, r.LocalID)
}
