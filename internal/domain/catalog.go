package domain

import "github.com/shopspring/decimal"

// Price is an amount tagged with its native currency. Amounts stay decimal
// until they are converted to sats at the totals layer.
type Price struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// ProductRecord is the catalog's view of a product, parsed from the seller's
// published listing event.
type ProductRecord struct {
	ID           string   `json:"id"`
	SellerPubkey string   `json:"sellerPubkey"`
	Title        string   `json:"title"`
	Images       []string `json:"images,omitempty"`
	Price        Price    `json:"price"`
	Stock        int      `json:"stock"`
}

// ShippingOption is one entry of a seller's published shipping set.
type ShippingOption struct {
	ID           string `json:"id"`
	SellerPubkey string `json:"sellerPubkey"`
	Name         string `json:"name"`
	Price        Price  `json:"price"`
	Carrier      string `json:"carrier,omitempty"`
	Service      string `json:"service,omitempty"`
	Country      string `json:"country,omitempty"`
}

// V4VShare is one value-for-value revenue-split recipient for a user's
// purchases. Percentage is a share of the seller-attributable total;
// recipients' percentages must sum to at most 100, the seller keeps the rest.
type V4VShare struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Recipient  string          `json:"recipient"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ShippingSelection is the caller-facing shape for picking a shipping option
// on a line item: the option's coordinate plus the denormalized snapshot
// written onto the line.
type ShippingSelection struct {
	MethodID string
	Name     string
	Cost     *Price
}
