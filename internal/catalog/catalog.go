// Package catalog declares the external collaborator contracts the cart
// engine consumes: product lookups, seller shipping sets, and value-for-value
// revenue-split lookups. The cart never reimplements these, it only caches
// and aggregates their answers.
package catalog

import (
	"context"

	"nostrmart/internal/domain"
)

// ProductLookup fetches a catalog record by product id.
// Implementations return domain.ErrNotFound for unknown ids.
type ProductLookup interface {
	ProductByID(ctx context.Context, id string) (*domain.ProductRecord, error)
}

// ShippingLookup fetches the shipping options a seller has published.
// An empty slice means the seller has no shipping set.
type ShippingLookup interface {
	ShippingOptionsBySeller(ctx context.Context, pubkey string) ([]domain.ShippingOption, error)
}

// V4VLookup fetches the revenue-split recipients configured for a user.
type V4VLookup interface {
	SharesForUser(ctx context.Context, pubkey string) ([]domain.V4VShare, error)
}
