// Package resolver translates opaque product and shipping identifiers into
// priced, currency-tagged facts, caching collaborator answers per key for the
// lifetime of the session.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nostrmart/internal/catalog"
	"nostrmart/internal/domain"
)

// DefaultTimeout bounds a single collaborator lookup so a hung external call
// cannot stall totals indefinitely.
const DefaultTimeout = 10 * time.Second

type Resolver struct {
	products catalog.ProductLookup
	shipping catalog.ShippingLookup
	v4v      catalog.V4VLookup

	productCache  *cache[domain.ProductRecord]
	shippingCache *cache[[]domain.ShippingOption]

	timeout time.Duration
	log     *slog.Logger
}

// New wires a resolver over the three collaborator lookups. timeout <= 0
// falls back to DefaultTimeout.
func New(products catalog.ProductLookup, shipping catalog.ShippingLookup, v4v catalog.V4VLookup, timeout time.Duration, log *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		products:      products,
		shipping:      shipping,
		v4v:           v4v,
		productCache:  newCache[domain.ProductRecord](),
		shippingCache: newCache[[]domain.ShippingOption](),
		timeout:       timeout,
		log:           log,
	}
}

// Product resolves id to its catalog record. Lookup errors and timeouts are
// treated as not-found and cached as such; they are never propagated.
func (r *Resolver) Product(ctx context.Context, id string) (*domain.ProductRecord, bool) {
	if cached, ok := r.productCache.get(id); ok {
		if !cached.found {
			return nil, false
		}
		rec := cached.value
		return &rec, true
	}

	v := r.productCache.begin(id)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := r.products.ProductByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			r.log.Warn("product lookup failed", "product_id", id, "err", err)
		}
		r.productCache.commit(id, v, result[domain.ProductRecord]{})
		return nil, false
	}

	r.productCache.commit(id, v, result[domain.ProductRecord]{value: *rec, found: true})
	out := *rec
	return &out, true
}

// CachedProduct returns the cached record for id without ever consulting the
// collaborator. Used for opportunistic, non-blocking seller resolution.
func (r *Resolver) CachedProduct(id string) (*domain.ProductRecord, bool) {
	cached, ok := r.productCache.get(id)
	if !ok || !cached.found {
		return nil, false
	}
	rec := cached.value
	return &rec, true
}

// ShippingOption resolves a composite shipping reference to the matching
// option from the seller's published shipping set. Returns nil when the
// reference is malformed, the seller has no shipping set, or the local id
// is absent.
func (r *Resolver) ShippingOption(ctx context.Context, ref string) *domain.ShippingOption {
	parsed, err := domain.ParseShippingRef(ref)
	if err != nil {
		r.log.Warn("unparseable shipping ref", "ref", ref, "err", err)
		return nil
	}

	options, ok := r.sellerShipping(ctx, parsed.SellerPubkey)
	if !ok {
		return nil
	}
	for _, opt := range options {
		if opt.ID == parsed.LocalID {
			out := opt
			return &out
		}
	}
	return nil
}

func (r *Resolver) sellerShipping(ctx context.Context, pubkey string) ([]domain.ShippingOption, bool) {
	if cached, ok := r.shippingCache.get(pubkey); ok {
		return cached.value, cached.found
	}

	v := r.shippingCache.begin(pubkey)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	options, err := r.shipping.ShippingOptionsBySeller(ctx, pubkey)
	if err != nil {
		r.log.Warn("shipping lookup failed", "seller", pubkey, "err", err)
		r.shippingCache.commit(pubkey, v, result[[]domain.ShippingOption]{})
		return nil, false
	}

	r.shippingCache.commit(pubkey, v, result[[]domain.ShippingOption]{value: options, found: true})
	return options, true
}

// Shares fetches the revenue-split recipients for a user. Not cached: the
// store refreshes shares only when the user's line items change.
func (r *Resolver) Shares(ctx context.Context, pubkey string) ([]domain.V4VShare, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.v4v.SharesForUser(ctx, pubkey)
}

// InvalidateProduct drops exactly this product's cache entry.
func (r *Resolver) InvalidateProduct(id string) {
	r.productCache.invalidate(id)
}

// InvalidateShippingRef drops the shipping set cached for the referenced
// seller, so a replaced selection cannot leak stale costs into the next
// total computation. Invalidation is narrow: only that seller's key.
func (r *Resolver) InvalidateShippingRef(ref string) {
	parsed, err := domain.ParseShippingRef(ref)
	if err != nil {
		return
	}
	r.shippingCache.invalidate(parsed.SellerPubkey)
}
