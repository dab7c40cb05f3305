// Package store holds the single source of truth for cart membership and
// line-item attributes. All state changes go through the mutation API here:
// every mutation leaves the cart consistent and persisted before it returns,
// then triggers an asynchronous totals recomputation that never blocks the
// caller.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"nostrmart/internal/domain"
	"nostrmart/internal/resolver"
	"nostrmart/internal/session"
	"nostrmart/internal/totals"
)

// DefaultSnapshotKey is the session-store key the cart snapshot lives under.
const DefaultSnapshotKey = "cart:snapshot"

// Options wires a Store's collaborators.
type Options struct {
	Session    session.Store
	Key        string
	Calculator *totals.Calculator
	Resolver   *resolver.Resolver
	Logger     *slog.Logger
}

// Store is the normalized cart plus its mutation and notification surface.
type Store struct {
	mu   sync.Mutex
	cart domain.NormalizedCart

	session session.Store
	key     string
	calc    *totals.Calculator
	res     *resolver.Resolver
	log     *slog.Logger

	subsMu sync.Mutex
	subs   map[string]func(Snapshot)

	schedMu     sync.Mutex
	idle        *sync.Cond
	dirty       bool
	recomputing bool
}

// New builds an empty store. Call Load to restore a persisted session.
func New(opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultSnapshotKey
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	s := &Store{
		cart:    domain.NewNormalizedCart(),
		session: opts.Session,
		key:     opts.Key,
		calc:    opts.Calculator,
		res:     opts.Resolver,
		log:     opts.Logger,
		subs:    make(map[string]func(Snapshot)),
	}
	s.idle = sync.NewCond(&s.schedMu)
	return s
}

// Load restores the persisted snapshot. A missing or corrupt snapshot falls
// back to an empty cart; Load never fails the session over it.
func (s *Store) Load(ctx context.Context) {
	raw, ok, err := s.session.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("read cart snapshot", "err", err)
		return
	}
	if !ok {
		return
	}
	var cart domain.NormalizedCart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		s.log.Warn("corrupt cart snapshot, starting empty", "err", err)
		return
	}
	if cart.Users == nil {
		cart.Users = make(map[string]*domain.CartUser)
	}
	if cart.Products == nil {
		cart.Products = make(map[string]*domain.CartProduct)
	}
	if cart.Orders == nil {
		cart.Orders = make(map[string]*domain.Order)
	}
	if cart.Invoices == nil {
		cart.Invoices = make(map[string]*domain.Invoice)
	}
	s.mu.Lock()
	s.cart = cart
	s.mu.Unlock()
}

// AddProductInput identifies the product to add: by id alone, by a full
// line-item record, or by an external catalog handle. Quantity defaults to 1.
type AddProductInput struct {
	ProductID string
	Quantity  int
	Line      *domain.CartProduct
	Record    *domain.ProductRecord
}

func (in AddProductInput) id() string {
	switch {
	case in.Line != nil && in.Line.ID != "":
		return in.Line.ID
	case in.Record != nil && in.Record.ID != "":
		return in.Record.ID
	}
	return in.ProductID
}

// AddProduct adds a line item for userKey, or increments the quantity when
// the user already has the product. The seller identity is resolved
// opportunistically; failing to resolve it does not fail the add.
func (s *Store) AddProduct(ctx context.Context, userKey string, in AddProductInput) error {
	id := in.id()
	if userKey == "" {
		return errors.New("user key required")
	}
	if id == "" {
		return errors.New("product id required")
	}
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	seller := ""
	switch {
	case in.Record != nil && in.Record.SellerPubkey != "":
		seller = in.Record.SellerPubkey
	case in.Line != nil && in.Line.SellerPubkey != "":
		seller = in.Line.SellerPubkey
	default:
		// Best-effort: consult only the resolver cache, never block the add.
		if rec, ok := s.res.CachedProduct(id); ok {
			seller = rec.SellerPubkey
		}
	}

	s.mu.Lock()
	user, ok := s.cart.Users[userKey]
	if !ok {
		user = &domain.CartUser{Pubkey: userKey}
		s.cart.Users[userKey] = user
	}
	if line, exists := s.cart.Products[id]; exists {
		line.Amount += qty
		if line.SellerPubkey == "" {
			line.SellerPubkey = seller
		}
	} else {
		line := &domain.CartProduct{ID: id, Amount: qty, SellerPubkey: seller}
		if in.Line != nil {
			cp := *in.Line
			cp.ID = id
			cp.Amount = qty
			if cp.SellerPubkey == "" {
				cp.SellerPubkey = seller
			}
			line = &cp
		}
		s.cart.Products[id] = line
	}
	if !user.HasProduct(id) {
		user.ProductIDs = append(user.ProductIDs, id)
	}
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	s.persist(ctx, data, merr)
	s.refreshShares(userKey)
	s.scheduleRecompute()
	return nil
}

// RemoveProduct deletes the product from the user's line items, pruning the
// user entry when it becomes empty. Removing a non-existent product is a
// no-op, not an error.
func (s *Store) RemoveProduct(ctx context.Context, userKey, productID string) {
	s.mu.Lock()
	user, ok := s.cart.Users[userKey]
	if !ok || !user.HasProduct(productID) {
		s.mu.Unlock()
		s.log.Warn("remove of product not in cart", "user", userKey, "product_id", productID)
		return
	}
	user.RemoveProduct(productID)
	if len(user.ProductIDs) == 0 {
		delete(s.cart.Users, userKey)
	}
	if !s.referencedLocked(productID) {
		delete(s.cart.Products, productID)
	}
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	s.persist(ctx, data, merr)
	s.refreshShares(userKey)
	s.scheduleRecompute()
}

// referencedLocked reports whether any user still references productID.
func (s *Store) referencedLocked(productID string) bool {
	for _, u := range s.cart.Users {
		if u.HasProduct(productID) {
			return true
		}
	}
	return false
}

// UpdateProductAmount sets the quantity directly. Amounts at or below zero
// remove the line instead of leaving a zero-quantity item. Stock clamping is
// a caller concern, not applied here.
func (s *Store) UpdateProductAmount(ctx context.Context, userKey, productID string, amount int) {
	if amount <= 0 {
		s.RemoveProduct(ctx, userKey, productID)
		return
	}

	s.mu.Lock()
	user, ok := s.cart.Users[userKey]
	line, exists := s.cart.Products[productID]
	if !ok || !exists || !user.HasProduct(productID) {
		s.mu.Unlock()
		s.log.Warn("amount update for product not in cart", "user", userKey, "product_id", productID)
		return
	}
	line.Amount = amount
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	s.persist(ctx, data, merr)
	s.refreshShares(userKey)
	s.scheduleRecompute()
}

// SetShippingMethod writes the denormalized shipping snapshot onto the line
// item and invalidates cached data tied to the previous selection, so stale
// costs cannot leak into the next total computation.
func (s *Store) SetShippingMethod(ctx context.Context, productID string, sel domain.ShippingSelection) {
	s.mu.Lock()
	line, ok := s.cart.Products[productID]
	if !ok {
		s.mu.Unlock()
		s.log.Warn("shipping selection for product not in cart", "product_id", productID)
		return
	}
	prev := line.ShippingMethodID
	line.ShippingMethodID = sel.MethodID
	line.ShippingMethodName = sel.Name
	line.ShippingCost = nil
	if sel.Cost != nil {
		cost := *sel.Cost
		line.ShippingCost = &cost
	}
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	if prev != "" && prev != sel.MethodID {
		s.res.InvalidateShippingRef(prev)
	}
	s.persist(ctx, data, merr)
	s.scheduleRecompute()
}

// Clear resets to an empty cart and removes the persisted snapshot.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.cart = domain.NewNormalizedCart()
	s.mu.Unlock()

	if err := s.session.Remove(ctx, s.key); err != nil {
		s.log.Warn("remove cart snapshot", "err", err)
	}
	s.scheduleRecompute()
}

// persist writes a serialized snapshot. Persistence failure is logged, never
// propagated: in-memory state stays authoritative for the session.
func (s *Store) persist(ctx context.Context, data []byte, merr error) {
	if merr != nil {
		s.log.Error("serialize cart snapshot", "err", merr)
		return
	}
	if err := s.session.Set(ctx, s.key, string(data)); err != nil {
		s.log.Error("persist cart snapshot", "err", err)
	}
}

// refreshShares re-fetches the user's v4v recipients after their line items
// changed. Runs off the mutation path.
func (s *Store) refreshShares(userKey string) {
	go func() {
		shares, err := s.res.Shares(context.Background(), userKey)
		if err != nil {
			s.log.Warn("v4v share lookup failed", "user", userKey, "err", err)
			return
		}
		s.mu.Lock()
		user, ok := s.cart.Users[userKey]
		if !ok {
			s.mu.Unlock()
			return
		}
		user.V4VShares = shares
		data, merr := json.Marshal(s.cart)
		s.mu.Unlock()

		s.persist(context.Background(), data, merr)
		s.scheduleRecompute()
	}()
}

// Cart returns a deep copy of the current normalized cart.
func (s *Store) Cart() domain.NormalizedCart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// HasAllShippingMethods reports whether every line item has a shipping
// selection; checkout stays gated until it does.
func (s *Store) HasAllShippingMethods() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.cart.Products {
		if p.ShippingMethodID == "" {
			return false
		}
	}
	return true
}

// ItemCount sums the quantities across all line items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.cart.Products {
		n += p.Amount
	}
	return n
}

// Totals derives the grand totals synchronously from the current cart.
func (s *Store) Totals(ctx context.Context) totals.CartTotals {
	return s.calc.GrandTotal(ctx, s.Cart())
}

// Summary runs a full derivation pass over the current cart.
func (s *Store) Summary(ctx context.Context) totals.Summary {
	return s.calc.Summarize(ctx, s.Cart())
}
