package store

import (
	"context"
	"encoding/json"

	"nostrmart/internal/domain"
)

// The cart store is not authoritative for orders and invoices: the checkout
// flow creates them externally and pushes status changes in. The store only
// mirrors them so the UI has one place to read from.

// UpsertOrder records or replaces a mirrored order.
func (s *Store) UpsertOrder(ctx context.Context, o domain.Order) {
	if o.ID == "" || !o.Status.Valid() {
		s.log.Warn("ignoring malformed order", "order_id", o.ID, "status", string(o.Status))
		return
	}
	s.mu.Lock()
	s.cart.Orders[o.ID] = &o
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	s.persist(ctx, data, merr)
	s.scheduleRecompute()
}

// SetOrderStatus updates a mirrored order's status. Unknown orders and
// invalid states are no-ops with a warning.
func (s *Store) SetOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) {
	if !status.Valid() {
		s.log.Warn("invalid order status", "order_id", orderID, "status", string(status))
		return
	}
	s.mu.Lock()
	o, ok := s.cart.Orders[orderID]
	if !ok {
		s.mu.Unlock()
		s.log.Warn("status update for unknown order", "order_id", orderID)
		return
	}
	o.Status = status
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	s.persist(ctx, data, merr)
	s.scheduleRecompute()
}

// UpsertInvoice records or replaces a mirrored invoice.
func (s *Store) UpsertInvoice(ctx context.Context, inv domain.Invoice) {
	if inv.ID == "" {
		s.log.Warn("ignoring invoice without id")
		return
	}
	s.mu.Lock()
	s.cart.Invoices[inv.ID] = &inv
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	s.persist(ctx, data, merr)
	s.scheduleRecompute()
}

// MarkInvoicePaid flips a mirrored invoice to paid. Unknown invoices are a
// no-op with a warning.
func (s *Store) MarkInvoicePaid(ctx context.Context, invoiceID string) {
	s.mu.Lock()
	inv, ok := s.cart.Invoices[invoiceID]
	if !ok {
		s.mu.Unlock()
		s.log.Warn("paid mark for unknown invoice", "invoice_id", invoiceID)
		return
	}
	inv.Paid = true
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	s.persist(ctx, data, merr)
	s.scheduleRecompute()
}

// CompleteCheckout marks the order paid and empties the shopping portion of
// the cart. The order and invoice mirrors survive so the session can keep
// showing purchase status.
func (s *Store) CompleteCheckout(ctx context.Context, orderID string) {
	s.mu.Lock()
	if o, ok := s.cart.Orders[orderID]; ok {
		o.Status = domain.OrderPaid
	} else {
		s.log.Warn("checkout completion for unknown order", "order_id", orderID)
	}
	s.cart.Users = make(map[string]*domain.CartUser)
	s.cart.Products = make(map[string]*domain.CartProduct)
	data, merr := json.Marshal(s.cart)
	s.mu.Unlock()

	s.persist(ctx, data, merr)
	s.scheduleRecompute()
}
