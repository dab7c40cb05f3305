package domain

import "time"

// OrderStatus tracks the lifecycle of an order mirrored from the checkout
// flow. The cart store is not authoritative for these.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order states.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// Order mirrors an externally created order record.
type Order struct {
	ID           string      `json:"id"`
	BuyerPubkey  string      `json:"buyerPubkey"`
	SellerPubkey string      `json:"sellerPubkey"`
	Status       OrderStatus `json:"status"`
	TotalSats    int64       `json:"totalSats"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// Invoice mirrors a payment request attached to an order.
type Invoice struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"orderId"`
	PaymentReq string    `json:"paymentRequest,omitempty"`
	AmountSats int64     `json:"amountSats"`
	Paid       bool      `json:"paid"`
	CreatedAt  time.Time `json:"createdAt"`
}
