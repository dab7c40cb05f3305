package domain

// CartProduct is a single line item in the normalized cart. The shipping
// fields are a denormalized snapshot of the selected shipping option,
// refreshed whenever the selection changes.
type CartProduct struct {
	ID                 string `json:"id"`
	Amount             int    `json:"amount"`
	ShippingMethodID   string `json:"shippingMethodId,omitempty"`
	ShippingMethodName string `json:"shippingMethodName,omitempty"`
	ShippingCost       *Price `json:"shippingCost,omitempty"`
	SellerPubkey       string `json:"sellerPubkey,omitempty"`
}

// CartUser owns a set of line items. In practice this is the single local
// shopper, but the model supports multiple participants.
type CartUser struct {
	Pubkey     string     `json:"pubkey"`
	ProductIDs []string   `json:"productIds"`
	V4VShares  []V4VShare `json:"v4vShares,omitempty"`
}

// HasProduct reports whether the user already owns the given line item.
func (u *CartUser) HasProduct(id string) bool {
	for _, pid := range u.ProductIDs {
		if pid == id {
			return true
		}
	}
	return false
}

// RemoveProduct drops id from the user's product list. Removing an id that
// is not present is a no-op.
func (u *CartUser) RemoveProduct(id string) {
	out := u.ProductIDs[:0]
	for _, pid := range u.ProductIDs {
		if pid != id {
			out = append(out, pid)
		}
	}
	u.ProductIDs = out
}

// NormalizedCart is the aggregate root: entities reference each other by
// identifier rather than by embedding. Every id in a user's ProductIDs must
// exist as a key in Products; orphaned products are pruned by the mutations
// that could create them.
type NormalizedCart struct {
	Users    map[string]*CartUser    `json:"users"`
	Products map[string]*CartProduct `json:"products"`
	Orders   map[string]*Order       `json:"orders"`
	Invoices map[string]*Invoice     `json:"invoices"`
}

// NewNormalizedCart returns an empty cart with all maps allocated.
func NewNormalizedCart() NormalizedCart {
	return NormalizedCart{
		Users:    make(map[string]*CartUser),
		Products: make(map[string]*CartProduct),
		Orders:   make(map[string]*Order),
		Invoices: make(map[string]*Invoice),
	}
}

// Clone returns a deep plain-data copy, safe to hand to subscribers or to
// serialize while the original keeps mutating.
func (c NormalizedCart) Clone() NormalizedCart {
	out := NewNormalizedCart()
	for k, u := range c.Users {
		cu := *u
		cu.ProductIDs = append([]string(nil), u.ProductIDs...)
		cu.V4VShares = append([]V4VShare(nil), u.V4VShares...)
		out.Users[k] = &cu
	}
	for k, p := range c.Products {
		cp := *p
		if p.ShippingCost != nil {
			cost := *p.ShippingCost
			cp.ShippingCost = &cost
		}
		out.Products[k] = &cp
	}
	for k, o := range c.Orders {
		co := *o
		out.Orders[k] = &co
	}
	for k, i := range c.Invoices {
		ci := *i
		out.Invoices[k] = &ci
	}
	return out
}
