// Command cartsim wires the full cart engine against the fixture catalog and
// runs one scripted shopping session, printing the derived totals after each
// step. Useful for manual verification without a UI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"nostrmart/internal/catalog"
	"nostrmart/internal/config"
	"nostrmart/internal/domain"
	"nostrmart/internal/logger"
	"nostrmart/internal/resolver"
	"nostrmart/internal/session"
	"nostrmart/internal/store"
	"nostrmart/internal/totals"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	log := logger.New(logger.Options{Service: "cartsim", Env: cfg.Env, Level: cfg.LogLevel})

	ctx := context.Background()

	var sess session.Store
	switch cfg.SessionBackend {
	case "redis":
		r, err := session.ConnectRedis(ctx, cfg.RedisAddr, cfg.SessionTTL)
		if err != nil {
			log.Error("connect to redis", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		defer r.Close()
		sess = r
	default:
		sess = session.NewMemory()
	}

	cat := catalog.Demo()
	res := resolver.New(cat, cat, cat, cfg.LookupTimeout, log)
	conv := totals.NewConverter(log)
	calc := totals.NewCalculator(res, conv, log)

	cart := store.New(store.Options{
		Session:    sess,
		Key:        cfg.SnapshotKey,
		Calculator: calc,
		Resolver:   res,
		Logger:     log,
	})
	cart.Load(ctx)

	token := cart.Subscribe(func(snap store.Snapshot) {
		t := snap.Summary.Totals
		fmt.Printf("totals: subtotal=%d shipping=%d total=%d sats, currencies=%d\n",
			t.SubtotalSats, t.ShippingSats, t.TotalSats, len(t.Currency))
	})
	defer cart.Unsubscribe(token)

	buyer := "npub1demo-buyer"
	seller := "npub1demo-seller"

	if err := cart.AddProduct(ctx, buyer, store.AddProductInput{ProductID: "demo-shirt", Quantity: 2}); err != nil {
		log.Error("add product", "err", err)
		os.Exit(1)
	}
	if err := cart.AddProduct(ctx, buyer, store.AddProductInput{ProductID: "demo-sticker-pack"}); err != nil {
		log.Error("add product", "err", err)
		os.Exit(1)
	}
	cart.WaitIdle()

	fmt.Printf("shipping selected for all items: %v\n", cart.HasAllShippingMethods())

	ref := domain.ShippingRef{Kind: domain.KindShippingOption, SellerPubkey: seller, LocalID: "std-us"}
	if opt := res.ShippingOption(ctx, ref.String()); opt != nil {
		cost := opt.Price
		cart.SetShippingMethod(ctx, "demo-shirt", domain.ShippingSelection{
			MethodID: ref.String(),
			Name:     opt.Name,
			Cost:     &cost,
		})
	}
	satsRef := domain.ShippingRef{Kind: domain.KindShippingOption, SellerPubkey: seller, LocalID: "std-sats"}
	if opt := res.ShippingOption(ctx, satsRef.String()); opt != nil {
		cost := opt.Price
		cart.SetShippingMethod(ctx, "demo-sticker-pack", domain.ShippingSelection{
			MethodID: satsRef.String(),
			Name:     opt.Name,
			Cost:     &cost,
		})
	}
	cart.WaitIdle()

	fmt.Printf("shipping selected for all items: %v\n", cart.HasAllShippingMethods())

	sum := cart.Summary(ctx)
	for sellerPk, totalSats := range sum.Sellers {
		allocs := totals.SplitShares(totalSats, sellerPk, sharesFor(cart, buyer), log)
		for _, a := range allocs {
			fmt.Printf("split: recipient=%s amount=%d sats seller=%v\n", a.Recipient, a.AmountSats, a.IsSeller)
		}
	}

	orderID := uuid.NewString()
	cart.UpsertOrder(ctx, domain.Order{
		ID:           orderID,
		BuyerPubkey:  buyer,
		SellerPubkey: seller,
		Status:       domain.OrderPending,
		TotalSats:    sum.Totals.TotalSats,
		CreatedAt:    time.Now().UTC(),
	})
	cart.UpsertInvoice(ctx, domain.Invoice{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		AmountSats: sum.Totals.TotalSats,
		CreatedAt:  time.Now().UTC(),
	})
	cart.CompleteCheckout(ctx, orderID)
	cart.WaitIdle()

	fmt.Printf("items after checkout: %d\n", cart.ItemCount())
}

func sharesFor(cart *store.Store, buyer string) []domain.V4VShare {
	c := cart.Cart()
	if u, ok := c.Users[buyer]; ok {
		return u.V4VShares
	}
	return nil
}
