package services

import (
	"context"
	"errors"
	"testing"

	"MotoZonePos/app/models"
)

func newTestCheckout(t *testing.T) (*testEnv, *CheckoutService) {
	t.Helper()
	env := newTestEnv(t)
	env.goOffline(t)
	env.data.SetAuthorized(true)
	if _, err := env.data.FetchProducts(context.Background()); err != nil {
		t.Fatalf("fetch products: %v", err)
	}
	if _, err := env.data.FetchServices(context.Background()); err != nil {
		t.Fatalf("fetch services: %v", err)
	}
	return env, NewCheckoutService(env.data, env.logger, env.cfg.Sales.TaxRate)
}

func TestCheckoutTotalsWithoutDiscount(t *testing.T) {
	_, checkout := newTestCheckout(t)

	// One oil bottle plus an oil change service
	if err := checkout.AddProduct("prod-001", 1); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if err := checkout.AddService("serv-001", 1); err != nil {
		t.Fatalf("add service: %v", err)
	}

	totals := checkout.Totals()
	if !almostEqual(totals.Subtotal, 65.99) {
		t.Errorf("subtotal = %v, want 65.99", totals.Subtotal)
	}
	if !almostEqual(totals.TaxAmount, 10.5584) {
		t.Errorf("tax = %v, want 10.5584", totals.TaxAmount)
	}
	if !almostEqual(totals.Total, 76.5484) {
		t.Errorf("total = %v, want 76.5484", totals.Total)
	}
}

func TestCheckoutTotalsDiscountBeforeTax(t *testing.T) {
	_, checkout := newTestCheckout(t)

	// Helmet plus gloves with 10% off the gloves line
	if err := checkout.AddProduct("prod-004", 1); err != nil {
		t.Fatalf("add helmet: %v", err)
	}
	if err := checkout.AddProduct("prod-005", 1); err != nil {
		t.Fatalf("add gloves: %v", err)
	}
	if err := checkout.SetLineDiscount(1, 10); err != nil {
		t.Fatalf("set discount: %v", err)
	}

	totals := checkout.Totals()
	if !almostEqual(totals.Subtotal, 255.00) {
		t.Errorf("subtotal = %v, want 255.00", totals.Subtotal)
	}
	if !almostEqual(totals.DiscountTotal, 7.50) {
		t.Errorf("discount = %v, want 7.50", totals.DiscountTotal)
	}
	if !almostEqual(totals.TaxAmount, 39.60) {
		t.Errorf("tax = %v, want 39.60", totals.TaxAmount)
	}
	if !almostEqual(totals.Total, 287.10) {
		t.Errorf("total = %v, want 287.10", totals.Total)
	}
}

func TestCheckoutStockGuard(t *testing.T) {
	_, checkout := newTestCheckout(t)

	// Helmet has 15 units seeded
	if err := checkout.AddProduct("prod-004", 10); err != nil {
		t.Fatalf("add within stock: %v", err)
	}
	if err := checkout.AddProduct("prod-004", 6); !errors.Is(err, models.ErrInsufficientStock) {
		t.Errorf("exceeding stock: err = %v, want ErrInsufficientStock", err)
	}
	if err := checkout.AddProduct("prod-004", 5); err != nil {
		t.Errorf("topping up to exact stock: %v", err)
	}
	if err := checkout.SetLineQuantity(0, 16); !errors.Is(err, models.ErrInsufficientStock) {
		t.Errorf("quantity above stock: err = %v, want ErrInsufficientStock", err)
	}
}

func TestCheckoutDiscountBounds(t *testing.T) {
	_, checkout := newTestCheckout(t)

	if err := checkout.AddProduct("prod-001", 1); err != nil {
		t.Fatalf("add product: %v", err)
	}

	if err := checkout.SetLineDiscount(0, -1); err == nil {
		t.Error("negative discount accepted")
	}
	if err := checkout.SetLineDiscount(0, 100.5); err == nil {
		t.Error("discount above 100 accepted")
	}
	if err := checkout.SetLineDiscount(0, 0); err != nil {
		t.Errorf("zero discount rejected: %v", err)
	}
	if err := checkout.SetLineDiscount(0, 100); err != nil {
		t.Errorf("full discount rejected: %v", err)
	}
}

func TestCheckoutMergesRepeatedLines(t *testing.T) {
	_, checkout := newTestCheckout(t)

	if err := checkout.AddProduct("prod-001", 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := checkout.AddProduct("prod-001", 2); err != nil {
		t.Fatalf("second add: %v", err)
	}

	lines := checkout.Lines()
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if lines[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", lines[0].Quantity)
	}
}

func TestCheckoutCommit(t *testing.T) {
	env, checkout := newTestCheckout(t)
	ctx := context.Background()

	if _, err := checkout.Commit(ctx, "Efectivo", "user-admin-001"); err == nil {
		t.Error("committing an empty cart succeeded")
	}

	if err := checkout.AddProduct("prod-001", 2); err != nil {
		t.Fatalf("add product: %v", err)
	}
	if _, err := checkout.Commit(ctx, "", "user-admin-001"); err == nil {
		t.Error("committing without payment method succeeded")
	}

	sale, err := checkout.Commit(ctx, "Efectivo", "user-admin-001")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if sale.ID == "" {
		t.Error("sale id not assigned")
	}
	if sale.PaymentMethod != "Efectivo" {
		t.Errorf("payment method = %q", sale.PaymentMethod)
	}
	if len(checkout.Lines()) != 0 {
		t.Error("cart not cleared after commit")
	}

	// The sale is persisted in the local store
	stored, err := env.store.SaleByID(sale.ID)
	if err != nil {
		t.Fatalf("load committed sale: %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].Quantity != 2 {
		t.Errorf("stored items = %+v", stored.Items)
	}

	// Cached stock dropped, the store's stock is untouched until refresh
	cached, err := env.data.ProductByID("prod-001")
	if err != nil {
		t.Fatalf("cached product: %v", err)
	}
	if cached.Stock != 48 {
		t.Errorf("cached stock = %d, want 48", cached.Stock)
	}
}
