package services

import (
	"context"
	"testing"

	"MotoZonePos/app/models"
)

func newTestDashboard(t *testing.T) (*DashboardService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	env.goOffline(t)
	env.data.SetAuthorized(true)
	return NewDashboardService(env.data), env
}

func TestDashboardStockAlerts(t *testing.T) {
	dashboard, env := newTestDashboard(t)

	env.data.mu.Lock()
	env.data.products = []models.Product{
		{ID: "p-ok", Name: "Holgado", Stock: 20, LowStockThreshold: 5},
		{ID: "p-edge", Name: "Al Límite", Stock: 5, LowStockThreshold: 5},
		{ID: "p-low", Name: "Escaso", Stock: 2, LowStockThreshold: 5},
		{ID: "p-out", Name: "Agotado", Stock: 0, LowStockThreshold: 5},
	}
	env.data.mu.Unlock()

	low := dashboard.LowStockProducts()
	if len(low) != 2 {
		t.Fatalf("low stock = %d products, want 2", len(low))
	}
	lowIDs := map[string]bool{}
	for _, product := range low {
		lowIDs[product.ID] = true
	}
	if !lowIDs["p-edge"] {
		t.Error("stock equal to the threshold not flagged low")
	}
	if !lowIDs["p-low"] {
		t.Error("stock below the threshold not flagged low")
	}
	if lowIDs["p-out"] {
		t.Error("sold-out product listed as low stock instead of out of stock")
	}

	out := dashboard.OutOfStockProducts()
	if len(out) != 1 || out[0].ID != "p-out" {
		t.Errorf("out of stock = %+v, want only p-out", out)
	}
}

func TestDashboardLoad(t *testing.T) {
	dashboard, env := newTestDashboard(t)

	if _, err := env.data.FetchProducts(context.Background()); err != nil {
		t.Fatalf("fetch products: %v", err)
	}

	data, err := dashboard.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if data.Summary == nil || data.Summary.AllTime.Count != 2 {
		t.Errorf("summary = %+v, want the two seeded sales", data.Summary)
	}
	if data.ProductStats == nil || len(data.ProductStats.MostSoldProducts) == 0 {
		t.Error("product stats missing")
	}
	if data.ServiceStats == nil || len(data.ServiceStats.MostRequestedServices) == 0 {
		t.Error("service stats missing")
	}
}
