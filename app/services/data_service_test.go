package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MotoZonePos/app/backend"
	"MotoZonePos/app/config"
	"MotoZonePos/app/database"
	"MotoZonePos/app/models"
)

func TestDataServiceRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	env.goOffline(t)

	if _, err := env.data.FetchProducts(context.Background()); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("FetchProducts err = %v, want ErrNotAuthenticated", err)
	}
	if _, err := env.data.AddSale(context.Background(), models.SaleDraft{}); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("AddSale err = %v, want ErrNotAuthenticated", err)
	}
}

func TestDataServiceOfflineCollections(t *testing.T) {
	env := newTestEnv(t)
	env.goOffline(t)
	env.data.SetAuthorized(true)
	ctx := context.Background()

	products, err := env.data.FetchProducts(ctx)
	if err != nil {
		t.Fatalf("fetch products: %v", err)
	}
	if len(products) != 5 {
		t.Errorf("got %d seeded products, want 5", len(products))
	}

	categories, err := env.data.FetchCategories(ctx)
	if err != nil {
		t.Fatalf("fetch categories: %v", err)
	}
	if len(categories) != 4 {
		t.Errorf("got %d seeded categories, want 4", len(categories))
	}

	services, err := env.data.FetchServices(ctx)
	if err != nil {
		t.Fatalf("fetch services: %v", err)
	}
	if len(services) != 4 {
		t.Errorf("got %d seeded services, want 4", len(services))
	}

	sales, err := env.data.FetchSales(ctx)
	if err != nil {
		t.Fatalf("fetch sales: %v", err)
	}
	if len(sales) != 2 {
		t.Errorf("got %d seeded sales, want 2", len(sales))
	}

	states := env.data.CollectionStates()
	for name, state := range states {
		if state.Loading || state.Error != "" {
			t.Errorf("collection %s state = %+v after successful fetch", name, state)
		}
	}
}

func TestDataServiceOfflineMutations(t *testing.T) {
	env := newTestEnv(t)
	env.goOffline(t)
	env.data.SetAuthorized(true)
	ctx := context.Background()

	if _, err := env.data.FetchProducts(ctx); err != nil {
		t.Fatalf("fetch products: %v", err)
	}

	product, err := env.data.AddProduct(ctx, models.ProductDraft{
		Name:       "Bujía Iridium",
		Price:      12.50,
		CategoryID: "cat-002",
		Stock:      40,
	})
	if err != nil {
		t.Fatalf("add product: %v", err)
	}
	if !strings.HasPrefix(product.ID, "prod-") {
		t.Errorf("local product id = %q, want prod- prefix", product.ID)
	}
	if len(env.data.Products()) != 6 {
		t.Errorf("cache has %d products after add, want 6", len(env.data.Products()))
	}

	newPrice := 13.75
	updated, err := env.data.UpdateProduct(ctx, product.ID, models.ProductPatch{Price: &newPrice})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Price != 13.75 {
		t.Errorf("updated price = %v", updated.Price)
	}
	if updated.Name != "Bujía Iridium" {
		t.Errorf("patch clobbered untouched field: name = %q", updated.Name)
	}

	if err := env.data.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if _, err := env.data.ProductByID(product.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("deleted product still cached: err = %v", err)
	}

	if _, err := env.data.UpdateProduct(ctx, "no-such-id", models.ProductPatch{}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("update unknown id err = %v, want ErrNotFound", err)
	}
}

func TestDataServiceAddSaleClampsCachedStock(t *testing.T) {
	env := newTestEnv(t)
	env.goOffline(t)
	env.data.SetAuthorized(true)
	ctx := context.Background()

	if _, err := env.data.FetchProducts(ctx); err != nil {
		t.Fatalf("fetch products: %v", err)
	}

	var stockEvents []models.Product
	env.data.OnStockChanged(func(p models.Product) { stockEvents = append(stockEvents, p) })

	// prod-001 has 50 seeded units; selling 60 clamps the cache at zero
	itemID := "prod-001"
	sale, err := env.data.AddSale(ctx, models.SaleDraft{
		Subtotal:      25.99 * 60,
		TaxRate:       0.16,
		TaxAmount:     25.99 * 60 * 0.16,
		Total:         25.99 * 60 * 1.16,
		PaymentMethod: "Efectivo",
		CashierID:     "user-admin-001",
		Items: []models.SaleItemDraft{
			{ItemID: &itemID, ItemType: models.ItemTypeProduct, Name: "Aceite Sintético 10W-40", Price: 25.99, Quantity: 60},
		},
	})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}
	if !strings.HasPrefix(sale.ID, "sale-") {
		t.Errorf("local sale id = %q", sale.ID)
	}

	cached, err := env.data.ProductByID("prod-001")
	if err != nil {
		t.Fatalf("cached product: %v", err)
	}
	if cached.Stock != 0 {
		t.Errorf("cached stock = %d, want 0 (clamped)", cached.Stock)
	}
	if len(stockEvents) != 1 || stockEvents[0].Stock != 0 {
		t.Errorf("stock events = %+v", stockEvents)
	}

	// The store keeps its own stock until the next refresh
	storeProducts, err := env.store.Products()
	if err != nil {
		t.Fatalf("store products: %v", err)
	}
	for _, p := range storeProducts {
		if p.ID == "prod-001" && p.Stock != 50 {
			t.Errorf("store stock = %d, want untouched 50", p.Stock)
		}
	}
}

func TestDataServiceFailedRefreshKeepsCache(t *testing.T) {
	env := newTestEnv(t)
	// No probe ran: status is unknown, so fetches go remote and fail
	env.data.SetAuthorized(true)

	env.data.mu.Lock()
	env.data.products = []models.Product{{ID: "prod-cached", Name: "Cached", Stock: 1}}
	env.data.mu.Unlock()

	if _, err := env.data.FetchProducts(context.Background()); err == nil {
		t.Fatal("fetch against unreachable backend succeeded")
	}

	if state := env.data.CollectionStates()[CollectionProducts]; state.Error == "" || state.Loading {
		t.Errorf("state after failed fetch = %+v", state)
	}
	if products := env.data.Products(); len(products) != 1 || products[0].ID != "prod-cached" {
		t.Errorf("stale cache lost: %+v", products)
	}
}

func TestDataServiceReset(t *testing.T) {
	env := newTestEnv(t)
	env.goOffline(t)
	env.data.SetAuthorized(true)

	if _, err := env.data.FetchProducts(context.Background()); err != nil {
		t.Fatalf("fetch products: %v", err)
	}

	env.data.Reset()
	if len(env.data.Products()) != 0 {
		t.Error("product cache survived reset")
	}
	if _, err := env.data.FetchProducts(context.Background()); !errors.Is(err, models.ErrNotAuthenticated) {
		t.Errorf("post-reset fetch err = %v, want ErrNotAuthenticated", err)
	}
}

func TestDataServiceOfflineAggregates(t *testing.T) {
	env := newTestEnv(t)
	env.goOffline(t)
	env.data.SetAuthorized(true)
	ctx := context.Background()

	summary, err := env.data.SalesSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.AllTime.Count != 2 || !almostEqual(summary.AllTime.Total, 363.65) {
		t.Errorf("all-time = %+v, want count 2 total 363.65", summary.AllTime)
	}

	ranged, err := env.data.SalesByDateRange(ctx, "2023-10-25", "2023-10-25")
	if err != nil {
		t.Fatalf("date range: %v", err)
	}
	if len(ranged) != 1 || ranged[0].ID != "sale-002" {
		t.Errorf("date range result = %+v", ranged)
	}

	both, err := env.data.SalesByDateRange(ctx, "2023-10-25", "2023-10-26")
	if err != nil {
		t.Fatalf("date range: %v", err)
	}
	if len(both) != 2 {
		t.Errorf("inclusive range returned %d sales, want 2", len(both))
	}

	if _, err := env.data.SalesByDateRange(ctx, "yesterday", "2023-10-26"); err == nil {
		t.Error("malformed date accepted")
	}

	byCashier, err := env.data.SalesByCashier(ctx, "user-admin-001")
	if err != nil {
		t.Fatalf("by cashier: %v", err)
	}
	if len(byCashier) != 1 || byCashier[0].ID != "sale-002" {
		t.Errorf("cashier sales = %+v", byCashier)
	}

	items, err := env.data.SaleItems(ctx)
	if err != nil {
		t.Fatalf("sale items: %v", err)
	}
	if len(items) != 4 {
		t.Errorf("got %d sale items, want 4", len(items))
	}
	for _, item := range items {
		if item.SaleDate.IsZero() {
			t.Errorf("item %s missing sale date", item.ID)
		}
	}

	productStats, err := env.data.ProductSalesStats(ctx)
	if err != nil {
		t.Fatalf("product stats: %v", err)
	}
	if productStats.TotalUniqueProducts != 3 {
		t.Errorf("unique products = %d, want 3", productStats.TotalUniqueProducts)
	}

	serviceStats, err := env.data.ServiceSalesStats(ctx)
	if err != nil {
		t.Fatalf("service stats: %v", err)
	}
	if serviceStats.TotalUniqueServices != 1 {
		t.Errorf("unique services = %d, want 1", serviceStats.TotalUniqueServices)
	}
	if len(serviceStats.MostRequestedServices) != 1 || serviceStats.MostRequestedServices[0].Name != "Cambio de Aceite y Filtro" {
		t.Errorf("service ranking = %+v", serviceStats.MostRequestedServices)
	}
}

func TestComputeSalesSummaryPeriods(t *testing.T) {
	now := time.Date(2023, 10, 26, 18, 0, 0, 0, time.UTC)
	sales := []models.Sale{
		{Total: 100, Date: time.Date(2023, 10, 26, 9, 0, 0, 0, time.UTC)},  // today
		{Total: 50, Date: time.Date(2023, 10, 2, 9, 0, 0, 0, time.UTC)},   // this month
		{Total: 25, Date: time.Date(2023, 9, 30, 9, 0, 0, 0, time.UTC)},   // earlier
	}

	summary := computeSalesSummary(sales, now)
	if summary.Today.Count != 1 || !almostEqual(summary.Today.Total, 100) {
		t.Errorf("today = %+v", summary.Today)
	}
	if summary.ThisMonth.Count != 2 || !almostEqual(summary.ThisMonth.Total, 150) {
		t.Errorf("this month = %+v", summary.ThisMonth)
	}
	if summary.AllTime.Count != 3 || !almostEqual(summary.AllTime.Total, 175) {
		t.Errorf("all time = %+v", summary.AllTime)
	}
}

func TestRankSaleItemsTopTen(t *testing.T) {
	var sales []models.Sale
	for i := 0; i < 12; i++ {
		sales = append(sales, models.Sale{
			Items: []models.SaleItem{
				{ItemType: models.ItemTypeProduct, Name: string(rune('A' + i)), Quantity: i + 1},
			},
		})
	}

	ranking, unique := rankSaleItems(sales, models.ItemTypeProduct)
	if unique != 12 {
		t.Errorf("unique = %d, want 12", unique)
	}
	if len(ranking) != 10 {
		t.Fatalf("ranking length = %d, want 10", len(ranking))
	}
	if ranking[0].Quantity != 12 {
		t.Errorf("top seller quantity = %d, want 12", ranking[0].Quantity)
	}
	for i := 1; i < len(ranking); i++ {
		if ranking[i].Quantity > ranking[i-1].Quantity {
			t.Fatalf("ranking not sorted at %d: %+v", i, ranking)
		}
	}
}

func TestDataServiceMutationFailureFlagsCollection(t *testing.T) {
	env := newTestEnv(t)
	env.data.SetAuthorized(true)
	ctx := context.Background()

	// Unknown availability still routes remote; the closed port fails the
	// mutation and the collection carries the error string.
	if _, err := env.data.AddProduct(ctx, models.ProductDraft{Name: "Fantasma", Price: 1}); err == nil {
		t.Fatal("remote mutation against a closed port succeeded")
	}
	if state := env.data.CollectionStates()[CollectionProducts]; state.Error == "" {
		t.Error("failed mutation left no error on the products collection")
	}

	// A later successful mutation clears the flag
	env.goOffline(t)
	if _, err := env.data.AddProduct(ctx, models.ProductDraft{Name: "Real", Price: 1}); err != nil {
		t.Fatalf("offline mutation: %v", err)
	}
	if state := env.data.CollectionStates()[CollectionProducts]; state.Error != "" {
		t.Errorf("successful mutation did not clear the error: %q", state.Error)
	}
}

func TestDataServiceDeleteFailureFlagsCollection(t *testing.T) {
	env := newTestEnv(t)
	env.goOffline(t)
	env.data.SetAuthorized(true)

	if err := env.data.DeleteService(context.Background(), "serv-missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("delete missing service err = %v, want ErrNotFound", err)
	}
	if state := env.data.CollectionStates()[CollectionServices]; state.Error == "" {
		t.Error("failed delete left no error on the services collection")
	}
}

func TestAddSaleProjectsDraftWhenItemsNotEchoed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"id":"sale-remote-001","total":46.4,"items":null}}`))
	}))
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.LocalDB.DataPath = t.TempDir()
	cfg.Backend.BaseURL = server.URL

	store, err := database.Initialize(cfg)
	if err != nil {
		t.Fatalf("initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := NewLoggerService(t.TempDir())
	t.Cleanup(logger.Close)

	client := backend.NewClient(server.URL)
	status := NewStatusService(client, store, logger, cfg)
	data := NewDataService(client, store, status, logger)
	data.SetAuthorized(true)

	data.mu.Lock()
	data.products = []models.Product{{ID: "prod-cache", Name: "Bujía", Price: 10, Stock: 10}}
	data.mu.Unlock()

	var stockEvents []models.Product
	data.OnStockChanged(func(p models.Product) { stockEvents = append(stockEvents, p) })

	itemID := "prod-cache"
	sale, err := data.AddSale(context.Background(), models.SaleDraft{
		Subtotal:      40,
		TaxRate:       0.16,
		TaxAmount:     6.4,
		Total:         46.4,
		PaymentMethod: "Efectivo",
		CashierID:     "user-x",
		Items: []models.SaleItemDraft{
			{ItemID: &itemID, ItemType: models.ItemTypeProduct, Name: "Bujía", Price: 10, Quantity: 4},
		},
	})
	if err != nil {
		t.Fatalf("add sale: %v", err)
	}
	if sale.ID != "sale-remote-001" {
		t.Errorf("sale id = %q", sale.ID)
	}

	product, err := data.ProductByID("prod-cache")
	if err != nil {
		t.Fatalf("cached product: %v", err)
	}
	if product.Stock != 6 {
		t.Errorf("cached stock = %d, want 6 after selling 4", product.Stock)
	}
	if len(stockEvents) != 1 || stockEvents[0].Stock != 6 {
		t.Errorf("stock events = %+v, want one at stock 6", stockEvents)
	}
}
