package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"MotoZonePos/app/database"
	"MotoZonePos/app/models"
)

// entityStore is the uniform data-source contract the gateway routes
// through. The remote backend client satisfies it directly; localStore
// adapts the fallback database to the same shape. The gateway picks one
// per call based on the prober's verdict, so no operation carries its own
// online/offline branch.
type entityStore interface {
	Products(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	Categories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, draft models.CategoryDraft) (*models.Category, error)
	UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	Services(ctx context.Context) ([]models.Service, error)
	CreateService(ctx context.Context, draft models.ServiceDraft) (*models.Service, error)
	UpdateService(ctx context.Context, id string, patch models.ServicePatch) (*models.Service, error)
	DeleteService(ctx context.Context, id string) error

	Sales(ctx context.Context) ([]models.Sale, error)
	CreateSale(ctx context.Context, draft models.SaleDraft) (*models.Sale, error)
	SaleByID(ctx context.Context, id string) (*models.Sale, error)
	SalesSummary(ctx context.Context) (*models.SalesSummary, error)
	SalesByDateRange(ctx context.Context, startDate, endDate string) ([]models.Sale, error)
	SalesByCashier(ctx context.Context, cashierID string) ([]models.Sale, error)
	SaleItems(ctx context.Context) ([]models.SaleItemRecord, error)
	ProductSalesStats(ctx context.Context) (*models.ProductSalesStats, error)
	ServiceSalesStats(ctx context.Context) (*models.ServiceSalesStats, error)
}

// localStore serves the entityStore contract from the fallback database.
// Aggregates the backend computes server-side are computed here over the
// full sales collection.
type localStore struct {
	store *database.Store
}

func newLocalStore(store *database.Store) *localStore {
	return &localStore{store: store}
}

func (l *localStore) Products(ctx context.Context) ([]models.Product, error) {
	return l.store.Products()
}

func (l *localStore) CreateProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	product := draft.NewProduct()
	if err := l.store.AddProduct(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (l *localStore) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	return l.store.UpdateProduct(id, patch)
}

func (l *localStore) DeleteProduct(ctx context.Context, id string) error {
	return l.store.DeleteProduct(id)
}

func (l *localStore) Categories(ctx context.Context) ([]models.Category, error) {
	return l.store.Categories()
}

func (l *localStore) CreateCategory(ctx context.Context, draft models.CategoryDraft) (*models.Category, error) {
	category := draft.NewCategory()
	if err := l.store.AddCategory(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (l *localStore) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error) {
	return l.store.UpdateCategory(id, patch)
}

func (l *localStore) DeleteCategory(ctx context.Context, id string) error {
	return l.store.DeleteCategory(id)
}

func (l *localStore) Services(ctx context.Context) ([]models.Service, error) {
	return l.store.Services()
}

func (l *localStore) CreateService(ctx context.Context, draft models.ServiceDraft) (*models.Service, error) {
	service := draft.NewService()
	if err := l.store.AddService(&service); err != nil {
		return nil, err
	}
	return &service, nil
}

func (l *localStore) UpdateService(ctx context.Context, id string, patch models.ServicePatch) (*models.Service, error) {
	return l.store.UpdateService(id, patch)
}

func (l *localStore) DeleteService(ctx context.Context, id string) error {
	return l.store.DeleteService(id)
}

func (l *localStore) Sales(ctx context.Context) ([]models.Sale, error) {
	return l.store.Sales()
}

func (l *localStore) CreateSale(ctx context.Context, draft models.SaleDraft) (*models.Sale, error) {
	sale := saleFromDraft(draft)
	if err := l.store.AddSale(&sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// saleFromDraft materializes a draft for local persistence. The store
// assigns the id and date.
func saleFromDraft(draft models.SaleDraft) models.Sale {
	items := make([]models.SaleItem, len(draft.Items))
	for i, item := range draft.Items {
		items[i] = models.SaleItem{
			ItemID:   item.ItemID,
			ItemType: item.ItemType,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Discount: item.Discount,
		}
	}
	return models.Sale{
		Subtotal:      draft.Subtotal,
		TaxRate:       draft.TaxRate,
		TaxAmount:     draft.TaxAmount,
		DiscountTotal: draft.DiscountTotal,
		Total:         draft.Total,
		PaymentMethod: draft.PaymentMethod,
		CashierID:     draft.CashierID,
		Items:         items,
	}
}

func (l *localStore) SaleByID(ctx context.Context, id string) (*models.Sale, error) {
	return l.store.SaleByID(id)
}

func (l *localStore) SalesSummary(ctx context.Context) (*models.SalesSummary, error) {
	sales, err := l.store.Sales()
	if err != nil {
		return nil, err
	}
	return computeSalesSummary(sales, time.Now()), nil
}

func (l *localStore) SalesByDateRange(ctx context.Context, startDate, endDate string) ([]models.Sale, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	sales, err := l.store.Sales()
	if err != nil {
		return nil, err
	}
	return filterSalesByDateRange(sales, start, end), nil
}

func (l *localStore) SalesByCashier(ctx context.Context, cashierID string) ([]models.Sale, error) {
	sales, err := l.store.Sales()
	if err != nil {
		return nil, err
	}
	filtered := make([]models.Sale, 0)
	for _, sale := range sales {
		if sale.CashierID == cashierID {
			filtered = append(filtered, sale)
		}
	}
	return filtered, nil
}

func (l *localStore) SaleItems(ctx context.Context) ([]models.SaleItemRecord, error) {
	sales, err := l.store.Sales()
	if err != nil {
		return nil, err
	}
	records := make([]models.SaleItemRecord, 0)
	for _, sale := range sales {
		for _, item := range sale.Items {
			records = append(records, models.SaleItemRecord{SaleItem: item, SaleDate: sale.Date})
		}
	}
	return records, nil
}

func (l *localStore) ProductSalesStats(ctx context.Context) (*models.ProductSalesStats, error) {
	sales, err := l.store.Sales()
	if err != nil {
		return nil, err
	}
	ranking, unique := rankSaleItems(sales, models.ItemTypeProduct)
	return &models.ProductSalesStats{MostSoldProducts: ranking, TotalUniqueProducts: unique}, nil
}

func (l *localStore) ServiceSalesStats(ctx context.Context) (*models.ServiceSalesStats, error) {
	sales, err := l.store.Sales()
	if err != nil {
		return nil, err
	}
	ranking, unique := rankSaleItems(sales, models.ItemTypeService)
	return &models.ServiceSalesStats{MostRequestedServices: ranking, TotalUniqueServices: unique}, nil
}

// --- Aggregate computations ---

// computeSalesSummary partitions sales into today / this month / all time
// relative to now, using calendar boundaries in now's location.
func computeSalesSummary(sales []models.Sale, now time.Time) *models.SalesSummary {
	year, month, day := now.Date()
	summary := &models.SalesSummary{}
	for _, sale := range sales {
		date := sale.Date.In(now.Location())
		summary.AllTime.Count++
		summary.AllTime.Total += sale.Total
		if date.Year() == year && date.Month() == month {
			summary.ThisMonth.Count++
			summary.ThisMonth.Total += sale.Total
			if date.Day() == day {
				summary.Today.Count++
				summary.Today.Total += sale.Total
			}
		}
	}
	return summary
}

// filterSalesByDateRange keeps sales whose date falls on start, end, or any
// day between them.
func filterSalesByDateRange(sales []models.Sale, start, end time.Time) []models.Sale {
	rangeEnd := end.AddDate(0, 0, 1)
	filtered := make([]models.Sale, 0)
	for _, sale := range sales {
		if !sale.Date.Before(start) && sale.Date.Before(rangeEnd) {
			filtered = append(filtered, sale)
		}
	}
	return filtered
}

// rankSaleItems aggregates sold quantities by item name for one item type
// and returns the top ten plus the distinct item count.
func rankSaleItems(sales []models.Sale, itemType string) ([]models.ItemStat, int) {
	quantities := make(map[string]int)
	for _, sale := range sales {
		for _, item := range sale.Items {
			if item.ItemType == itemType {
				quantities[item.Name] += item.Quantity
			}
		}
	}

	ranking := make([]models.ItemStat, 0, len(quantities))
	for name, quantity := range quantities {
		ranking = append(ranking, models.ItemStat{Name: name, Quantity: quantity})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Quantity != ranking[j].Quantity {
			return ranking[i].Quantity > ranking[j].Quantity
		}
		return ranking[i].Name < ranking[j].Name
	})

	unique := len(ranking)
	if len(ranking) > 10 {
		ranking = ranking[:10]
	}
	return ranking, unique
}
