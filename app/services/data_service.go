package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"MotoZonePos/app/backend"
	"MotoZonePos/app/database"
	"MotoZonePos/app/models"
)

// Collection keys for the per-collection load state
const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionServices   = "services"
	CollectionSales      = "sales"
)

// CollectionState is the load state of one cached collection
type CollectionState struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
}

// DataService is the data gateway: every read and write goes through it.
// Each call picks the remote backend or the local fallback store through a
// single entityStore selection driven by the prober's verdict. Fetched
// collections are cached in memory; a failed refresh records an error but
// keeps the last good cache.
type DataService struct {
	remote entityStore
	local  entityStore
	status *StatusService
	logger *LoggerService

	mu         sync.RWMutex
	authorized bool
	products   []models.Product
	categories []models.Category
	services   []models.Service
	sales      []models.Sale
	states     map[string]CollectionState

	onStockChanged func(models.Product)
	onSaleRecorded func(models.Sale)
	onUnauthorized func()
}

// NewDataService creates the data gateway
func NewDataService(client *backend.Client, store *database.Store, status *StatusService, logger *LoggerService) *DataService {
	return &DataService{
		remote: client,
		local:  newLocalStore(store),
		status: status,
		logger: logger,
		states: map[string]CollectionState{
			CollectionProducts:   {},
			CollectionCategories: {},
			CollectionServices:   {},
			CollectionSales:      {},
		},
	}
}

// OnStockChanged registers a callback fired when a sale adjusts cached stock
func (s *DataService) OnStockChanged(fn func(models.Product)) {
	s.onStockChanged = fn
}

// OnSaleRecorded registers a callback fired after a sale is persisted
func (s *DataService) OnSaleRecorded(fn func(models.Sale)) {
	s.onSaleRecorded = fn
}

// OnUnauthorized registers a callback fired when the backend rejects the
// session token. The auth layer uses it to force a logout.
func (s *DataService) OnUnauthorized(fn func()) {
	s.onUnauthorized = fn
}

// SetAuthorized opens or closes the gateway. While closed every operation
// returns models.ErrNotAuthenticated.
func (s *DataService) SetAuthorized(authorized bool) {
	s.mu.Lock()
	s.authorized = authorized
	s.mu.Unlock()
}

// Reset clears every cache and load state. Called on logout so the next
// session starts from a clean slate.
func (s *DataService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authorized = false
	s.products = nil
	s.categories = nil
	s.services = nil
	s.sales = nil
	s.states = map[string]CollectionState{
		CollectionProducts:   {},
		CollectionCategories: {},
		CollectionServices:   {},
		CollectionSales:      {},
	}
}

// CollectionStates returns a snapshot of every collection's load state
func (s *DataService) CollectionStates() map[string]CollectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]CollectionState, len(s.states))
	for key, state := range s.states {
		snapshot[key] = state
	}
	return snapshot
}

func (s *DataService) requireAuth() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authorized {
		return models.ErrNotAuthenticated
	}
	return nil
}

// activeStore picks the data source for one call. Only an explicit
// unavailable verdict routes to the local store; unknown still tries the
// backend so the first real answer comes from the network.
func (s *DataService) activeStore() entityStore {
	if s.status.IsOffline() {
		return s.local
	}
	return s.remote
}

func (s *DataService) setLoading(collection string, loading bool) {
	s.mu.Lock()
	state := s.states[collection]
	state.Loading = loading
	s.states[collection] = state
	s.mu.Unlock()
}

// finish records the outcome of an operation on a collection: a nil error
// clears the collection's error, otherwise the message is kept for the UI
// while the stale cache stays serveable. Fetches and mutations both report
// here so every failure is logged and flagged.
func (s *DataService) finish(collection string, err error) error {
	s.mu.Lock()
	state := s.states[collection]
	state.Loading = false
	if err != nil {
		state.Error = err.Error()
	} else {
		state.Error = ""
	}
	s.states[collection] = state
	s.mu.Unlock()

	if err != nil {
		s.logger.LogError("Data operation on "+collection+" failed", err)
		s.handleUnauthorized(err)
	}
	return err
}

// handleUnauthorized forces a logout when the backend rejects the token
func (s *DataService) handleUnauthorized(err error) {
	if errors.Is(err, models.ErrUnauthorized) && s.onUnauthorized != nil {
		s.onUnauthorized()
	}
}

// FetchAll refreshes every collection. Used right after login; individual
// failures are recorded per collection and the rest still load.
func (s *DataService) FetchAll(ctx context.Context) error {
	var firstErr error
	if _, err := s.FetchProducts(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if _, err := s.FetchCategories(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if _, err := s.FetchServices(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if _, err := s.FetchSales(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// --- Products ---

// Products returns the cached product collection
func (s *DataService) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// ProductByID looks a product up in the cache
func (s *DataService) ProductByID(id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.products {
		if s.products[i].ID == id {
			product := s.products[i]
			return &product, nil
		}
	}
	return nil, models.ErrNotFound
}

// FetchProducts refreshes the product cache from the active data source
func (s *DataService) FetchProducts(ctx context.Context) ([]models.Product, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	s.setLoading(CollectionProducts, true)

	products, err := s.activeStore().Products(ctx)
	if err := s.finish(CollectionProducts, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	return s.Products(), nil
}

// AddProduct creates a product on the active data source and caches it
func (s *DataService) AddProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	product, err := s.activeStore().CreateProduct(ctx, draft)
	if err := s.finish(CollectionProducts, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.products = append(s.products, *product)
	s.mu.Unlock()
	return product, nil
}

// UpdateProduct applies a partial update and refreshes the cached entry
func (s *DataService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	product, err := s.activeStore().UpdateProduct(ctx, id, patch)
	if err := s.finish(CollectionProducts, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = *product
			break
		}
	}
	s.mu.Unlock()
	return product, nil
}

// DeleteProduct removes a product from the active data source and the cache
func (s *DataService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.requireAuth(); err != nil {
		return err
	}

	if err := s.finish(CollectionProducts, s.activeStore().DeleteProduct(ctx, id)); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// --- Categories ---

// Categories returns the cached category collection
func (s *DataService) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// FetchCategories refreshes the category cache from the active data source
func (s *DataService) FetchCategories(ctx context.Context) ([]models.Category, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	s.setLoading(CollectionCategories, true)

	categories, err := s.activeStore().Categories(ctx)
	if err := s.finish(CollectionCategories, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()
	return s.Categories(), nil
}

// AddCategory creates a category on the active data source and caches it
func (s *DataService) AddCategory(ctx context.Context, draft models.CategoryDraft) (*models.Category, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	category, err := s.activeStore().CreateCategory(ctx, draft)
	if err := s.finish(CollectionCategories, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.categories = append(s.categories, *category)
	s.mu.Unlock()
	return category, nil
}

// UpdateCategory applies a partial update and refreshes the cached entry
func (s *DataService) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (*models.Category, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	category, err := s.activeStore().UpdateCategory(ctx, id, patch)
	if err := s.finish(CollectionCategories, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories[i] = *category
			break
		}
	}
	s.mu.Unlock()
	return category, nil
}

// DeleteCategory removes a category. Products referencing it keep their
// category_id; the backend behaves the same way.
func (s *DataService) DeleteCategory(ctx context.Context, id string) error {
	if err := s.requireAuth(); err != nil {
		return err
	}

	if err := s.finish(CollectionCategories, s.activeStore().DeleteCategory(ctx, id)); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// --- Services ---

// Services returns the cached service collection
func (s *DataService) Services() []models.Service {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Service, len(s.services))
	copy(out, s.services)
	return out
}

// ServiceByID looks a service up in the cache
func (s *DataService) ServiceByID(id string) (*models.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.services {
		if s.services[i].ID == id {
			service := s.services[i]
			return &service, nil
		}
	}
	return nil, models.ErrNotFound
}

// FetchServices refreshes the service cache from the active data source
func (s *DataService) FetchServices(ctx context.Context) ([]models.Service, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	s.setLoading(CollectionServices, true)

	services, err := s.activeStore().Services(ctx)
	if err := s.finish(CollectionServices, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.services = services
	s.mu.Unlock()
	return s.Services(), nil
}

// AddService creates a service on the active data source and caches it
func (s *DataService) AddService(ctx context.Context, draft models.ServiceDraft) (*models.Service, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	service, err := s.activeStore().CreateService(ctx, draft)
	if err := s.finish(CollectionServices, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.services = append(s.services, *service)
	s.mu.Unlock()
	return service, nil
}

// UpdateService applies a partial update and refreshes the cached entry
func (s *DataService) UpdateService(ctx context.Context, id string, patch models.ServicePatch) (*models.Service, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	service, err := s.activeStore().UpdateService(ctx, id, patch)
	if err := s.finish(CollectionServices, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i := range s.services {
		if s.services[i].ID == id {
			s.services[i] = *service
			break
		}
	}
	s.mu.Unlock()
	return service, nil
}

// DeleteService removes a service from the active data source and the cache
func (s *DataService) DeleteService(ctx context.Context, id string) error {
	if err := s.requireAuth(); err != nil {
		return err
	}

	if err := s.finish(CollectionServices, s.activeStore().DeleteService(ctx, id)); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.services {
		if s.services[i].ID == id {
			s.services = append(s.services[:i], s.services[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// --- Sales ---

// Sales returns the cached sales collection
func (s *DataService) Sales() []models.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Sale, len(s.sales))
	copy(out, s.sales)
	return out
}

// FetchSales refreshes the sales cache from the active data source
func (s *DataService) FetchSales(ctx context.Context) ([]models.Sale, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	s.setLoading(CollectionSales, true)

	sales, err := s.activeStore().Sales(ctx)
	if err := s.finish(CollectionSales, err); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sales = sales
	s.mu.Unlock()
	return s.Sales(), nil
}

// AddSale persists a sale on the active data source, then projects it onto
// the caches: the sale is appended and cached product stock is decremented
// for every product line, clamped at zero. The projection is cache-only; on
// the offline path the local store's stock stays untouched and authoritative
// until the next full refresh.
func (s *DataService) AddSale(ctx context.Context, draft models.SaleDraft) (*models.Sale, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}

	sale, err := s.activeStore().CreateSale(ctx, draft)
	if err := s.finish(CollectionSales, err); err != nil {
		return nil, err
	}

	// Some backends echo the sale without its lines; fall back to the
	// submitted draft so the projection still sees every product line.
	lines := sale.Items
	if len(lines) == 0 {
		for _, item := range draft.Items {
			lines = append(lines, models.SaleItem{ItemID: item.ItemID, ItemType: item.ItemType, Quantity: item.Quantity})
		}
	}

	var touched []models.Product
	s.mu.Lock()
	s.sales = append(s.sales, *sale)
	for _, item := range lines {
		if item.ItemType != models.ItemTypeProduct || item.ItemID == nil {
			continue
		}
		for i := range s.products {
			if s.products[i].ID != *item.ItemID {
				continue
			}
			stock := s.products[i].Stock - item.Quantity
			if stock < 0 {
				stock = 0
			}
			s.products[i].Stock = stock
			touched = append(touched, s.products[i])
			break
		}
	}
	s.mu.Unlock()

	if s.onStockChanged != nil {
		for _, product := range touched {
			s.onStockChanged(product)
		}
	}
	if s.onSaleRecorded != nil {
		s.onSaleRecorded(*sale)
	}

	s.logger.LogInfo("Sale recorded", fmt.Sprintf("id=%s total=%.2f", sale.ID, sale.Total))
	return sale, nil
}

// SaleByID fetches one sale with its items
func (s *DataService) SaleByID(ctx context.Context, id string) (*models.Sale, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	sale, err := s.activeStore().SaleByID(ctx, id)
	if err != nil {
		s.handleUnauthorized(err)
	}
	return sale, err
}

// SalesSummary returns today / this month / all-time sale counts and totals
func (s *DataService) SalesSummary(ctx context.Context) (*models.SalesSummary, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	summary, err := s.activeStore().SalesSummary(ctx)
	if err != nil {
		s.handleUnauthorized(err)
	}
	return summary, err
}

// SalesByDateRange returns sales between two dates, inclusive. Dates use
// the 2006-01-02 wire format.
func (s *DataService) SalesByDateRange(ctx context.Context, startDate, endDate string) ([]models.Sale, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	sales, err := s.activeStore().SalesByDateRange(ctx, startDate, endDate)
	if err != nil {
		s.handleUnauthorized(err)
	}
	return sales, err
}

// SalesByCashier returns the sales recorded by one user
func (s *DataService) SalesByCashier(ctx context.Context, cashierID string) ([]models.Sale, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	sales, err := s.activeStore().SalesByCashier(ctx, cashierID)
	if err != nil {
		s.handleUnauthorized(err)
	}
	return sales, err
}

// SaleItems returns every sale line flattened with its sale date
func (s *DataService) SaleItems(ctx context.Context) ([]models.SaleItemRecord, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	items, err := s.activeStore().SaleItems(ctx)
	if err != nil {
		s.handleUnauthorized(err)
	}
	return items, err
}

// ProductSalesStats ranks the ten best-selling products by quantity
func (s *DataService) ProductSalesStats(ctx context.Context) (*models.ProductSalesStats, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	stats, err := s.activeStore().ProductSalesStats(ctx)
	if err != nil {
		s.handleUnauthorized(err)
	}
	return stats, err
}

// ServiceSalesStats ranks the ten most requested services by quantity
func (s *DataService) ServiceSalesStats(ctx context.Context) (*models.ServiceSalesStats, error) {
	if err := s.requireAuth(); err != nil {
		return nil, err
	}
	stats, err := s.activeStore().ServiceSalesStats(ctx)
	if err != nil {
		s.handleUnauthorized(err)
	}
	return stats, err
}
