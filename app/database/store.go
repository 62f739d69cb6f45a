package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"MotoZonePos/app/config"
	"MotoZonePos/app/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the local fallback database used while the remote backend is
// unreachable. It holds full copies of every collection and is seeded with
// the built-in sample catalog the first time a collection is empty.
type Store struct {
	db *gorm.DB
}

// Initialize opens the local store. The default driver is a CGO-free SQLite
// file under the configured data path; a postgres DSN switches drivers, the
// same dual-driver setup the main database uses.
func Initialize(cfg *config.AppConfig) (*Store, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.LocalDB.Driver == "postgres" && cfg.LocalDB.DSN != "" {
		db, err = gorm.Open(postgres.Open(cfg.LocalDB.DSN), gormConfig)
	} else {
		dataPath := cfg.LocalDB.DataPath
		if dataPath == "" {
			dataPath = "./data"
		}
		if err := os.MkdirAll(dataPath, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		db, err = gorm.Open(sqlite.Open(filepath.Join(dataPath, "motozone.db")), gormConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to local database: %w", err)
	}

	store := &Store{db: db}
	if err := store.runMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run local migrations: %w", err)
	}

	return store, nil
}

// runMigrations creates the collection tables
func (s *Store) runMigrations() error {
	return s.db.AutoMigrate(
		&models.Product{},
		&models.Category{},
		&models.Service{},
		&models.Sale{},
		&models.SaleItem{},
		&models.User{},
	)
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// --- Products ---

// Products returns the full product collection
func (s *Store) Products() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Order("created_at").Find(&products).Error
	return products, err
}

// AddProduct persists a new product, synthesizing an id if absent
func (s *Store) AddProduct(product *models.Product) error {
	if product.ID == "" {
		product.ID = "prod-" + uuid.NewString()
	}
	return s.db.Create(product).Error
}

// UpdateProduct merges a partial update into the stored product.
// Returns models.ErrNotFound if the id does not exist.
func (s *Store) UpdateProduct(id string, patch models.ProductPatch) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	product.Apply(patch)
	if err := s.db.Save(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product. Returns models.ErrNotFound for unknown ids.
func (s *Store) DeleteProduct(id string) error {
	result := s.db.Delete(&models.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// --- Categories ---

// Categories returns the full category collection
func (s *Store) Categories() ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Order("name").Find(&categories).Error
	return categories, err
}

// AddCategory persists a new category, synthesizing an id if absent
func (s *Store) AddCategory(category *models.Category) error {
	if category.ID == "" {
		category.ID = "cat-" + uuid.NewString()
	}
	return s.db.Create(category).Error
}

// UpdateCategory merges a partial update into the stored category
func (s *Store) UpdateCategory(id string, patch models.CategoryPatch) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	category.Apply(patch)
	if err := s.db.Save(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory removes a category. No cascade: products keep their
// dangling category_id, as the backend does.
func (s *Store) DeleteCategory(id string) error {
	result := s.db.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// --- Services ---

// Services returns the full service collection
func (s *Store) Services() ([]models.Service, error) {
	var services []models.Service
	err := s.db.Order("created_at").Find(&services).Error
	return services, err
}

// AddService persists a new service, synthesizing an id if absent
func (s *Store) AddService(service *models.Service) error {
	if service.ID == "" {
		service.ID = "serv-" + uuid.NewString()
	}
	return s.db.Create(service).Error
}

// UpdateService merges a partial update into the stored service
func (s *Store) UpdateService(id string, patch models.ServicePatch) (*models.Service, error) {
	var service models.Service
	if err := s.db.First(&service, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	service.Apply(patch)
	if err := s.db.Save(&service).Error; err != nil {
		return nil, err
	}
	return &service, nil
}

// DeleteService removes a service. Returns models.ErrNotFound for unknown ids.
func (s *Store) DeleteService(id string) error {
	result := s.db.Delete(&models.Service{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// --- Sales ---

// Sales returns all sales with their items
func (s *Store) Sales() ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.Preload("Items").Order("date").Find(&sales).Error
	return sales, err
}

// SaleByID returns one sale with its items
func (s *Store) SaleByID(id string) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.Preload("Items").First(&sale, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &sale, nil
}

// AddSale persists a sale and its items in one transaction, assigning ids
// and the sale date when absent. Sales are append-only; stock is not
// adjusted here. The in-memory cache projection handles that, and the
// store's stock stays authoritative until the next full refresh.
func (s *Store) AddSale(sale *models.Sale) error {
	if sale.ID == "" {
		sale.ID = "sale-" + uuid.NewString()
	}
	if sale.Date.IsZero() {
		sale.Date = time.Now().UTC()
	}
	for i := range sale.Items {
		if sale.Items[i].ID == "" {
			sale.Items[i].ID = "item-" + uuid.NewString()
		}
		sale.Items[i].SaleID = sale.ID
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(sale).Error
	})
}

// --- Users ---

// Users returns all local user accounts
func (s *Store) Users() ([]models.User, error) {
	var users []models.User
	err := s.db.Find(&users).Error
	return users, err
}

// UserByEmail looks a user up for offline authentication
func (s *Store) UserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// AddUser persists a locally registered user
func (s *Store) AddUser(user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + uuid.NewString()
	}
	return s.db.Create(user).Error
}

// notFoundOr maps gorm's record-not-found onto the shared sentinel
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
