package database

import (
	"log"
	"time"

	"MotoZonePos/app/models"

	"golang.org/x/crypto/bcrypt"
)

// EnsureSeeded populates every empty collection with the built-in sample
// catalog. Collections that already hold data are left alone, so the seed
// is idempotent and never overwrites user changes.
func (s *Store) EnsureSeeded() error {
	if err := s.seedCategories(); err != nil {
		return err
	}
	if err := s.seedProducts(); err != nil {
		return err
	}
	if err := s.seedServices(); err != nil {
		return err
	}
	if err := s.seedUsers(); err != nil {
		return err
	}
	return s.seedSales()
}

func (s *Store) seedCategories() error {
	var count int64
	s.db.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{ID: "cat-001", Name: "Lubricantes"},
		{ID: "cat-002", Name: "Filtros"},
		{ID: "cat-003", Name: "Frenos"},
		{ID: "cat-004", Name: "Accesorios"},
	}
	for _, cat := range categories {
		if err := s.db.Create(&cat).Error; err != nil {
			return err
		}
	}
	log.Println("Local store: seeded sample categories")
	return nil
}

func (s *Store) seedProducts() error {
	var count int64
	s.db.Model(&models.Product{}).Count(&count)
	if count > 0 {
		return nil
	}

	products := []models.Product{
		{
			ID:                "prod-001",
			Name:              "Aceite Sintético 10W-40",
			Description:       strPtr("Aceite de motor sintético de alto rendimiento para motocicletas."),
			Price:             25.99,
			CategoryID:        "cat-001",
			Stock:             50,
			LowStockThreshold: 10,
		},
		{
			ID:                "prod-002",
			Name:              "Filtro de Aire Deportivo",
			Description:       strPtr("Filtro de aire de alto flujo para mejorar el rendimiento."),
			Price:             35.50,
			CategoryID:        "cat-002",
			Stock:             30,
			LowStockThreshold: 5,
		},
		{
			ID:                "prod-003",
			Name:              "Pastillas de Freno Delanteras",
			Description:       strPtr("Pastillas de freno cerámicas para mayor durabilidad y frenado."),
			Price:             45.00,
			CategoryID:        "cat-003",
			Stock:             20,
			LowStockThreshold: 5,
		},
		{
			ID:                "prod-004",
			Name:              "Casco Integral Sport",
			Description:       strPtr("Casco integral con diseño aerodinámico y ventilación avanzada."),
			Price:             180.00,
			CategoryID:        "cat-004",
			Stock:             15,
			LowStockThreshold: 3,
		},
		{
			ID:                "prod-005",
			Name:              "Guantes de Cuero Racing",
			Description:       strPtr("Guantes de cuero con protecciones para conducción deportiva."),
			Price:             75.00,
			CategoryID:        "cat-004",
			Stock:             25,
			LowStockThreshold: 5,
		},
	}
	for _, product := range products {
		if err := s.db.Create(&product).Error; err != nil {
			return err
		}
	}
	log.Println("Local store: seeded sample products")
	return nil
}

func (s *Store) seedServices() error {
	var count int64
	s.db.Model(&models.Service{}).Count(&count)
	if count > 0 {
		return nil
	}

	services := []models.Service{
		{
			ID:          "serv-001",
			Name:        "Cambio de Aceite y Filtro",
			Description: "Reemplazo de aceite de motor y filtro de aceite.",
			Price:       40.00,
		},
		{
			ID:          "serv-002",
			Name:        "Diagnóstico Electrónico",
			Description: "Revisión y diagnóstico de fallas electrónicas del motor.",
			Price:       60.00,
		},
		{
			ID:          "serv-003",
			Name:        "Alineación y Balanceo",
			Description: "Alineación de ruedas y balanceo de neumáticos.",
			Price:       55.00,
		},
		{
			ID:          "serv-004",
			Name:        "Revisión General",
			Description: "Inspección completa de la motocicleta (frenos, luces, fluidos, etc.).",
			Price:       80.00,
		},
	}
	for _, service := range services {
		if err := s.db.Create(&service).Error; err != nil {
			return err
		}
	}
	log.Println("Local store: seeded sample services")
	return nil
}

func (s *Store) seedUsers() error {
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []models.User{
		{
			ID:           "user-admin-001",
			Email:        "admin@motozone.com",
			Name:         "Juan Administrador",
			Role:         models.RoleAdmin,
			PasswordHash: string(hash),
		},
		{
			ID:           "user-employee-001",
			Email:        "empleado@motozone.com",
			Name:         "Maria Empleada",
			Role:         models.RoleEmployee,
			PasswordHash: string(hash),
		},
	}
	for _, user := range users {
		if err := s.db.Create(&user).Error; err != nil {
			return err
		}
	}
	log.Println("Local store: seeded demo users")
	return nil
}

func (s *Store) seedSales() error {
	var count int64
	s.db.Model(&models.Sale{}).Count(&count)
	if count > 0 {
		return nil
	}

	sales := []models.Sale{
		{
			ID:            "sale-001",
			Date:          time.Date(2023, 10, 26, 10, 30, 0, 0, time.UTC),
			Subtotal:      65.99,
			TaxRate:       0.16,
			TaxAmount:     10.56,
			DiscountTotal: 0,
			Total:         76.55,
			PaymentMethod: "Tarjeta",
			CashierID:     "user-employee-001",
			Items: []models.SaleItem{
				{ID: "item-001", ItemID: strPtr("prod-001"), ItemType: models.ItemTypeProduct, Name: "Aceite Sintético 10W-40", Price: 25.99, Quantity: 1},
				{ID: "item-002", ItemID: strPtr("serv-001"), ItemType: models.ItemTypeService, Name: "Cambio de Aceite y Filtro", Price: 40.00, Quantity: 1},
			},
		},
		{
			ID:            "sale-002",
			Date:          time.Date(2023, 10, 25, 15, 0, 0, 0, time.UTC),
			Subtotal:      255.00,
			TaxRate:       0.16,
			TaxAmount:     39.60,
			DiscountTotal: 7.50,
			Total:         287.10,
			PaymentMethod: "Efectivo",
			CashierID:     "user-admin-001",
			Items: []models.SaleItem{
				{ID: "item-003", ItemID: strPtr("prod-004"), ItemType: models.ItemTypeProduct, Name: "Casco Integral Sport", Price: 180.00, Quantity: 1},
				{ID: "item-004", ItemID: strPtr("prod-005"), ItemType: models.ItemTypeProduct, Name: "Guantes de Cuero Racing", Price: 75.00, Quantity: 1, Discount: 10},
			},
		},
	}
	for _, sale := range sales {
		if err := s.AddSale(&sale); err != nil {
			return err
		}
	}
	log.Println("Local store: seeded sample sales")
	return nil
}

func strPtr(s string) *string {
	return &s
}
