package models

// Draft types are entities before they have an id. The backend assigns ids
// on the online path; the local store synthesizes UUIDs offline.

// ProductDraft is a Product without an id
type ProductDraft struct {
	Name              string  `json:"name"`
	Image             *string `json:"image"`
	Description       *string `json:"description"`
	Price             float64 `json:"price"`
	CategoryID        string  `json:"category_id"`
	Stock             int     `json:"stock"`
	LowStockThreshold int     `json:"low_stock_threshold"`
}

// NewProduct builds an unsaved Product from the draft
func (d ProductDraft) NewProduct() Product {
	return Product{
		Name:              d.Name,
		Image:             d.Image,
		Description:       d.Description,
		Price:             d.Price,
		CategoryID:        d.CategoryID,
		Stock:             d.Stock,
		LowStockThreshold: d.LowStockThreshold,
	}
}

// ServiceDraft is a Service without an id
type ServiceDraft struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// NewService builds an unsaved Service from the draft
func (d ServiceDraft) NewService() Service {
	return Service{
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
	}
}

// CategoryDraft is a Category without an id
type CategoryDraft struct {
	Name string `json:"name"`
}

// NewCategory builds an unsaved Category from the draft
func (d CategoryDraft) NewCategory() Category {
	return Category{Name: d.Name}
}
