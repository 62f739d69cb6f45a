package models

// Patch types carry partial updates: nil fields are left untouched.
// They double as the JSON bodies of the PUT endpoints.

// ProductPatch is a partial Product update
type ProductPatch struct {
	Name              *string  `json:"name,omitempty"`
	Image             *string  `json:"image,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	CategoryID        *string  `json:"category_id,omitempty"`
	Stock             *int     `json:"stock,omitempty"`
	LowStockThreshold *int     `json:"low_stock_threshold,omitempty"`
}

// Apply merges the patch into the product
func (p *Product) Apply(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Image != nil {
		p.Image = patch.Image
	}
	if patch.Description != nil {
		p.Description = patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.LowStockThreshold != nil {
		p.LowStockThreshold = *patch.LowStockThreshold
	}
}

// ServicePatch is a partial Service update
type ServicePatch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// Apply merges the patch into the service
func (s *Service) Apply(patch ServicePatch) {
	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.Description != nil {
		s.Description = *patch.Description
	}
	if patch.Price != nil {
		s.Price = *patch.Price
	}
}

// CategoryPatch is a partial Category update
type CategoryPatch struct {
	Name *string `json:"name,omitempty"`
}

// Apply merges the patch into the category
func (c *Category) Apply(patch CategoryPatch) {
	if patch.Name != nil {
		c.Name = *patch.Name
	}
}
