package models

import "time"

// Product is a catalog entry. InventoryCount is the authoritative stock
// level and is never negative; only the checkout path decrements it.
type Product struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          Money     `json:"price"`
	InventoryCount int       `json:"inventory_count"`
	ImageURL       string    `json:"image_url,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProductUpdate is a partial catalog update; nil fields are left unchanged.
type ProductUpdate struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Price          *Money  `json:"price"`
	InventoryCount *int    `json:"inventory_count"`
	ImageURL       *string `json:"image_url"`
	IsActive       *bool   `json:"is_active"`
}

// Apply copies the set fields onto the product.
func (u *ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.InventoryCount != nil {
		p.InventoryCount = *u.InventoryCount
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
}
