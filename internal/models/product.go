package models

import "gorm.io/gorm"

// Category groups products (e.g. "Eau de Parfum", "Attar").
type Category struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string `json:"name" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Product represents a perfume in the catalog.
//
// Price is in whole currency units. Stock never goes below zero; every
// decrement is paired with an order row created in the same transaction.
type Product struct {
	ID          string   `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=500"`
	Brand       string   `json:"brand" validate:"omitempty,max=100"`
	Gender      string   `json:"gender" validate:"omitempty,oneof=men women unisex"`
	Size        string   `json:"size" validate:"omitempty,max=20"`
	Price       int64    `json:"price" validate:"required,gt=0"`
	Stock       int      `json:"stock" validate:"gte=0"`
	CategoryID  string   `json:"category_id" gorm:"type:varchar(36);index" validate:"omitempty,uuid"`
	Category    Category `json:"category" gorm:"foreignKey:CategoryID" validate:"-"`
	gorm.Model
}
