package models

import "time"

// DefaultCategory is assigned to products created without a category.
const DefaultCategory = "sin-categoria"

type Product struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	Code        string    `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Price       float64   `json:"price" gorm:"not null"`
	Description string    `json:"description" gorm:"size:1024;not null"`
	Category    string    `json:"category" gorm:"size:64;index"`
	ImageURL    string    `json:"image_url" gorm:"size:512"`
	CreatedBy   string    `json:"created_by" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Code        string  `json:"code" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0,cents"`
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// UpdateProductRequest is a partial update: nil fields are left unchanged.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Code        *string  `json:"code"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"image_url"`
}
