package models

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type Order struct {
	ID        int64       `json:"id" gorm:"primaryKey"`
	UserID    int64       `json:"user_id" gorm:"index;not null"`
	Total     float64     `json:"total" gorm:"not null"`
	Status    OrderStatus `json:"status" gorm:"size:20;not null"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
}

// OrderItem snapshots the product price at purchase time.
type OrderItem struct {
	ID          int64   `json:"id" gorm:"primaryKey"`
	OrderID     int64   `json:"order_id" gorm:"index;not null"`
	ProductID   int64   `json:"product_id" gorm:"not null"`
	ProductName string  `json:"name" gorm:"size:128"`
	Quantity    int     `json:"quantity" gorm:"not null"`
	UnitPrice   float64 `json:"unit_price" gorm:"not null"`
}

type CheckoutResult struct {
	OrderID   int64   `json:"order_id"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}
