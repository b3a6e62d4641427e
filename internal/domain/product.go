package domain

import (
	"context"
	"time"
)

// Product is one shopping result saved at search time
type Product struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ExternalID     string    `json:"external_id" gorm:"column:product_id;uniqueIndex;not null"`
	Title          string    `json:"title" gorm:"not null"`
	Price          string    `json:"price"`
	ExtractedPrice *float64  `json:"extracted_price"`
	OldPrice       *string   `json:"old_price"`
	ProductLink    string    `json:"product_link" gorm:"not null"`
	Thumbnail      string    `json:"thumbnail"`
	Source         string    `json:"source"`
	SourceIcon     *string   `json:"source_icon"`
	Rating         *float64  `json:"rating"`
	Reviews        *int      `json:"reviews"`
	Snippet        *string   `json:"snippet"`
	Delivery       *string   `json:"delivery"`
	Tag            *string   `json:"tag"`
	ProductType    string    `json:"product_type" gorm:"index"`
	CreatedAt      time.Time `json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// ProductClick is one click on a purchase link. Append-only.
type ProductClick struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	ProductID uint      `json:"product_id" gorm:"not null;index"`
	Referrer  string    `json:"referrer"`
	ClickedAt time.Time `json:"clicked_at" gorm:"autoCreateTime;index"`
}

func (ProductClick) TableName() string {
	return "product_clicks"
}

// ProductRepository defines the contract for product data access
type ProductRepository interface {
	// Upsert inserts the product or refreshes the row with the same external id.
	// product.ID is set on return.
	Upsert(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Product, error)
}

// ClickRepository defines the contract for click tracking
type ClickRepository interface {
	Create(ctx context.Context, click *ProductClick) error
}
