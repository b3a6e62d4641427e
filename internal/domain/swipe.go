package domain

import (
	"context"
	"time"
)

// Swipe is the latest like/dislike decision of a user on a product
type Swipe struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_swipes_user_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_swipes_user_product;index"`
	Liked     bool      `json:"liked" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Swipe) TableName() string {
	return "swipes"
}

// LikedProduct is created the first time a user likes a product
type LikedProduct struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_liked_products_user_product"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:idx_liked_products_user_product;index"`
	LikedAt   time.Time `json:"liked_at" gorm:"autoCreateTime"`
	Product   *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (LikedProduct) TableName() string {
	return "liked_products"
}

// SwipeRepository defines the contract for swipe and like data access
type SwipeRepository interface {
	// Upsert writes the swipe, replacing liked on an existing (user, product) row.
	Upsert(ctx context.Context, swipe *Swipe) error
	ListByUser(ctx context.Context, userID uint) ([]Swipe, error)

	// AddLiked inserts the like unless it already exists and reports
	// whether a new row was created.
	AddLiked(ctx context.Context, userID, productID uint) (bool, error)
	ListLiked(ctx context.Context, userID uint) ([]LikedProduct, error)

	// ResetUser removes every swipe and like of the user.
	ResetUser(ctx context.Context, userID uint) error
}
