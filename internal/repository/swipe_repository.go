package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/styleswipe/internal/domain"
)

type GormSwipeRepository struct {
	db *gorm.DB
}

func NewGormSwipeRepository(db *gorm.DB) *GormSwipeRepository {
	return &GormSwipeRepository{db: db}
}

func (r *GormSwipeRepository) Upsert(ctx context.Context, swipe *domain.Swipe) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
		}).
		Create(swipe).Error
}

func (r *GormSwipeRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Swipe, error) {
	var swipes []domain.Swipe
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&swipes).Error
	return swipes, err
}

func (r *GormSwipeRepository) AddLiked(ctx context.Context, userID, productID uint) (bool, error) {
	liked := domain.LikedProduct{UserID: userID, ProductID: productID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&liked)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormSwipeRepository) ListLiked(ctx context.Context, userID uint) ([]domain.LikedProduct, error) {
	var liked []domain.LikedProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("liked_at").
		Find(&liked).Error
	return liked, err
}

func (r *GormSwipeRepository) ResetUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&domain.Swipe{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", userID).Delete(&domain.LikedProduct{}).Error
	})
}
