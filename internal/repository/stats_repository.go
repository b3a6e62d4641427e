package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tair/styleswipe/internal/domain"
)

type GormStatsRepository struct {
	db *gorm.DB
}

func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

func (r *GormStatsRepository) count(ctx context.Context, model any, query string, args ...any) (int64, error) {
	var n int64
	tx := r.db.WithContext(ctx).Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	err := tx.Count(&n).Error
	return n, err
}

func (r *GormStatsRepository) groupCount(tx *gorm.DB, label string) ([]domain.LabelCount, error) {
	var rows []domain.LabelCount
	err := tx.Select(label + " AS label, COUNT(*) AS count").Group(label).Scan(&rows).Error
	return rows, err
}

func (r *GormStatsRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, &domain.User{}, "")
}

func (r *GormStatsRepository) CountUsersByGender(ctx context.Context) ([]domain.LabelCount, error) {
	return r.groupCount(r.db.WithContext(ctx).Model(&domain.Preference{}), "gender")
}

func (r *GormStatsRepository) CountUsersBySize(ctx context.Context) ([]domain.LabelCount, error) {
	return r.groupCount(r.db.WithContext(ctx).Model(&domain.Preference{}), "size")
}

func (r *GormStatsRepository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, &domain.Product{}, "")
}

func (r *GormStatsRepository) CountProductsByType(ctx context.Context) ([]domain.LabelCount, error) {
	return r.groupCount(r.db.WithContext(ctx).Model(&domain.Product{}), "product_type")
}

func (r *GormStatsRepository) CountSwipes(ctx context.Context, liked bool) (int64, error) {
	return r.count(ctx, &domain.Swipe{}, "liked = ?", liked)
}

func (r *GormStatsRepository) CountClicks(ctx context.Context) (int64, error) {
	return r.count(ctx, &domain.ProductClick{}, "")
}

func (r *GormStatsRepository) CountClicksByType(ctx context.Context) ([]domain.LabelCount, error) {
	tx := r.db.WithContext(ctx).
		Table("product_clicks").
		Joins("JOIN products ON products.id = product_clicks.product_id")
	return r.groupCount(tx, "products.product_type")
}

func (r *GormStatsRepository) CountLikedByType(ctx context.Context) ([]domain.LabelCount, error) {
	tx := r.db.WithContext(ctx).
		Table("liked_products").
		Joins("JOIN products ON products.id = liked_products.product_id")
	return r.groupCount(tx, "products.product_type")
}

func (r *GormStatsRepository) ListStyles(ctx context.Context) ([][]string, error) {
	var prefs []domain.Preference
	if err := r.db.WithContext(ctx).Select("styles").Find(&prefs).Error; err != nil {
		return nil, err
	}
	styles := make([][]string, 0, len(prefs))
	for _, p := range prefs {
		styles = append(styles, []string(p.Styles))
	}
	return styles, nil
}
