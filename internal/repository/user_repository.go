package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/styleswipe/internal/domain"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) EnsureByFolder(ctx context.Context, folder string) (*domain.User, error) {
	user := domain.User{UserFolder: folder}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_folder"}}, DoNothing: true}).
		Create(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID != 0 {
		return &user, nil
	}
	// The row already existed, ON CONFLICT DO NOTHING returns nothing.
	return r.FindByFolder(ctx, folder)
}

func (r *GormUserRepository) FindByFolder(ctx context.Context, folder string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("user_folder = ?", folder).First(&user).Error; err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

func (r *GormUserRepository) UpsertImage(ctx context.Context, image *domain.UserImage) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "angle"}},
			DoUpdates: clause.AssignmentColumns([]string{"image_path"}),
		}).
		Create(image).Error
}

type GormPreferenceRepository struct {
	db *gorm.DB
}

func NewGormPreferenceRepository(db *gorm.DB) *GormPreferenceRepository {
	return &GormPreferenceRepository{db: db}
}

func (r *GormPreferenceRepository) Upsert(ctx context.Context, pref *domain.Preference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"gender", "size", "styles", "clothing_types", "budget", "colors", "notes", "updated_at",
			}),
		}).
		Create(pref).Error
}

func (r *GormPreferenceRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Preference, error) {
	var pref domain.Preference
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error; err != nil {
		return nil, translate(err, "preference")
	}
	return &pref, nil
}
