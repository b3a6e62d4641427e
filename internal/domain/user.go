package domain

import (
	"context"
	"time"

	"github.com/lib/pq"
)

// Angle is one of the three photo perspectives
type Angle string

const (
	AngleFront Angle = "front"
	AngleSide  Angle = "side"
	AngleBack  Angle = "back"
)

// Angles lists every angle in display order
var Angles = []Angle{AngleFront, AngleSide, AngleBack}

// User owns one folder under the images root
type User struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserFolder string    `json:"user_folder" gorm:"uniqueIndex;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserImage is the stored path of one uploaded angle photo
type UserImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_images_user_angle"`
	Angle     Angle     `json:"angle" gorm:"not null;uniqueIndex:idx_user_images_user_angle"`
	ImagePath string    `json:"image_path" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserImage) TableName() string {
	return "user_images"
}

// Preference holds the style answers of a user. One per user.
type Preference struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	UserID        uint           `json:"user_id" gorm:"not null;uniqueIndex"`
	Gender        string         `json:"gender"`
	Size          string         `json:"size"`
	Styles        pq.StringArray `json:"styles" gorm:"type:text[]"`
	ClothingTypes pq.StringArray `json:"clothing_types" gorm:"type:text[]"`
	Budget        *string        `json:"budget"`
	Colors        *string        `json:"colors"`
	Notes         *string        `json:"notes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Preference) TableName() string {
	return "preferences"
}

// PrimaryProductType is the first clothing type, used to tag searched products
func (p *Preference) PrimaryProductType() string {
	if len(p.ClothingTypes) == 0 {
		return ""
	}
	return p.ClothingTypes[0]
}

// UserRepository defines the contract for user data access
type UserRepository interface {
	// EnsureByFolder returns the user owning folder, creating it when absent.
	EnsureByFolder(ctx context.Context, folder string) (*User, error)
	FindByFolder(ctx context.Context, folder string) (*User, error)
	UpsertImage(ctx context.Context, image *UserImage) error
}

// PreferenceRepository defines the contract for preference data access
type PreferenceRepository interface {
	Upsert(ctx context.Context, pref *Preference) error
	FindByUserID(ctx context.Context, userID uint) (*Preference, error)
}
