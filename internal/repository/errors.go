package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/tair/styleswipe/internal/domain"
)

// translate maps gorm errors onto the domain taxonomy
func translate(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewNotFound(resource)
	}
	return err
}

var (
	_ domain.UserRepository       = (*GormUserRepository)(nil)
	_ domain.PreferenceRepository = (*GormPreferenceRepository)(nil)
	_ domain.ProductRepository    = (*GormProductRepository)(nil)
	_ domain.ClickRepository      = (*GormClickRepository)(nil)
	_ domain.SwipeRepository      = (*GormSwipeRepository)(nil)
	_ domain.StatsRepository      = (*GormStatsRepository)(nil)
)
