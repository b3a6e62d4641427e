package domain

import "context"

// LabelCount is one row of a GROUP BY count. Label is nil for NULL.
type LabelCount struct {
	Label *string
	Count int64
}

// StatsRepository holds the read-only aggregate queries behind /metrics
type StatsRepository interface {
	CountUsers(ctx context.Context) (int64, error)
	CountUsersByGender(ctx context.Context) ([]LabelCount, error)
	CountUsersBySize(ctx context.Context) ([]LabelCount, error)
	CountProducts(ctx context.Context) (int64, error)
	CountProductsByType(ctx context.Context) ([]LabelCount, error)
	CountSwipes(ctx context.Context, liked bool) (int64, error)
	CountClicks(ctx context.Context) (int64, error)
	CountClicksByType(ctx context.Context) ([]LabelCount, error)
	CountLikedByType(ctx context.Context) ([]LabelCount, error)
	ListStyles(ctx context.Context) ([][]string, error)
}
