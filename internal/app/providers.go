// Package app assembles the StyleSwipe object graph.
package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tair/styleswipe/config"
	httpDelivery "github.com/tair/styleswipe/internal/delivery/http"
	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/metrics"
	"github.com/tair/styleswipe/internal/repository"
	"github.com/tair/styleswipe/internal/search"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/internal/tryon"
	"github.com/tair/styleswipe/internal/usecase/command"
	"github.com/tair/styleswipe/kafka"
	"github.com/tair/styleswipe/pkg/circuitbreaker"
	"github.com/tair/styleswipe/pkg/logger"
)

// App is the assembled service
type App struct {
	Router    http.Handler
	Searcher  *search.Searcher
	Generator *tryon.Generator
}

func NewApp(router http.Handler, searcher *search.Searcher, generator *tryon.Generator) *App {
	return &App{Router: router, Searcher: searcher, Generator: generator}
}

func ProvideLayout(cfg *config.Config) *storage.Layout {
	return storage.NewLayout(cfg.Storage.ImagesDir)
}

func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewGormUserRepository(db)
}

func ProvidePreferenceRepository(db *gorm.DB) domain.PreferenceRepository {
	return repository.NewGormPreferenceRepository(db)
}

func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewTracingProductRepository(repository.NewGormProductRepository(db))
}

func ProvideClickRepository(db *gorm.DB) domain.ClickRepository {
	return repository.NewGormClickRepository(db)
}

func ProvideSwipeRepository(db *gorm.DB) domain.SwipeRepository {
	return repository.NewTracingSwipeRepository(repository.NewGormSwipeRepository(db))
}

func ProvideStatsRepository(db *gorm.DB) domain.StatsRepository {
	return repository.NewGormStatsRepository(db)
}

// ProvideRedis returns nil when no address is configured
func ProvideRedis(cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled() {
		return nil, func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	logger.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Search cache enabled")
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Redis client")
		}
	}
	return client, cleanup, nil
}

// ProvideShoppingClient wraps the SerpApi client with the Redis cache when one is available
func ProvideShoppingClient(cfg *config.Config, rdb *redis.Client) search.ShoppingClient {
	var client search.ShoppingClient = search.NewSerpAPIClient(search.ClientConfig{
		APIKey:   cfg.Search.APIKey,
		Endpoint: cfg.Search.Endpoint,
		Timeout:  cfg.Search.Timeout(),
	})
	client = search.NewBreakerClient(client, circuitbreaker.New("serpapi", cfg.Breaker.MaxFailures, cfg.Breaker.OpenFor()))
	if rdb != nil {
		client = search.NewCachedClient(client, search.NewRedisCache(rdb), cfg.Redis.TTL())
	}
	return client
}

func ProvideSearcher(client search.ShoppingClient, products domain.ProductRepository, layout *storage.Layout, cfg *config.Config) *search.Searcher {
	return search.NewSearcher(client, products, layout, search.SearcherConfig{
		NumResults:      cfg.Search.NumResults,
		DownloadTimeout: cfg.Search.DownloadTimeout(),
	})
}

// ProvideImageModel returns a nil model without an API key, which disables generation
func ProvideImageModel(ctx context.Context, cfg *config.Config) (tryon.ImageModel, error) {
	if cfg.TryOn.APIKey == "" {
		logger.Logger.Warn().Msg("IMAGE_API_KEY not set, try-on generation disabled")
		return nil, nil
	}
	model, err := tryon.NewGeminiModel(ctx, cfg.TryOn.APIKey, cfg.TryOn.Model)
	if err != nil {
		return nil, err
	}
	return tryon.NewBreakerModel(model, circuitbreaker.New("gemini", cfg.Breaker.MaxFailures, cfg.Breaker.OpenFor())), nil
}

// ProvideRateLimiter returns nil without Redis, which disables rate limiting
func ProvideRateLimiter(cfg *config.Config, rdb *redis.Client) httpDelivery.RateLimiter {
	if rdb == nil || cfg.RateLimit.MaxRequests <= 0 {
		return nil
	}
	return httpDelivery.NewRedisRateLimiter(rdb, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window())
}

// ProvidePublisher falls back to a no-op publisher when Kafka is disabled or unreachable
func ProvidePublisher(cfg *config.Config) (command.EventPublisher, func()) {
	if !cfg.Kafka.Enabled {
		return kafka.NoopPublisher{}, func() {}
	}
	publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers())
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("Kafka unavailable, interaction events disabled")
		return kafka.NoopPublisher{}, func() {}
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to close Kafka publisher")
		}
	}
}

func ProvideRegistry(stats domain.StatsRepository) *prometheus.Registry {
	return metrics.NewRegistry(stats)
}

func ProvideHTTPMetrics(reg *prometheus.Registry) *metrics.HTTPMetrics {
	return metrics.NewHTTPMetrics(reg)
}

func ProvidePinger(db *gorm.DB) (httpDelivery.Pinger, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return sqlDB, nil
}

func ProvideRouter(handler *httpDelivery.Handler) http.Handler {
	return httpDelivery.NewRouter(handler, httpDelivery.DefaultMiddlewareConfig())
}
