//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/styleswipe/config"
	httpDelivery "github.com/tair/styleswipe/internal/delivery/http"
	"github.com/tair/styleswipe/internal/search"
	"github.com/tair/styleswipe/internal/swipe"
	"github.com/tair/styleswipe/internal/tryon"
	"github.com/tair/styleswipe/internal/usecase/command"
	"github.com/tair/styleswipe/internal/usecase/query"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideUserRepository,
	ProvidePreferenceRepository,
	ProvideProductRepository,
	ProvideClickRepository,
	ProvideSwipeRepository,
	ProvideStatsRepository,
)

var ServiceSet = wire.NewSet(
	ProvideLayout,
	ProvideRedis,
	ProvideShoppingClient,
	ProvideSearcher,
	ProvideImageModel,
	tryon.NewGenerator,
	swipe.NewDeck,
	ProvidePublisher,
	wire.Bind(new(command.ProductSearcher), new(*search.Searcher)),
	wire.Bind(new(command.ImageGenerator), new(*tryon.Generator)),
)

var UseCaseSet = wire.NewSet(
	command.NewUploadImagesHandler,
	command.NewSavePreferencesHandler,
	command.NewRecordSwipeHandler,
	command.NewResetSwipesHandler,
	command.NewTrackClickHandler,
	query.NewListCardsHandler,
	query.NewNextCardHandler,
	query.NewGetStatusHandler,
	query.NewListLikedHandler,
)

var DeliverySet = wire.NewSet(
	ProvideRegistry,
	ProvideHTTPMetrics,
	ProvidePinger,
	ProvideRateLimiter,
	wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
	httpDelivery.NewHandler,
	ProvideRouter,
)

// InitializeApp initializes the service with all dependencies
func InitializeApp(ctx context.Context, cfg *config.Config, db *gorm.DB) (*App, func(), error) {
	wire.Build(
		RepositorySet,
		ServiceSet,
		UseCaseSet,
		DeliverySet,
		NewApp,
	)
	return nil, nil, nil
}
