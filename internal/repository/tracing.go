package repository

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/styleswipe/internal/domain"
)

const tracerName = "styleswipe-repository"

// record closes span, marking real failures. Not-found is an expected outcome.
func record(span trace.Span, err error) {
	defer span.End()
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TracingSwipeRepository wraps a SwipeRepository with spans
type TracingSwipeRepository struct {
	next domain.SwipeRepository
}

// NewTracingSwipeRepository creates a new repository with tracing
func NewTracingSwipeRepository(next domain.SwipeRepository) *TracingSwipeRepository {
	return &TracingSwipeRepository{next: next}
}

func (r *TracingSwipeRepository) Upsert(ctx context.Context, swipe *domain.Swipe) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "repository.Swipe.Upsert",
		trace.WithAttributes(
			attribute.Int("swipe.user_id", int(swipe.UserID)),
			attribute.Int("swipe.product_id", int(swipe.ProductID)),
			attribute.Bool("swipe.liked", swipe.Liked),
		),
	)
	err := r.next.Upsert(ctx, swipe)
	record(span, err)
	return err
}

func (r *TracingSwipeRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Swipe, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "repository.Swipe.ListByUser",
		trace.WithAttributes(attribute.Int("swipe.user_id", int(userID))),
	)
	swipes, err := r.next.ListByUser(ctx, userID)
	span.SetAttributes(attribute.Int("swipe.count", len(swipes)))
	record(span, err)
	return swipes, err
}

func (r *TracingSwipeRepository) AddLiked(ctx context.Context, userID, productID uint) (bool, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "repository.Swipe.AddLiked",
		trace.WithAttributes(
			attribute.Int("swipe.user_id", int(userID)),
			attribute.Int("swipe.product_id", int(productID)),
		),
	)
	created, err := r.next.AddLiked(ctx, userID, productID)
	span.SetAttributes(attribute.Bool("liked.created", created))
	record(span, err)
	return created, err
}

func (r *TracingSwipeRepository) ListLiked(ctx context.Context, userID uint) ([]domain.LikedProduct, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "repository.Swipe.ListLiked",
		trace.WithAttributes(attribute.Int("swipe.user_id", int(userID))),
	)
	liked, err := r.next.ListLiked(ctx, userID)
	span.SetAttributes(attribute.Int("liked.count", len(liked)))
	record(span, err)
	return liked, err
}

func (r *TracingSwipeRepository) ResetUser(ctx context.Context, userID uint) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "repository.Swipe.ResetUser",
		trace.WithAttributes(attribute.Int("swipe.user_id", int(userID))),
	)
	err := r.next.ResetUser(ctx, userID)
	record(span, err)
	return err
}

// TracingProductRepository wraps a ProductRepository with spans
type TracingProductRepository struct {
	next domain.ProductRepository
}

// NewTracingProductRepository creates a new repository with tracing
func NewTracingProductRepository(next domain.ProductRepository) *TracingProductRepository {
	return &TracingProductRepository{next: next}
}

func (r *TracingProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "repository.Product.Upsert",
		trace.WithAttributes(attribute.String("product.external_id", product.ExternalID)),
	)
	err := r.next.Upsert(ctx, product)
	span.SetAttributes(attribute.Int("product.id", int(product.ID)))
	record(span, err)
	return err
}

func (r *TracingProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "repository.Product.FindByID",
		trace.WithAttributes(attribute.Int("product.id", int(id))),
	)
	product, err := r.next.FindByID(ctx, id)
	record(span, err)
	return product, err
}

func (r *TracingProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Product, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "repository.Product.FindByIDs",
		trace.WithAttributes(attribute.Int("product.requested", len(ids))),
	)
	products, err := r.next.FindByIDs(ctx, ids)
	span.SetAttributes(attribute.Int("product.found", len(products)))
	record(span, err)
	return products, err
}

var (
	_ domain.SwipeRepository   = (*TracingSwipeRepository)(nil)
	_ domain.ProductRepository = (*TracingProductRepository)(nil)
)
