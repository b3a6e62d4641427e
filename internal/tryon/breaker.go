package tryon

import (
	"context"
	"errors"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/pkg/circuitbreaker"
)

// BreakerModel fails fast while the image API keeps erroring
type BreakerModel struct {
	next    ImageModel
	breaker *circuitbreaker.Breaker
}

func NewBreakerModel(next ImageModel, breaker *circuitbreaker.Breaker) *BreakerModel {
	return &BreakerModel{next: next, breaker: breaker}
}

func (m *BreakerModel) Generate(ctx context.Context, person, garment Image, prompt string) ([]Image, error) {
	var images []Image
	err := m.breaker.Call(func() error {
		var err error
		images, err = m.next.Generate(ctx, person, garment, prompt)
		return err
	}, func(err error) bool {
		return errors.Is(err, domain.ErrUpstreamUnavailable)
	})
	return images, err
}
