package search

import (
	"context"
	"errors"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/pkg/circuitbreaker"
)

// BreakerClient stops calling SerpApi after repeated upstream failures
type BreakerClient struct {
	next    ShoppingClient
	breaker *circuitbreaker.Breaker
}

func NewBreakerClient(next ShoppingClient, breaker *circuitbreaker.Breaker) *BreakerClient {
	return &BreakerClient{next: next, breaker: breaker}
}

func (c *BreakerClient) Search(ctx context.Context, query string, num int) ([]Result, error) {
	var results []Result
	err := c.breaker.Call(func() error {
		var err error
		results, err = c.next.Search(ctx, query, num)
		return err
	}, isUpstreamFailure)
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return nil, &domain.UpstreamError{Service: "serpapi", Err: err}
	}
	return results, err
}

func isUpstreamFailure(err error) bool {
	return errors.Is(err, domain.ErrUpstreamUnavailable)
}
