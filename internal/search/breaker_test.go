package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/pkg/circuitbreaker"
)

type failingClient struct {
	calls int
	err   error
}

func (c *failingClient) Search(context.Context, string, int) ([]Result, error) {
	c.calls++
	return nil, c.err
}

func TestBreakerClientOpensOnUpstreamErrors(t *testing.T) {
	next := &failingClient{err: &domain.UpstreamError{Service: "serpapi", Err: errors.New("503")}}
	c := NewBreakerClient(next, circuitbreaker.New("serpapi", 2, time.Minute))

	for i := 0; i < 4; i++ {
		_, err := c.Search(context.Background(), "q", 5)
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			t.Fatalf("call %d error = %v, want upstream", i, err)
		}
	}
	if next.calls != 2 {
		t.Errorf("upstream calls = %d, want 2", next.calls)
	}
}

func TestBreakerClientIgnoresMissingKey(t *testing.T) {
	next := &failingClient{err: ErrMissingAPIKey}
	c := NewBreakerClient(next, circuitbreaker.New("serpapi", 1, time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), "q", 5); !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("call %d error = %v", i, err)
		}
	}
	if next.calls != 3 {
		t.Errorf("upstream calls = %d, want 3", next.calls)
	}
}
