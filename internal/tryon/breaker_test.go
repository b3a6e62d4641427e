package tryon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/pkg/circuitbreaker"
)

type upstreamDown struct{ calls int }

func (m *upstreamDown) Generate(context.Context, Image, Image, string) ([]Image, error) {
	m.calls++
	return nil, &domain.UpstreamError{Service: "gemini", Err: errors.New("429")}
}

func TestBreakerModel(t *testing.T) {
	next := &upstreamDown{}
	m := NewBreakerModel(next, circuitbreaker.New("gemini", 3, time.Minute))

	for i := 0; i < 6; i++ {
		if _, err := m.Generate(context.Background(), Image{}, Image{}, "p"); err == nil {
			t.Fatalf("call %d error = nil", i)
		}
	}
	if next.calls != 3 {
		t.Errorf("model calls = %d, want 3", next.calls)
	}
	_, err := m.Generate(context.Background(), Image{}, Image{}, "p")
	if !errors.Is(err, circuitbreaker.ErrOpen) {
		t.Errorf("open breaker error = %v", err)
	}
}
