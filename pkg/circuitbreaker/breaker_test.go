package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestBreaker(maxFailures int) (*Breaker, *clock) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	b := New("test", maxFailures, 30*time.Second)
	b.now = c.now
	b.lastStateChange = c.t
	return b, c
}

func fail() error    { return errBoom }
func succeed() error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(3)

	for i := 0; i < 3; i++ {
		if err := b.Call(fail, nil); !errors.Is(err, errBoom) {
			t.Fatalf("call %d error = %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("State() = %s, want open", b.State())
	}

	called := false
	err := b.Call(func() error { called = true; return nil }, nil)
	if !errors.Is(err, ErrOpen) || called {
		t.Fatalf("open circuit: err = %v, called = %v", err, called)
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b, _ := newTestBreaker(2)

	b.Call(fail, nil)
	b.Call(succeed, nil)
	b.Call(fail, nil)
	if b.State() != StateClosed {
		t.Fatalf("State() = %s, want closed", b.State())
	}
}

func TestBreakerRecovery(t *testing.T) {
	b, c := newTestBreaker(1)
	b.Call(fail, nil)
	if b.State() != StateOpen {
		t.Fatalf("State() = %s, want open", b.State())
	}

	c.t = c.t.Add(31 * time.Second)
	if err := b.Call(succeed, nil); err != nil {
		t.Fatalf("half-open call error = %v", err)
	}
	if b.State() != StateHalfOpen {
		t.Fatalf("State() = %s, want half-open", b.State())
	}

	b.Call(succeed, nil)
	b.Call(succeed, nil)
	if b.State() != StateClosed {
		t.Fatalf("State() = %s, want closed", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b, c := newTestBreaker(1)
	b.Call(fail, nil)
	c.t = c.t.Add(31 * time.Second)

	b.Call(fail, nil)
	if b.State() != StateOpen {
		t.Fatalf("State() = %s, want open", b.State())
	}
}

func TestBreakerIgnoresUncountableErrors(t *testing.T) {
	b, _ := newTestBreaker(1)
	notCounted := func(err error) bool { return false }

	for i := 0; i < 5; i++ {
		b.Call(fail, notCounted)
	}
	if b.State() != StateClosed {
		t.Fatalf("State() = %s, want closed", b.State())
	}
}

func TestDisabledBreaker(t *testing.T) {
	b := New("off", 0, time.Second)
	for i := 0; i < 10; i++ {
		b.Call(fail, nil)
	}
	if b.State() != StateClosed {
		t.Fatalf("State() = %s, want closed", b.State())
	}

	var nilBreaker *Breaker
	if err := nilBreaker.Call(succeed, nil); err != nil {
		t.Fatalf("nil breaker error = %v", err)
	}
}
