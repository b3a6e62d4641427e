package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type countingLimiter struct {
	max  int
	seen map[string]int
	err  error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (RateLimitDecision, error) {
	if l.err != nil {
		return RateLimitDecision{}, l.err
	}
	l.seen[key]++
	n := l.seen[key]
	return RateLimitDecision{
		Allowed:   n <= l.max,
		Limit:     l.max,
		Remaining: max(l.max-n, 0),
		Reset:     time.Now().Add(time.Minute),
	}, nil
}

func TestRateLimitSavePreferences(t *testing.T) {
	limiter := &countingLimiter{max: 2, seen: map[string]int{}}
	s := newLimitedTestServer(t, nil, limiter)
	body := []byte(`{"user_folder": "nobody", "gender": "female", "size": "M", "styles": [], "clothing_types": []}`)

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/save-preferences", body, "application/json")
		if rec.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d limited too early", i)
		}
	}
	rec := s.do(t, http.MethodPost, "/save-preferences", body, "application/json")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("X-RateLimit-Remaining = %q", rec.Header().Get("X-RateLimit-Remaining"))
	}

	if rec := s.do(t, http.MethodGet, "/api/swipe/u/status", nil, ""); rec.Code != http.StatusOK {
		t.Errorf("swipe routes are not limited, got %d", rec.Code)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	s := newLimitedTestServer(t, nil, &countingLimiter{err: errors.New("redis down")})
	body := []byte(`{"user_folder": "nobody", "gender": "female", "size": "M", "styles": [], "clothing_types": []}`)
	rec := s.do(t, http.MethodPost, "/save-preferences", body, "application/json")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 from the handler", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		fwd    string
		want   string
	}{
		{name: "remote addr", remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "forwarded", remote: "10.0.0.1:5555", fwd: "203.0.113.7, 10.0.0.1", want: "203.0.113.7"},
		{name: "no port", remote: "10.0.0.2", want: "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.fwd != "" {
				r.Header.Set("X-Forwarded-For", tt.fwd)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

// memoryWindow mirrors the sorted-set semantics of redisWindow
type memoryWindow struct {
	entries map[string]map[string]time.Time
}

func (w *memoryWindow) count(_ context.Context, key string, since time.Time) (int, error) {
	for member, at := range w.entries[key] {
		if !at.After(since) {
			delete(w.entries[key], member)
		}
	}
	return len(w.entries[key]), nil
}

func (w *memoryWindow) add(_ context.Context, key, member string, at time.Time, _ time.Duration) error {
	if w.entries[key] == nil {
		w.entries[key] = map[string]time.Time{}
	}
	w.entries[key][member] = at
	return nil
}

func TestRedisRateLimiterRecordsOnlyAdmitted(t *testing.T) {
	store := &memoryWindow{entries: map[string]map[string]time.Time{}}
	rl := newRateLimiter(store, 2, time.Minute)
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	steps := []struct {
		offset  time.Duration
		allowed bool
	}{
		{0, true},
		{0, true},
		{10 * time.Second, false},
		{30 * time.Second, false},
		{59 * time.Second, false},
		// the two admitted requests have left the window; rejected retries were never recorded
		{61 * time.Second, true},
	}
	for i, st := range steps {
		rl.now = func() time.Time { return start.Add(st.offset) }
		d, err := rl.Allow(ctx, "save-preferences:203.0.113.7")
		if err != nil {
			t.Fatalf("step %d: Allow() error = %v", i, err)
		}
		if d.Allowed != st.allowed {
			t.Errorf("step %d at +%v: allowed = %v, want %v", i, st.offset, d.Allowed, st.allowed)
		}
	}

	if n := len(store.entries["ratelimit:save-preferences:203.0.113.7"]); n != 1 {
		t.Errorf("window holds %d entries, want 1", n)
	}
}
