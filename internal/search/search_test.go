package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/repository/memory"
	"github.com/tair/styleswipe/internal/storage"
)

func strPtr(s string) *string { return &s }

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name string
		pref domain.Preference
		want string
	}{
		{
			name: "all fields",
			pref: domain.Preference{
				Gender:        "female",
				Size:          "M",
				Styles:        pq.StringArray{"casual", "boho"},
				ClothingTypes: pq.StringArray{"dress"},
				Colors:        strPtr("  red, blue "),
			},
			want: "female casual boho dress red, blue size M",
		},
		{
			name: "blank colors and size",
			pref: domain.Preference{Gender: "male", ClothingTypes: pq.StringArray{"jacket"}, Colors: strPtr("  ")},
			want: "male jacket",
		},
		{name: "empty", pref: domain.Preference{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildQuery(&tt.pref); got != tt.want {
				t.Errorf("BuildQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 800, 400))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// newSerpServer serves /search with the given results and /img/* as PNG thumbnails
func newSerpServer(t *testing.T, results func(base string) []map[string]any) (*httptest.Server, *[]string) {
	t.Helper()
	thumb := pngImage(t)
	var (
		mu      sync.Mutex
		queried []string
	)
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			mu.Lock()
			queried = append(queried, r.URL.RawQuery)
			mu.Unlock()
			json.NewEncoder(w).Encode(map[string]any{"shopping_results": results(srv.URL)})
		case "/img/ok.png":
			if r.Header.Get("User-Agent") == "" {
				http.Error(w, "no agent", http.StatusForbidden)
				return
			}
			w.Write(thumb)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &queried
}

func TestSerpAPIClientParams(t *testing.T) {
	srv, queried := newSerpServer(t, func(string) []map[string]any { return nil })
	c := NewSerpAPIClient(ClientConfig{APIKey: "k", Endpoint: srv.URL + "/search"})

	if _, err := c.Search(context.Background(), "red dress", 5); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(*queried) != 1 {
		t.Fatalf("queries = %d, want 1", len(*queried))
	}
	q := (*queried)[0]
	for _, want := range []string{"engine=google_shopping", "num=10", "gl=uk", "hl=en", "google_domain=google.co.uk", "api_key=k", "q=red+dress"} {
		if !bytes.Contains([]byte(q), []byte(want)) {
			t.Errorf("query %q missing %q", q, want)
		}
	}
}

func TestSerpAPIClientErrors(t *testing.T) {
	if _, err := NewSerpAPIClient(ClientConfig{}).Search(context.Background(), "q", 5); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("missing key error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid API key"})
	}))
	defer srv.Close()

	_, err := NewSerpAPIClient(ClientConfig{APIKey: "bad", Endpoint: srv.URL}).Search(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Errorf("error body = %v, want upstream error", err)
	}
}

func TestSerpAPIClientNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "Google hasn't returned any results for this query."})
	}))
	defer srv.Close()

	res, err := NewSerpAPIClient(ClientConfig{APIKey: "k", Endpoint: srv.URL}).Search(context.Background(), "q", 5)
	if err != nil || len(res) != 0 {
		t.Errorf("Search() = %v, %v; want no results and no error", res, err)
	}
}

func TestSearcherBuildsDeck(t *testing.T) {
	srv, _ := newSerpServer(t, func(base string) []map[string]any {
		return []map[string]any{
			{"product_id": "p1", "title": "Linen Shirt", "price": "£20.00", "product_link": "https://shop/1", "thumbnail": base + "/img/ok.png", "source": "Shop"},
			{"product_id": "p2", "title": "", "product_link": "https://shop/2"},
			{"product_id": "p3", "title": "No Link"},
			{"product_id": "p4", "title": "Chinos", "extracted_price": 35.5, "product_link": "https://shop/4", "thumbnail": base + "/img/missing.png"},
			{"product_id": "p5", "title": "Blazer", "price": "£80", "product_link": "https://shop/5"},
		}
	})

	store := memory.NewStore()
	layout := storage.NewLayout(t.TempDir())
	client := NewSerpAPIClient(ClientConfig{APIKey: "k", Endpoint: srv.URL + "/search"})
	s := NewSearcher(client, store.Products(), layout, SearcherConfig{NumResults: 2})

	entries, err := s.Search(context.Background(), "user_1", "shirt", "shirt")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("kept %d entries, want 2", len(entries))
	}

	first, second := entries[0], entries[1]
	if first.ExternalID != "p1_user_1" || first.ProductType != "shirt" {
		t.Errorf("first = %+v", first)
	}
	if first.LocalImage == "" {
		t.Error("first thumbnail not saved")
	}
	if _, err := os.Stat(layout.ProductImagePath("user_1", first.ID)); err != nil {
		t.Errorf("thumbnail file: %v", err)
	}
	if second.Price != "£35.5" {
		t.Errorf("fallback price = %q, want £35.5", second.Price)
	}
	if second.LocalImage != "" {
		t.Errorf("failed download should leave local_image empty, got %q", second.LocalImage)
	}
	link, err := os.ReadFile(layout.ProductLinkPath("user_1", second.ID))
	if err != nil || string(link) != "https://shop/4" {
		t.Errorf("link file = %q, %v", link, err)
	}

	manifest, err := layout.ReadManifest("user_1")
	if err != nil || len(manifest) != 2 {
		t.Fatalf("manifest = %v, %v", manifest, err)
	}

	again, err := s.Search(context.Background(), "user_1", "shirt", "shirt")
	if err != nil {
		t.Fatalf("second Search() error = %v", err)
	}
	if again[0].ID != first.ID {
		t.Errorf("repeated search changed product id %d -> %d", first.ID, again[0].ID)
	}
}

func TestSearcherWithoutKey(t *testing.T) {
	store := memory.NewStore()
	layout := storage.NewLayout(t.TempDir())
	s := NewSearcher(NewSerpAPIClient(ClientConfig{}), store.Products(), layout, SearcherConfig{})

	entries, err := s.Search(context.Background(), "user_1", "q", "")
	if err != nil || len(entries) != 0 {
		t.Errorf("Search() = %v, %v; want empty and no error", entries, err)
	}
}

type mapCache struct {
	data map[string][]byte
	sets int
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.data[key] = value
	c.sets++
	return nil
}

type countingClient struct {
	calls int
}

func (c *countingClient) Search(context.Context, string, int) ([]Result, error) {
	c.calls++
	return []Result{{ProductID: "a", Title: "T", ProductLink: "L"}}, nil
}

func TestCachedClient(t *testing.T) {
	next := &countingClient{}
	cache := &mapCache{data: map[string][]byte{}}
	c := NewCachedClient(next, cache, time.Minute)

	for i := 0; i < 3; i++ {
		res, err := c.Search(context.Background(), "q", 5)
		if err != nil || len(res) != 1 || res[0].ProductID != "a" {
			t.Fatalf("Search() = %v, %v", res, err)
		}
	}
	if next.calls != 1 || cache.sets != 1 {
		t.Errorf("calls = %d, sets = %d; want 1 and 1", next.calls, cache.sets)
	}

	if _, err := c.Search(context.Background(), "q", 6); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Errorf("different num should miss the cache, calls = %d", next.calls)
	}
}
