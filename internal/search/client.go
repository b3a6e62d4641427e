// Package search finds products on Google Shopping through SerpApi and
// records them as the user's deck.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/styleswipe/internal/domain"
)

const (
	DefaultEndpoint = "https://serpapi.com/search"
	serviceName     = "serpapi"

	// SerpApi reports an empty result set as an error
	noResultsMessage = "hasn't returned any results"
)

var tracer = otel.Tracer("styleswipe/search")

// ErrMissingAPIKey is returned when no SerpApi key is configured
var ErrMissingAPIKey = errors.New("serpapi: api key not configured")

// Result is one item of shopping_results
type Result struct {
	ProductID      string   `json:"product_id"`
	Title          string   `json:"title"`
	Price          string   `json:"price"`
	ExtractedPrice *float64 `json:"extracted_price"`
	OldPrice       *string  `json:"old_price"`
	ProductLink    string   `json:"product_link"`
	Thumbnail      string   `json:"thumbnail"`
	Source         string   `json:"source"`
	SourceIcon     *string  `json:"source_icon"`
	Rating         *float64 `json:"rating"`
	Reviews        *int     `json:"reviews"`
	Snippet        *string  `json:"snippet"`
	Delivery       *string  `json:"delivery"`
	Tag            *string  `json:"tag"`
}

type serpResponse struct {
	Error           string   `json:"error"`
	ShoppingResults []Result `json:"shopping_results"`
}

// ShoppingClient runs one shopping query
type ShoppingClient interface {
	Search(ctx context.Context, query string, num int) ([]Result, error)
}

// ClientConfig configures the SerpApi client
type ClientConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// SerpAPIClient calls the google_shopping engine
type SerpAPIClient struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

func NewSerpAPIClient(cfg ClientConfig) *SerpAPIClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &SerpAPIClient{
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Search asks for twice num results since items without a title or
// link are dropped later.
func (c *SerpAPIClient) Search(ctx context.Context, query string, num int) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	ctx, span := tracer.Start(ctx, "serpapi.search")
	defer span.End()
	span.SetAttributes(attribute.String("search.query", query), attribute.Int("search.num", num))

	params := url.Values{
		"engine":        {"google_shopping"},
		"q":             {query},
		"api_key":       {c.apiKey},
		"num":           {strconv.Itoa(num * 2)},
		"google_domain": {"google.co.uk"},
		"gl":            {"uk"},
		"hl":            {"en"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build serpapi request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.fail(span, err)
	}
	defer resp.Body.Close()

	var body serpResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, c.fail(span, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}
	if strings.Contains(body.Error, noResultsMessage) {
		return nil, nil
	}
	if body.Error != "" {
		return nil, c.fail(span, errors.New(body.Error))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.fail(span, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	span.SetAttributes(attribute.Int("search.results", len(body.ShoppingResults)))
	return body.ShoppingResults, nil
}

func (c *SerpAPIClient) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return &domain.UpstreamError{Service: serviceName, Err: err}
}
