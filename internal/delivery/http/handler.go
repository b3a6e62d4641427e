// Package http exposes the StyleSwipe REST API.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tair/styleswipe/internal/domain"
	"github.com/tair/styleswipe/internal/metrics"
	"github.com/tair/styleswipe/internal/storage"
	"github.com/tair/styleswipe/internal/swipe"
	"github.com/tair/styleswipe/internal/usecase/command"
	"github.com/tair/styleswipe/internal/usecase/query"
)

const (
	maxUploadMemory = 32 << 20
	maxImageBytes   = 25 << 20

	banner = "StyleSwipe API - Use POST /upload-images to upload front, side, and back images"
)

// Pinger reports database reachability for the health check
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler handles HTTP requests for the StyleSwipe API
type Handler struct {
	uploadImagesHandler    *command.UploadImagesHandler
	savePreferencesHandler *command.SavePreferencesHandler
	recordSwipeHandler     *command.RecordSwipeHandler
	resetSwipesHandler     *command.ResetSwipesHandler
	trackClickHandler      *command.TrackClickHandler

	listCardsHandler *query.ListCardsHandler
	nextCardHandler  *query.NextCardHandler
	getStatusHandler *query.GetStatusHandler
	listLikedHandler *query.ListLikedHandler

	layout   *storage.Layout
	metrics  *metrics.HTTPMetrics
	gatherer prometheus.Gatherer
	db       Pinger
	limiter  RateLimiter
}

// NewHandler creates a new HTTP handler
func NewHandler(
	uploadImagesHandler *command.UploadImagesHandler,
	savePreferencesHandler *command.SavePreferencesHandler,
	recordSwipeHandler *command.RecordSwipeHandler,
	resetSwipesHandler *command.ResetSwipesHandler,
	trackClickHandler *command.TrackClickHandler,
	listCardsHandler *query.ListCardsHandler,
	nextCardHandler *query.NextCardHandler,
	getStatusHandler *query.GetStatusHandler,
	listLikedHandler *query.ListLikedHandler,
	layout *storage.Layout,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	db Pinger,
	limiter RateLimiter,
) *Handler {
	return &Handler{
		uploadImagesHandler:    uploadImagesHandler,
		savePreferencesHandler: savePreferencesHandler,
		recordSwipeHandler:     recordSwipeHandler,
		resetSwipesHandler:     resetSwipesHandler,
		trackClickHandler:      trackClickHandler,
		listCardsHandler:       listCardsHandler,
		nextCardHandler:        nextCardHandler,
		getStatusHandler:       getStatusHandler,
		listLikedHandler:       listLikedHandler,
		layout:                 layout,
		metrics:                httpMetrics,
		gatherer:               gatherer,
		db:                     db,
		limiter:                limiter,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.metricsMiddleware("root", h.Root)).Methods(http.MethodGet)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	router.HandleFunc("/upload-images", h.metricsMiddleware("upload_images", h.rateLimitMiddleware("upload_images", h.UploadImages))).Methods(http.MethodPost)
	router.HandleFunc("/save-preferences", h.metricsMiddleware("save_preferences", h.rateLimitMiddleware("save_preferences", h.SavePreferences))).Methods(http.MethodPost)

	sw := router.PathPrefix("/api/swipe").Subrouter()
	sw.HandleFunc("/{user_folder:.+}/products", h.metricsMiddleware("swipe_products", h.ListProducts)).Methods(http.MethodGet)
	sw.HandleFunc("/{user_folder:.+}/next", h.metricsMiddleware("swipe_next", h.NextProduct)).Methods(http.MethodGet)
	sw.HandleFunc("/{user_folder:.+}/action", h.metricsMiddleware("swipe_action", h.SwipeAction)).Methods(http.MethodPost)
	sw.HandleFunc("/{user_folder:.+}/status", h.metricsMiddleware("swipe_status", h.SwipeStatus)).Methods(http.MethodGet)
	sw.HandleFunc("/{user_folder:.+}/liked", h.metricsMiddleware("swipe_liked", h.LikedProducts)).Methods(http.MethodGet)
	sw.HandleFunc("/{user_folder:.+}/reset", h.metricsMiddleware("swipe_reset", h.ResetSwipes)).Methods(http.MethodPost)

	router.HandleFunc("/api/product/click", h.metricsMiddleware("product_click", h.TrackClick)).Methods(http.MethodPost)
	router.HandleFunc("/api/image/{path:.+}", h.metricsMiddleware("image", h.ServeImage)).Methods(http.MethodGet)
}

// metricsMiddleware wraps handler with metrics collection
func (h *Handler) metricsMiddleware(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(wrapped, r)
		h.metrics.Observe(endpoint, r.Method, wrapped.statusCode, time.Since(start))
	}
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": banner})
}

// Health pings the database
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type uploadImagesResponse struct {
	Message string `json:"message"`
	*command.UploadImagesResult
}

// UploadImages accepts the multipart front, side and back photos
func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, r, domain.NewValidation("invalid multipart form: %v", err), "")
		return
	}

	cmd := command.UploadImagesCommand{
		UserFolder: r.FormValue("user_id"),
		Images:     make(map[domain.Angle][]byte, len(domain.Angles)),
	}
	for _, angle := range domain.Angles {
		data, err := readFormFile(r, string(angle))
		if err != nil {
			respondError(w, r, err, "Failed to read upload")
			return
		}
		cmd.Images[angle] = data
	}

	result, err := h.uploadImagesHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err, "Failed to upload images")
		return
	}
	respondJSON(w, http.StatusOK, uploadImagesResponse{
		Message:            "Images uploaded and compressed successfully",
		UploadImagesResult: result,
	})
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, domain.NewValidation("%s image is required", field)
	}
	if err != nil {
		return nil, domain.NewValidation("invalid %s image: %v", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s image: %w", field, err)
	}
	if len(data) > maxImageBytes {
		return nil, domain.NewValidation("%s image is too large", field)
	}
	return data, nil
}

type savePreferencesResponse struct {
	Message string `json:"message"`
	*command.SavePreferencesResult
}

// SavePreferences stores preferences and builds the deck
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var cmd command.SavePreferencesCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, r, domain.NewValidation("invalid request body"), "")
		return
	}

	result, err := h.savePreferencesHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err, "Failed to save preferences")
		return
	}
	respondJSON(w, http.StatusOK, savePreferencesResponse{
		Message:               "Preferences saved successfully",
		SavePreferencesResult: result,
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	cards, err := h.listCardsHandler.Handle(r.Context(), query.ListCardsQuery{UserFolder: mux.Vars(r)["user_folder"]})
	if err != nil {
		respondError(w, r, err, "Failed to list products")
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Products []swipe.Card `json:"products"`
		Total    int          `json:"total"`
	}{cards, len(cards)})
}

func (h *Handler) NextProduct(w http.ResponseWriter, r *http.Request) {
	result, err := h.nextCardHandler.Handle(r.Context(), query.NextCardQuery{UserFolder: mux.Vars(r)["user_folder"]})
	if err != nil {
		respondError(w, r, err, "Failed to get next product")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type swipeRequest struct {
	ProductID *uint `json:"product_id"`
	Liked     *bool `json:"liked"`
}

func (h *Handler) SwipeAction(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == nil || req.Liked == nil {
		respondError(w, r, domain.NewValidation("product_id and liked are required"), "")
		return
	}

	result, err := h.recordSwipeHandler.Handle(r.Context(), command.RecordSwipeCommand{
		UserFolder: mux.Vars(r)["user_folder"],
		ProductID:  *req.ProductID,
		Liked:      *req.Liked,
	})
	if err != nil {
		respondError(w, r, err, "Failed to record swipe")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *Handler) SwipeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.getStatusHandler.Handle(r.Context(), query.GetStatusQuery{UserFolder: mux.Vars(r)["user_folder"]})
	if err != nil {
		respondError(w, r, err, "Failed to get swipe status")
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *Handler) LikedProducts(w http.ResponseWriter, r *http.Request) {
	liked, err := h.listLikedHandler.Handle(r.Context(), query.ListLikedQuery{UserFolder: mux.Vars(r)["user_folder"]})
	if err != nil {
		respondError(w, r, err, "Failed to list liked products")
		return
	}
	respondJSON(w, http.StatusOK, struct {
		LikedProducts []swipe.LikedCard `json:"liked_products"`
		Total         int               `json:"total"`
	}{liked, len(liked)})
}

func (h *Handler) ResetSwipes(w http.ResponseWriter, r *http.Request) {
	result, err := h.resetSwipesHandler.Handle(r.Context(), command.ResetSwipesCommand{UserFolder: mux.Vars(r)["user_folder"]})
	if err != nil {
		respondError(w, r, err, "Failed to reset swipes")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type clickRequest struct {
	ProductID *uint  `json:"product_id"`
	Referrer  string `json:"referrer"`
}

// TrackClick records a click on a purchase link
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == nil {
		respondError(w, r, domain.NewValidation("product_id is required"), "")
		return
	}

	result, err := h.trackClickHandler.Handle(r.Context(), command.TrackClickCommand{
		ProductID:  *req.ProductID,
		Referrer:   req.Referrer,
		UserFolder: r.URL.Query().Get("user_folder"),
	})
	if err != nil {
		respondError(w, r, err, "Failed to track click")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ServeImage serves a file under the images root
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	path, err := h.layout.Resolve(mux.Vars(r)["path"])
	if err != nil {
		respondError(w, r, err, "Failed to serve image")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}
