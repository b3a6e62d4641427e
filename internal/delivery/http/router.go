package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter builds the routed, middleware-wrapped API handler
func NewRouter(h *Handler, config MiddlewareConfig) http.Handler {
	router := mux.NewRouter()
	RegisterMiddlewares(router, config)
	h.RegisterRoutes(router)
	return WithCORS(router, config)
}
