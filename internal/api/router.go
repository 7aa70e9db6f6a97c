package api

import (
	"net/http"

	mw "github.com/fromscratch/blueprint/internal/api/middleware"
	"github.com/fromscratch/blueprint/internal/api/response"
	"github.com/go-chi/chi/v5"
)

// Dependencies holds all handler dependencies for the router.
type Dependencies struct {
	HealthHandler   http.HandlerFunc
	GenerateHandler http.HandlerFunc
	GetRunHandler   http.HandlerFunc
	ListRunsHandler http.HandlerFunc
	GetProject      http.HandlerFunc
	RunSocket       http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Post("/api/v1/idea/generate", orNotImplemented(deps.GenerateHandler))

	r.Get("/api/v1/runs", orNotImplemented(deps.ListRunsHandler))
	r.Get("/api/v1/runs/{runID}", orNotImplemented(deps.GetRunHandler))

	r.Get("/api/v1/projects/{projectID}", orNotImplemented(deps.GetProject))

	// Status relay lives outside the versioned prefix so clients can use
	// the websocket_url from the generate response as-is.
	r.Get("/ws/run/{runID}", orNotImplemented(deps.RunSocket))

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
