// Package server assembles the HTTP API: router, middleware, and the
// endpoint-to-handler mapping for both code flows.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps holds the route groups the server mounts. Each entry registers its own
// endpoints on the shared /api/v1 subrouter.
type Deps struct {
	// Challenge mounts the human-verification challenge endpoints.
	Challenge func(chi.Router)
	// Verification mounts the two-factor verification endpoints.
	Verification func(chi.Router)
	// Pinger is used by the readiness endpoint (e.g. a DB pool). If nil,
	// readiness reports ok without a storage check.
	Pinger Pinger
}

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter builds the API router with logging, panic recovery, and a request
// timeout, and mounts every configured route group under /api/v1.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if deps.Pinger != nil {
			if err := deps.Pinger.Ping(req.Context()); err != nil {
				WriteError(w, http.StatusServiceUnavailable, "store unreachable")
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		if deps.Challenge != nil {
			deps.Challenge(api)
		}
		if deps.Verification != nil {
			deps.Verification(api)
		}
	})

	return r
}
