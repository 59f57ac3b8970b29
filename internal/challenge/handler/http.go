// Package handler exposes the human-verification challenge flow over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"security-code-service/internal/challenge/domain"
	"security-code-service/internal/challenge/service"
	"security-code-service/internal/countdown"
	"security-code-service/internal/server"
)

// Handler serves the challenge endpoints.
type Handler struct {
	svc *service.Service
}

// New returns a challenge HTTP handler backed by svc.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the challenge endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/challenges", h.create)
	r.Post("/challenges/refresh", h.refresh)
	r.Post("/challenges/{id}/verify", h.verify)
}

type challengeResponse struct {
	ID               string `json:"id"`
	Display          string `json:"display"`
	ExpiresAt        string `json:"expires_at"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

type verifyRequest struct {
	Answer string `json:"answer"`
}

type verifyResponse struct {
	Verdict         string `json:"verdict"`
	Message         string `json:"message"`
	Remaining       int    `json:"remaining,omitempty"`
	RefreshRequired bool   `json:"refresh_required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Create(r.Context())
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, "could not create challenge")
		return
	}
	server.WriteJSON(w, http.StatusCreated, h.toResponse(c))
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := h.svc.Refresh(r.Context(), req.ID)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, "could not refresh challenge")
		return
	}
	server.WriteJSON(w, http.StatusCreated, h.toResponse(c))
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req verifyRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Verify(r.Context(), id, req.Answer)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, "could not verify challenge")
		return
	}
	server.WriteJSON(w, server.StatusForVerdict(res.Kind), verifyResponse{
		Verdict:         res.Kind.String(),
		Message:         res.Message(),
		Remaining:       res.Remaining,
		RefreshRequired: countdown.ShouldRefresh(res.Kind),
	})
}

func (h *Handler) toResponse(c *domain.Challenge) challengeResponse {
	now := h.svc.Now()
	return challengeResponse{
		ID:               c.ID,
		Display:          c.Display,
		ExpiresAt:        c.ExpiresAt.Format(timeFormat),
		ExpiresInSeconds: countdown.Remaining(now, c.ExpiresAt),
	}
}

const timeFormat = time.RFC3339
