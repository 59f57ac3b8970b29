// Package handler exposes the two-factor verification flow over HTTP.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"security-code-service/internal/countdown"
	"security-code-service/internal/server"
	"security-code-service/internal/verification/service"
)

// Handler serves the verification-code endpoints.
type Handler struct {
	svc *service.Service
}

// New returns a verification HTTP handler backed by svc.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the verification endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/verification-codes", h.issue)
	r.Post("/verification-codes/verify", h.verify)
	r.Get("/verification-codes/required", h.required)
}

type issueRequest struct {
	Email string `json:"email"`
}

type issueResponse struct {
	Email            string `json:"email"`
	ExpiresAt        string `json:"expires_at"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyResponse struct {
	Verdict         string `json:"verdict"`
	Message         string `json:"message"`
	Remaining       int    `json:"remaining,omitempty"`
	RefreshRequired bool   `json:"refresh_required"`
	ProofToken      string `json:"proof_token,omitempty"`
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		server.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	rec, err := h.svc.Issue(r.Context(), req.Email)
	if err != nil {
		server.WriteError(w, http.StatusBadGateway, "could not deliver verification code")
		return
	}
	server.WriteJSON(w, http.StatusAccepted, issueResponse{
		Email:            rec.Email,
		ExpiresAt:        rec.ExpiresAt.Format(time.RFC3339),
		ExpiresInSeconds: countdown.Remaining(h.svc.Now(), rec.ExpiresAt),
	})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := server.DecodeJSON(r, &req); err != nil {
		server.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		server.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	res, token, err := h.svc.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		server.WriteError(w, http.StatusInternalServerError, "could not verify code")
		return
	}
	server.WriteJSON(w, server.StatusForVerdict(res.Kind), verifyResponse{
		Verdict:         res.Kind.String(),
		Message:         res.Message(),
		Remaining:       res.Remaining,
		RefreshRequired: countdown.ShouldRefresh(res.Kind),
		ProofToken:      token,
	})
}

func (h *Handler) required(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if strings.TrimSpace(email) == "" {
		server.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}
	server.WriteJSON(w, http.StatusOK, map[string]bool{
		"required": h.svc.Required(email),
	})
}
