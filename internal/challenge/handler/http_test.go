package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"security-code-service/internal/challenge/repository"
	"security-code-service/internal/challenge/service"
	"security-code-service/internal/clock"
)

func newTestRouter(t *testing.T) (*chi.Mux, *repository.MemoryRepository, *clock.Fake) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	clk := clock.NewFake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := service.NewService(repo, clk, nil, nil, 0, 0)
	r := chi.NewRouter()
	r.Route("/api/v1", New(svc).Routes)
	return r, repo, clk
}

func TestCreate_ReturnsChallenge(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var resp struct {
		ID               string `json:"id"`
		Display          string `json:"display"`
		ExpiresInSeconds int64  `json:"expires_in_seconds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID == "" {
		t.Error("response should include an id")
	}
	if resp.Display == "" || !strings.ContainsAny(resp.Display, "0123456789") {
		t.Errorf("display = %q, want spaced digits", resp.Display)
	}
	if resp.ExpiresInSeconds != 600 {
		t.Errorf("expires_in_seconds = %d, want 600", resp.ExpiresInSeconds)
	}
}

func TestVerify_SuccessAndStatusMapping(t *testing.T) {
	r, repo, _ := newTestRouter(t)

	// Create through the API, then read the answer from the store.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges", nil))
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), created.ID)
	if stored == nil {
		t.Fatal("challenge not stored")
	}

	body := strings.NewReader(`{"answer":"` + stored.Answer + `"}`)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges/"+created.ID+"/verify", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Verdict         string `json:"verdict"`
		RefreshRequired bool   `json:"refresh_required"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Verdict != "success" {
		t.Errorf("verdict = %q, want success", resp.Verdict)
	}
	if resp.RefreshRequired {
		t.Error("refresh_required should be false on success")
	}
}

func TestVerify_MismatchIncludesRemaining(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges", nil))
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges/"+created.ID+"/verify",
		strings.NewReader(`{"answer":"000000"}`)))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp struct {
		Verdict   string `json:"verdict"`
		Remaining int    `json:"remaining"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Verdict != "mismatch" || resp.Remaining != 2 {
		t.Errorf("got %+v, want mismatch with 2 remaining", resp)
	}
}

func TestVerify_UnknownIDReturns404(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges/nope/verify",
		strings.NewReader(`{"answer":"123456"}`)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestVerify_ExpiredReturns410AndRefreshFlag(t *testing.T) {
	r, repo, clk := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges", nil))
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	stored, _ := repo.GetByID(context.Background(), created.ID)

	clk.Set(stored.ExpiresAt.Add(time.Millisecond))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges/"+created.ID+"/verify",
		strings.NewReader(`{"answer":"`+stored.Answer+`"}`)))

	if rec.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", rec.Code)
	}
	var resp struct {
		RefreshRequired bool `json:"refresh_required"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.RefreshRequired {
		t.Error("refresh_required should be true for an expired challenge")
	}
}

func TestRefresh_ReplacesChallenge(t *testing.T) {
	r, repo, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges", nil))
	var created struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges/refresh",
		strings.NewReader(`{"id":"`+created.ID+`"}`)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var refreshed struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &refreshed)
	if refreshed.ID == created.ID {
		t.Error("refresh should mint a new id")
	}
	old, _ := repo.GetByID(context.Background(), created.ID)
	if old != nil {
		t.Error("old challenge should be deleted on refresh")
	}
}

func TestVerify_MalformedBodyReturns400(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/challenges/x/verify",
		strings.NewReader(`{not json`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
