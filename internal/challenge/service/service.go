// Package service implements the numeric security-challenge flow: generation,
// verification with attempt limiting and expiry, refresh, and cleanup.
package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"security-code-service/internal/audit"
	auditdomain "security-code-service/internal/audit/domain"
	"security-code-service/internal/challenge/domain"
	"security-code-service/internal/challenge/repository"
	"security-code-service/internal/clock"
	"security-code-service/internal/codegen"
	"security-code-service/internal/keylock"
	"security-code-service/internal/telemetry"
	"security-code-service/internal/verdict"
)

// DefaultMaxAttempts is the attempt ceiling; the call that pushes the count
// past it locks the record.
const DefaultMaxAttempts = 3

const idSuffixLength = 8

// Generated holds a freshly generated challenge before it is persisted.
type Generated struct {
	ID      string
	Answer  string
	Display string
}

// Service owns challenge records; no other component mutates them.
type Service struct {
	repo        repository.Repository
	clk         clock.Clock
	locks       *keylock.KeyedMutex
	recorder    audit.Recorder
	metrics     *telemetry.Metrics
	ttl         time.Duration
	maxAttempts int
}

// NewService returns a challenge service with the given dependencies.
// recorder and metrics may be nil. ttl <= 0 falls back to repository.DefaultTTL
// and maxAttempts <= 0 to DefaultMaxAttempts.
func NewService(repo repository.Repository, clk clock.Clock, recorder audit.Recorder, metrics *telemetry.Metrics, ttl time.Duration, maxAttempts int) *Service {
	if ttl <= 0 {
		ttl = repository.DefaultTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if recorder == nil {
		recorder = audit.NewLogger(nil)
	}
	return &Service{
		repo:        repo,
		clk:         clk,
		locks:       keylock.New(),
		recorder:    recorder,
		metrics:     metrics,
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
}

// Generate produces a fresh 6-digit answer, its display rendering, and a new
// record identifier (millisecond-time prefix + random suffix). Never fails.
func (s *Service) Generate() Generated {
	answer := codegen.Numeric()
	id := fmt.Sprintf("%d-%s", s.clk.Now().UnixMilli(), codegen.Suffix(idSuffixLength))
	return Generated{
		ID:      id,
		Answer:  answer,
		Display: codegen.Display(answer),
	}
}

// Create generates a challenge, persists it keyed by its ID, and returns the
// full record.
func (s *Service) Create(ctx context.Context) (*domain.Challenge, error) {
	g := s.Generate()
	now := s.clk.Now()
	c := &domain.Challenge{
		ID:        g.ID,
		Answer:    g.Answer,
		Display:   g.Display,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Attempts:  0,
		IsUsed:    false,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}
	s.recorder.Record(ctx, auditdomain.ActionChallengeCreated, c.ID, "")
	s.metrics.CodeIssued(ctx, telemetry.FlowChallenge)
	return c, nil
}

// Verify checks input against the challenge for id. Verification failures are
// returned as verdict values; the error is non-nil only for storage failures.
// Any mutation to the record (attempt increments, lockout, consumption) is
// persisted before returning.
func (s *Service) Verify(ctx context.Context, id, input string) (verdict.Result, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	res, err := s.verifyLocked(ctx, id, input)
	if err != nil {
		return res, err
	}
	s.metrics.VerifyOutcome(ctx, telemetry.FlowChallenge, res.Kind)
	return res, nil
}

func (s *Service) verifyLocked(ctx context.Context, id, input string) (verdict.Result, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return verdict.Result{}, fmt.Errorf("load challenge: %w", err)
	}
	if c == nil {
		return verdict.Result{Kind: verdict.NotFound}, nil
	}
	if c.IsUsed {
		return verdict.Result{Kind: verdict.AlreadyUsed}, nil
	}
	if c.Expired(s.clk.Now()) {
		return verdict.Result{Kind: verdict.Expired}, nil
	}

	c.Attempts++
	if c.Attempts > s.maxAttempts {
		c.IsUsed = true
		if err := s.repo.Save(ctx, c); err != nil {
			return verdict.Result{}, fmt.Errorf("persist lockout: %w", err)
		}
		s.recorder.Record(ctx, auditdomain.ActionChallengeLocked, c.ID, "")
		return verdict.Result{Kind: verdict.TooManyAttempts}, nil
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(input)), []byte(c.Answer)) != 1 {
		if err := s.repo.Save(ctx, c); err != nil {
			return verdict.Result{}, fmt.Errorf("persist attempt: %w", err)
		}
		return verdict.Result{Kind: verdict.Mismatch, Remaining: s.maxAttempts - c.Attempts}, nil
	}

	c.IsUsed = true
	if err := s.repo.Save(ctx, c); err != nil {
		return verdict.Result{}, fmt.Errorf("persist success: %w", err)
	}
	s.recorder.Record(ctx, auditdomain.ActionChallengeVerified, c.ID, "")
	return verdict.Result{Kind: verdict.Success}, nil
}

// Refresh deletes the old record (if oldID is set and present) and creates a
// fresh challenge. Used for user-requested refresh and for auto-refresh after
// expiry or lockout.
func (s *Service) Refresh(ctx context.Context, oldID string) (*domain.Challenge, error) {
	if oldID != "" {
		if err := s.repo.Delete(ctx, oldID); err != nil {
			return nil, fmt.Errorf("delete old challenge: %w", err)
		}
		s.recorder.Record(ctx, auditdomain.ActionChallengeRefreshed, oldID, "")
	}
	return s.Create(ctx)
}

// Now reports the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clk.Now()
}

// CleanupExpired deletes every stored challenge whose expiry has passed,
// regardless of IsUsed. Safe to call at any time; idempotent.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.clk.Now())
	if err != nil {
		return 0, fmt.Errorf("cleanup challenges: %w", err)
	}
	if n > 0 {
		s.recorder.Record(ctx, auditdomain.ActionExpiredCleanup, telemetry.FlowChallenge, fmt.Sprintf("removed=%d", n))
	}
	s.metrics.Swept(ctx, telemetry.FlowChallenge, n)
	return n, nil
}
