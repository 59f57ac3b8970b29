// Package service implements the two-factor verification-code flow: mixed
// alphabet generation, single-active-code-per-email storage, simulated or real
// dispatch, verification with attempt limiting and expiry, and the
// "verification required" policy predicate.
package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"security-code-service/internal/audit"
	auditdomain "security-code-service/internal/audit/domain"
	"security-code-service/internal/clock"
	"security-code-service/internal/codegen"
	"security-code-service/internal/dispatch"
	"security-code-service/internal/keylock"
	"security-code-service/internal/policy"
	"security-code-service/internal/security"
	"security-code-service/internal/telemetry"
	"security-code-service/internal/verdict"
	"security-code-service/internal/verification/domain"
	"security-code-service/internal/verification/repository"
)

// DefaultMaxAttempts is the attempt ceiling; the call that pushes the count
// past it locks the record.
const DefaultMaxAttempts = 3

// Service owns verification records; no other component mutates them.
type Service struct {
	repo        repository.Repository
	clk         clock.Clock
	locks       *keylock.KeyedMutex
	dispatcher  dispatch.Dispatcher
	evaluator   policy.Evaluator
	tokens      *security.TokenProvider
	recorder    audit.Recorder
	metrics     *telemetry.Metrics
	ttl         time.Duration
	maxAttempts int
}

// NewService returns a verification service with the given dependencies.
// dispatcher nil defaults to the simulated dispatcher; evaluator nil defaults
// to the substring policy; tokens, recorder, and metrics may be nil.
func NewService(
	repo repository.Repository,
	clk clock.Clock,
	dispatcher dispatch.Dispatcher,
	evaluator policy.Evaluator,
	tokens *security.TokenProvider,
	recorder audit.Recorder,
	metrics *telemetry.Metrics,
	ttl time.Duration,
	maxAttempts int,
) *Service {
	if ttl <= 0 {
		ttl = repository.DefaultTTL
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if dispatcher == nil {
		dispatcher = dispatch.NewSimulated(0)
	}
	if evaluator == nil {
		evaluator = policy.NewSubstring("")
	}
	if recorder == nil {
		recorder = audit.NewLogger(nil)
	}
	return &Service{
		repo:        repo,
		clk:         clk,
		locks:       keylock.New(),
		dispatcher:  dispatcher,
		evaluator:   evaluator,
		tokens:      tokens,
		recorder:    recorder,
		metrics:     metrics,
		ttl:         ttl,
		maxAttempts: maxAttempts,
	}
}

// GenerateCode returns a fresh 6-character mixed-alphabet code: at least one
// digit, one letter, and one symbol from the fixed set, shuffled. Never fails.
func (s *Service) GenerateCode() string {
	return codegen.Mixed()
}

// Store persists code for email, replacing any existing record for that email.
// Starting a new flow invalidates a prior unexpired code.
func (s *Service) Store(ctx context.Context, email, code string) (*domain.Record, error) {
	email = normalizeEmail(email)
	now := s.clk.Now()
	rec := &domain.Record{
		Email:     email,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Attempts:  0,
		IsUsed:    false,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("store verification code: %w", err)
	}
	s.recorder.Record(ctx, auditdomain.ActionVerificationIssued, email, "")
	s.metrics.CodeIssued(ctx, telemetry.FlowVerification)
	return rec, nil
}

// Dispatch delivers code to email out of band. With the simulated dispatcher
// this waits the artificial delay and always reports success; a real
// dispatcher's failure propagates to the caller.
func (s *Service) Dispatch(ctx context.Context, email, code string) (bool, error) {
	email = normalizeEmail(email)
	ok, err := s.dispatcher.Send(ctx, email, code)
	if err != nil {
		return false, fmt.Errorf("dispatch verification code: %w", err)
	}
	if ok {
		s.recorder.Record(ctx, auditdomain.ActionVerificationSent, email, "")
	}
	return ok, nil
}

// Issue runs the full issuing flow: generate, store, dispatch. The record is
// stored before dispatch, so a dispatch failure leaves a valid code in place;
// the error is returned for the caller to surface or retry.
func (s *Service) Issue(ctx context.Context, email string) (*domain.Record, error) {
	code := s.GenerateCode()
	rec, err := s.Store(ctx, email, code)
	if err != nil {
		return nil, err
	}
	if _, err := s.Dispatch(ctx, rec.Email, code); err != nil {
		return rec, err
	}
	return rec, nil
}

// Verify checks input against the stored code for email. Verification failures
// are returned as verdict values; the error is non-nil only for storage
// failures. On success, a proof token is returned when a token provider is
// configured. Any record mutation is persisted before returning.
func (s *Service) Verify(ctx context.Context, email, input string) (verdict.Result, string, error) {
	email = normalizeEmail(email)
	unlock := s.locks.Lock(email)
	defer unlock()

	res, err := s.verifyLocked(ctx, email, input)
	if err != nil {
		return res, "", err
	}
	s.metrics.VerifyOutcome(ctx, telemetry.FlowVerification, res.Kind)

	if res.Kind != verdict.Success || s.tokens == nil {
		return res, "", nil
	}
	token, _, err := s.tokens.IssueProof(email)
	if err != nil {
		// The verification itself succeeded and is already persisted;
		// the missing proof token is reported, not rolled back.
		return res, "", fmt.Errorf("issue proof token: %w", err)
	}
	return res, token, nil
}

func (s *Service) verifyLocked(ctx context.Context, email, input string) (verdict.Result, error) {
	rec, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return verdict.Result{}, fmt.Errorf("load verification code: %w", err)
	}
	if rec == nil {
		return verdict.Result{Kind: verdict.NotFound}, nil
	}
	if rec.IsUsed {
		return verdict.Result{Kind: verdict.AlreadyUsed}, nil
	}
	if rec.Expired(s.clk.Now()) {
		return verdict.Result{Kind: verdict.Expired}, nil
	}

	rec.Attempts++
	if rec.Attempts > s.maxAttempts {
		rec.IsUsed = true
		if err := s.repo.Save(ctx, rec); err != nil {
			return verdict.Result{}, fmt.Errorf("persist lockout: %w", err)
		}
		s.recorder.Record(ctx, auditdomain.ActionVerificationLocked, email, "")
		return verdict.Result{Kind: verdict.TooManyAttempts}, nil
	}

	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(input)), []byte(rec.Code)) != 1 {
		if err := s.repo.Save(ctx, rec); err != nil {
			return verdict.Result{}, fmt.Errorf("persist attempt: %w", err)
		}
		return verdict.Result{Kind: verdict.Mismatch, Remaining: s.maxAttempts - rec.Attempts}, nil
	}

	rec.IsUsed = true
	if err := s.repo.Save(ctx, rec); err != nil {
		return verdict.Result{}, fmt.Errorf("persist success: %w", err)
	}
	s.recorder.Record(ctx, auditdomain.ActionVerificationDone, email, "")
	return verdict.Result{Kind: verdict.Success}, nil
}

// Required reports whether email must complete two-factor verification.
func (s *Service) Required(email string) bool {
	return s.evaluator.Required(normalizeEmail(email))
}

// Now reports the service clock's current time.
func (s *Service) Now() time.Time {
	return s.clk.Now()
}

// CleanupExpired deletes every stored record whose expiry has passed,
// regardless of IsUsed. Safe to call at any time; idempotent.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.clk.Now())
	if err != nil {
		return 0, fmt.Errorf("cleanup verification codes: %w", err)
	}
	if n > 0 {
		s.recorder.Record(ctx, auditdomain.ActionExpiredCleanup, telemetry.FlowVerification, fmt.Sprintf("removed=%d", n))
	}
	s.metrics.Swept(ctx, telemetry.FlowVerification, n)
	return n, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
