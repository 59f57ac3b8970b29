package audit

import (
	"context"
	"testing"

	"security-code-service/internal/audit/domain"
	auditrepo "security-code-service/internal/audit/repository"
)

func TestRecord_PersistsEvent(t *testing.T) {
	repo := auditrepo.NewMemoryRepository()
	logger := NewLogger(repo)
	ctx := context.Background()

	logger.Record(ctx, domain.ActionChallengeCreated, "ch-1", "")

	events, err := repo.ListBySubject(ctx, "ch-1", 10)
	if err != nil {
		t.Fatalf("ListBySubject: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Action != domain.ActionChallengeCreated {
		t.Errorf("action = %q, want %q", e.Action, domain.ActionChallengeCreated)
	}
	if e.ID == "" {
		t.Error("event ID should be set")
	}
	if e.CreatedAt.IsZero() {
		t.Error("event CreatedAt should be set")
	}
}

func TestRecord_NilRepoIsNoop(t *testing.T) {
	logger := NewLogger(nil)
	logger.Record(context.Background(), domain.ActionChallengeVerified, "ch-1", "")
}

func TestRecord_NilLoggerIsNoop(t *testing.T) {
	var logger *Logger
	logger.Record(context.Background(), domain.ActionChallengeVerified, "ch-1", "")
}

func TestListBySubject_NewestFirstAndLimited(t *testing.T) {
	repo := auditrepo.NewMemoryRepository()
	logger := NewLogger(repo)
	ctx := context.Background()

	logger.Record(ctx, domain.ActionChallengeCreated, "ch-1", "")
	logger.Record(ctx, domain.ActionChallengeVerified, "ch-1", "")
	logger.Record(ctx, domain.ActionChallengeLocked, "ch-1", "")
	logger.Record(ctx, domain.ActionChallengeCreated, "ch-2", "")

	events, err := repo.ListBySubject(ctx, "ch-1", 2)
	if err != nil {
		t.Fatalf("ListBySubject: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Action != domain.ActionChallengeLocked {
		t.Errorf("first event = %q, want newest (%q)", events[0].Action, domain.ActionChallengeLocked)
	}
}
