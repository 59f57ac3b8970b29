package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"security-code-service/internal/audit/domain"
	auditrepo "security-code-service/internal/audit/repository"
)

// Recorder writes a single audit event with explicit action and subject.
// Record is best-effort: failures are logged and do not affect the caller.
type Recorder interface {
	Record(ctx context.Context, action, subject, metadata string)
}

// Logger implements Recorder using the audit repository.
type Logger struct {
	repo auditrepo.Repository
}

// NewLogger returns a Recorder that persists to repo. repo may be nil; then
// Record is a no-op.
func NewLogger(repo auditrepo.Repository) *Logger {
	return &Logger{repo: repo}
}

// Record writes one audit event. Best-effort: errors are logged and not returned.
func (l *Logger) Record(ctx context.Context, action, subject, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	e := &domain.Event{
		ID:        uuid.New().String(),
		Action:    action,
		Subject:   subject,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, e); err != nil {
		log.Printf("audit: failed to record %s for %s: %v", action, subject, err)
	}
}
