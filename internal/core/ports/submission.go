package ports

import (
	"context"
	"time"

	"github.com/aimatch/portal/internal/core/domain"
)

// SubmissionRepository persists the submission audit trail.
type SubmissionRepository interface {
	Insert(ctx context.Context, rec *domain.SubmissionRecord) error
	ListByWizard(ctx context.Context, wizardID string) ([]domain.SubmissionRecord, error)
}

// SubmissionAuditor accepts audit records without blocking the caller.
type SubmissionAuditor interface {
	Record(rec domain.SubmissionRecord)
}

// SubmitLocker guards a draft against concurrent submission across replicas.
type SubmitLocker interface {
	// Acquire reports false when another holder owns key.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
