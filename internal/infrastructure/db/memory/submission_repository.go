package memory

import (
	"context"
	"sync"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/ports"
)

// maxSubmissions bounds the in-memory audit trail; older records are dropped.
const maxSubmissions = 10000

// SubmissionRepository keeps the most recent audit records in memory.
type SubmissionRepository struct {
	mu   sync.Mutex
	recs []domain.SubmissionRecord
}

var _ ports.SubmissionRepository = (*SubmissionRepository)(nil)

func NewSubmissionRepository() *SubmissionRepository {
	return &SubmissionRepository{}
}

func (r *SubmissionRepository) Insert(_ context.Context, rec *domain.SubmissionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recs = append(r.recs, *rec)
	if over := len(r.recs) - maxSubmissions; over > 0 {
		r.recs = append(r.recs[:0:0], r.recs[over:]...)
	}
	return nil
}

func (r *SubmissionRepository) ListByWizard(_ context.Context, wizardID string) ([]domain.SubmissionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SubmissionRecord
	for _, rec := range r.recs {
		if rec.WizardID == wizardID {
			out = append(out, rec)
		}
	}
	return out, nil
}
