package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/permission"
	"github.com/aimatch/portal/internal/core/ports"
)

// SubmissionService exposes the submission audit trail to platform admins.
type SubmissionService struct {
	repo   ports.SubmissionRepository
	logger zerolog.Logger
}

func NewSubmissionService(repo ports.SubmissionRepository, logger zerolog.Logger) *SubmissionService {
	return &SubmissionService{repo: repo, logger: logger}
}

// History lists the submit attempts of one wizard, oldest first.
func (s *SubmissionService) History(ctx context.Context, sess domain.Session, wizardID string) ([]domain.SubmissionRecord, error) {
	if !permission.Resolve(sess).CanViewPlatformStats {
		return nil, domain.ErrForbidden
	}
	if wizardID == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"wizard_id": "wizard_id is required"}}
	}

	recs, err := s.repo.ListByWizard(ctx, wizardID)
	if err != nil {
		return nil, fmt.Errorf("list submissions of %s: %w", wizardID, err)
	}
	if recs == nil {
		recs = []domain.SubmissionRecord{}
	}
	return recs, nil
}
