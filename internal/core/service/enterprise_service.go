package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/permission"
	"github.com/aimatch/portal/internal/core/ports"
)

// EnterpriseService proxies enterprise reads and admin actions to the
// marketplace after checking the session's capabilities.
type EnterpriseService struct {
	api    ports.MarketplaceAPI
	logger zerolog.Logger
}

func NewEnterpriseService(api ports.MarketplaceAPI, logger zerolog.Logger) *EnterpriseService {
	return &EnterpriseService{api: api, logger: logger}
}

func (s *EnterpriseService) Get(ctx context.Context, sess domain.Session, id domain.EnterpriseID) (*domain.Enterprise, error) {
	if !permission.Resolve(sess).CanViewEnterprise(id) {
		return nil, domain.ErrForbidden
	}
	return s.api.GetEnterprise(ctx, sess.Token, id)
}

// CanCreateDemand combines the local capability with the marketplace's
// qualification gate. A role without the capability gets a negative answer
// without a remote call.
func (s *EnterpriseService) CanCreateDemand(ctx context.Context, sess domain.Session, id domain.EnterpriseID) (*domain.DemandGate, error) {
	caps := permission.Resolve(sess)
	if !caps.CanCreateDemand {
		return &domain.DemandGate{CanCreate: false, Reason: "role cannot publish demands"}, nil
	}
	if !caps.CanModifyEnterprise(id) {
		return nil, domain.ErrForbidden
	}
	return s.api.CanCreateDemand(ctx, sess.Token, id)
}

// Verify approves or rejects an enterprise's qualification.
func (s *EnterpriseService) Verify(ctx context.Context, sess domain.Session, id domain.EnterpriseID, approve bool) error {
	if !permission.Resolve(sess).CanApproveQualification {
		return domain.ErrForbidden
	}
	if !id.Valid() {
		return fmt.Errorf("enterprise %d: %w", id, domain.ErrEnterpriseNotFound)
	}

	if err := s.api.VerifyEnterprise(ctx, sess.Token, id, approve); err != nil {
		return err
	}

	s.logger.Info().
		Int64("enterprise_id", int64(id)).
		Bool("approve", approve).
		Str("session_id", sess.ID).
		Msg("enterprise verification recorded")
	return nil
}
