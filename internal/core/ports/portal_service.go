package ports

import (
	"context"
	"encoding/json"

	"github.com/aimatch/portal/internal/core/domain"
	"github.com/aimatch/portal/internal/core/wizard"
)

// LoginOutput is returned by SessionService.Login.
type LoginOutput struct {
	// Token is the portal session token (not the marketplace credential).
	Token   string
	Session domain.Session
}

// SessionService manages browser sessions on top of the marketplace login.
type SessionService interface {
	Login(ctx context.Context, email, password string) (*LoginOutput, error)
	Current(ctx context.Context, sessionID string) (domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	// Teardown ends a session for a reason other than logout, e.g. the
	// marketplace rejecting its token.
	Teardown(ctx context.Context, sessionID, reason string) error
}

// EnterpriseService exposes the enterprise operations the portal proxies.
type EnterpriseService interface {
	Get(ctx context.Context, sess domain.Session, id domain.EnterpriseID) (*domain.Enterprise, error)
	CanCreateDemand(ctx context.Context, sess domain.Session, id domain.EnterpriseID) (*domain.DemandGate, error)
	Verify(ctx context.Context, sess domain.Session, id domain.EnterpriseID, approve bool) error
}

// WizardService runs the qualification and registration wizards of sessions.
type WizardService interface {
	Start(ctx context.Context, sess domain.Session) (wizard.Snapshot, error)
	Get(sess domain.Session, id string) (wizard.Snapshot, error)
	Edit(sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error)
	Next(sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error)
	Previous(sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error)
	Preview(sess domain.Session, id string, values wizard.Values) (wizard.Preview, error)
	Submit(ctx context.Context, sess domain.Session, id string, values wizard.Values) (wizard.Snapshot, error)
	AddEntry(sess domain.Session, id, group string, entry json.RawMessage) (wizard.Snapshot, error)
	RemoveEntry(sess domain.Session, id, group string, index int) (wizard.Snapshot, error)
	Abandon(sess domain.Session, id string) error
}

// SubmissionService reads the submission audit trail.
type SubmissionService interface {
	History(ctx context.Context, sess domain.Session, wizardID string) ([]domain.SubmissionRecord, error)
}
