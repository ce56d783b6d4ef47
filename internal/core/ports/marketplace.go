package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aimatch/portal/internal/core/domain"
)

// LoginResult is what the marketplace returns for a successful login.
// User is kept raw so it can be stored verbatim in the session.
type LoginResult struct {
	AccessToken string          `json:"access_token"`
	User        json.RawMessage `json:"user"`
}

// QualificationSubmission is the body of PUT /enterprises/{id}/qualification.
type QualificationSubmission struct {
	domain.DemandDraft
	QualificationStatus      domain.QualificationStatus `json:"qualification_status"`
	QualificationSubmittedAt time.Time                  `json:"qualification_submitted_at"`
}

// SupplierRegistration is the body of POST /enterprises/register.
type SupplierRegistration struct {
	domain.SupplyDraft
	EnterpriseType domain.EnterpriseType   `json:"enterprise_type"`
	Status         domain.EnterpriseStatus `json:"status"`
}

// MarketplaceAPI is the remote marketplace REST API. token is the bearer
// credential of the calling session.
//
// A 401 from the server is returned as domain.ErrUnauthorized; any other
// failure status as *domain.APIError.
type MarketplaceAPI interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	GetEnterprise(ctx context.Context, token string, id domain.EnterpriseID) (*domain.Enterprise, error)
	CanCreateDemand(ctx context.Context, token string, id domain.EnterpriseID) (*domain.DemandGate, error)
	SubmitQualification(ctx context.Context, token string, id domain.EnterpriseID, sub QualificationSubmission) error
	RegisterSupplier(ctx context.Context, token string, reg SupplierRegistration) (*domain.Enterprise, error)
	VerifyEnterprise(ctx context.Context, token string, id domain.EnterpriseID, approve bool) error
	Ping(ctx context.Context) error
}
