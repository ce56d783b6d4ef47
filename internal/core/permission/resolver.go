// Package permission derives what a session may see and do. It is the only
// place in the portal that branches on Role.
package permission

import "github.com/aimatch/portal/internal/core/domain"

// Capabilities is the flag set computed from a session's role and enterprise.
// It is recomputed on every read and never stored.
type Capabilities struct {
	Role         domain.Role         `json:"role"`
	EnterpriseID domain.EnterpriseID `json:"enterprise_id,omitempty"`

	IsAdmin  bool `json:"is_admin"`
	IsDemand bool `json:"is_demand"`
	IsSupply bool `json:"is_supply"`

	CanViewAllEnterprises bool `json:"can_view_all_enterprises"`
	CanViewOwnEnterprise  bool `json:"can_view_own_enterprise"`

	CanViewAllDemands       bool `json:"can_view_all_demands"`
	CanViewPublishedDemands bool `json:"can_view_published_demands"`
	CanViewOwnDemands       bool `json:"can_view_own_demands"`
	CanCreateDemand         bool `json:"can_create_demand"`

	CanViewAllRecommendations bool `json:"can_view_all_recommendations"`
	CanViewOwnRecommendations bool `json:"can_view_own_recommendations"`
	CanViewMatchedEnterprises bool `json:"can_view_matched_enterprises"`

	CanApproveQualification bool `json:"can_approve_qualification"`
	CanApproveDemand        bool `json:"can_approve_demand"`

	CanViewPlatformStats bool `json:"can_view_platform_stats"`
	CanViewOwnStats      bool `json:"can_view_own_stats"`

	CanViewRecommendedSuppliers bool `json:"can_view_recommended_suppliers"`
	CanManageSupplierProfile    bool `json:"can_manage_supplier_profile"`
	CanViewMatchedClients       bool `json:"can_view_matched_clients"`

	CanViewProfile bool `json:"can_view_profile"`
}

// Resolve computes the capability set for s. It has no side effects.
func Resolve(s domain.Session) Capabilities {
	admin := s.Role == domain.RoleAdmin
	demand := s.Role == domain.RoleDemand
	supply := s.Role == domain.RoleSupply
	known := admin || demand || supply

	return Capabilities{
		Role:         s.Role,
		EnterpriseID: s.EnterpriseID,

		IsAdmin:  admin,
		IsDemand: demand,
		IsSupply: supply,

		CanViewAllEnterprises: admin,
		CanViewOwnEnterprise:  known,

		CanViewAllDemands:       admin,
		CanViewPublishedDemands: supply || admin,
		CanViewOwnDemands:       demand || admin,
		CanCreateDemand:         demand || admin,

		CanViewAllRecommendations: admin,
		CanViewOwnRecommendations: demand || supply,
		CanViewMatchedEnterprises: known,

		CanApproveQualification: admin,
		CanApproveDemand:        admin,

		CanViewPlatformStats: admin,
		CanViewOwnStats:      known,

		CanViewRecommendedSuppliers: demand,
		CanManageSupplierProfile:    supply,
		CanViewMatchedClients:       supply,

		CanViewProfile: true,
	}
}

// CanModifyEnterprise reports whether the session may edit enterprise id.
func (c Capabilities) CanModifyEnterprise(id domain.EnterpriseID) bool {
	if c.IsAdmin {
		return true
	}
	return id.Valid() && id == c.EnterpriseID
}

// CanModifyDemand reports whether the session may edit a demand owned by the
// given enterprise.
func (c Capabilities) CanModifyDemand(owner domain.EnterpriseID) bool {
	if c.IsAdmin {
		return true
	}
	return c.IsDemand && owner.Valid() && owner == c.EnterpriseID
}

// CanViewEnterprise reports whether the session may read enterprise id.
func (c Capabilities) CanViewEnterprise(id domain.EnterpriseID) bool {
	if c.CanViewAllEnterprises {
		return true
	}
	return c.CanViewOwnEnterprise && id.Valid() && id == c.EnterpriseID
}

// WizardKind selects the stepped form the session's role fills in.
func (c Capabilities) WizardKind() domain.WizardKind {
	switch {
	case c.IsDemand:
		return domain.WizardDemandQualification
	case c.IsSupply:
		return domain.WizardSupplyRegistration
	default:
		return domain.WizardNone
	}
}
