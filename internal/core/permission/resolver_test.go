package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aimatch/portal/internal/core/domain"
)

func session(role domain.Role, enterprise domain.EnterpriseID) domain.Session {
	return domain.Session{ID: "s1", UserID: 1, Role: role, EnterpriseID: enterprise}
}

func menuRoutes(entries []MenuEntry) []Route {
	out := make([]Route, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Route)
	}
	return out
}

func TestResolve_RoleFlags(t *testing.T) {
	admin := Resolve(session(domain.RoleAdmin, 0))
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.CanViewAllEnterprises)
	assert.True(t, admin.CanApproveQualification)
	assert.True(t, admin.CanApproveDemand)
	assert.True(t, admin.CanViewPlatformStats)
	assert.True(t, admin.CanCreateDemand)
	assert.False(t, admin.CanViewRecommendedSuppliers)
	assert.False(t, admin.CanViewOwnRecommendations)

	demand := Resolve(session(domain.RoleDemand, 7))
	assert.True(t, demand.IsDemand)
	assert.True(t, demand.CanCreateDemand)
	assert.True(t, demand.CanViewOwnDemands)
	assert.True(t, demand.CanViewRecommendedSuppliers)
	assert.False(t, demand.CanViewPublishedDemands)
	assert.False(t, demand.CanViewAllEnterprises)
	assert.False(t, demand.CanApproveQualification)

	supply := Resolve(session(domain.RoleSupply, 9))
	assert.True(t, supply.IsSupply)
	assert.True(t, supply.CanViewPublishedDemands)
	assert.True(t, supply.CanManageSupplierProfile)
	assert.True(t, supply.CanViewMatchedClients)
	assert.False(t, supply.CanCreateDemand)
	assert.False(t, supply.CanViewOwnDemands)
}

func TestResolve_UnknownRoleFailsClosed(t *testing.T) {
	c := Resolve(session(domain.RoleUnknown, 3))

	want := Capabilities{Role: domain.RoleUnknown, EnterpriseID: 3, CanViewProfile: true}
	assert.Equal(t, want, c)
	assert.Equal(t, []Route{RouteProfile}, menuRoutes(c.Menu()))
	assert.False(t, c.CanModifyEnterprise(3))
	assert.Equal(t, domain.WizardNone, c.WizardKind())
}

func TestResolve_DecodedSessionDefaults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Role
	}{
		{"absent record", "", domain.RoleDemand},
		{"malformed record", "{not json", domain.RoleDemand},
		{"missing role", `{"id":1}`, domain.RoleDemand},
		{"unknown role", `{"id":1,"role":"auditor"}`, domain.RoleUnknown},
		{"supply role", `{"id":1,"role":"supply"}`, domain.RoleSupply},
		{"upper-case admin", `{"id":1,"role":"ADMIN"}`, domain.RoleUnknown},
		{"padded admin", `{"id":1,"role":" Admin "}`, domain.RoleUnknown},
		{"blank role", `{"id":1,"role":"   "}`, domain.RoleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DecodeSession("sid", "tok", []byte(tt.raw))
			assert.Equal(t, tt.want, Resolve(s).Role)
		})
	}
}

func TestResolve_RoleVariantsGrantNothing(t *testing.T) {
	for _, raw := range []string{"ADMIN", " Admin ", "Supply", "demand "} {
		t.Run(raw, func(t *testing.T) {
			s := domain.DecodeSession("sid", "tok", []byte(`{"id":1,"role":"`+raw+`"}`))
			c := Resolve(s)
			assert.False(t, c.IsAdmin)
			assert.False(t, c.CanApproveQualification)
			assert.Equal(t, []Route{RouteProfile}, menuRoutes(c.Menu()))
		})
	}
}

func TestMenu_PerRole(t *testing.T) {
	tests := []struct {
		role domain.Role
		want []Route
	}{
		{domain.RoleAdmin, []Route{RouteWorkspace, RouteEnterprises, RouteDemands, RouteRecommendations, RouteProfile}},
		{domain.RoleDemand, []Route{RouteWorkspace, RouteDemands, RouteMatchedSuppliers, RouteProfile}},
		{domain.RoleSupply, []Route{RouteWorkspace, RouteSupplierHome, RouteMatchedClients, RouteProfile}},
		{domain.RoleUnknown, []Route{RouteProfile}},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			c := Resolve(session(tt.role, 1))
			assert.Equal(t, tt.want, menuRoutes(c.Menu()))
		})
	}
}

func TestMenu_LabelsFollowRole(t *testing.T) {
	admin := Resolve(session(domain.RoleAdmin, 0)).Menu()
	demand := Resolve(session(domain.RoleDemand, 1)).Menu()

	require.Len(t, admin, 5)
	require.Len(t, demand, 4)
	assert.Equal(t, "Demand management", admin[2].Label)
	assert.Equal(t, "My demands", demand[1].Label)
}

func TestMenu_NeverDivergesFromGuard(t *testing.T) {
	roles := []domain.Role{domain.RoleAdmin, domain.RoleDemand, domain.RoleSupply, domain.RoleUnknown}
	for _, role := range roles {
		c := Resolve(session(role, 4))

		visible := map[Route]bool{}
		for _, e := range c.Menu() {
			visible[e.Route] = true
			assert.True(t, c.CanAccess(e.Route), "%s: menu shows %s but guard denies it", role, e.Route)
		}
		for _, e := range c.Navigation() {
			assert.Equal(t, c.CanAccess(e.Route), visible[e.Route], "%s: %s", role, e.Route)
		}
	}
}

func TestCanAccess_NonMenuRoutes(t *testing.T) {
	demand := Resolve(session(domain.RoleDemand, 1))
	supply := Resolve(session(domain.RoleSupply, 2))
	admin := Resolve(session(domain.RoleAdmin, 0))

	assert.True(t, demand.CanAccess(RouteQualification))
	assert.False(t, demand.CanAccess(RouteSupplierRegister))
	assert.True(t, demand.CanAccess(RouteCreateDemand))

	assert.True(t, supply.CanAccess(RouteSupplierRegister))
	assert.False(t, supply.CanAccess(RouteQualification))
	assert.False(t, supply.CanAccess(RouteCreateDemand))

	assert.False(t, admin.CanAccess(RouteQualification))
	assert.True(t, admin.CanAccess(RouteCreateDemand))

	assert.False(t, admin.CanAccess(Route("/nowhere")))
}

func TestCanModifyEnterprise(t *testing.T) {
	assert.True(t, Resolve(session(domain.RoleAdmin, 0)).CanModifyEnterprise(99))
	assert.True(t, Resolve(session(domain.RoleDemand, 5)).CanModifyEnterprise(5))
	assert.False(t, Resolve(session(domain.RoleDemand, 5)).CanModifyEnterprise(6))
	assert.False(t, Resolve(session(domain.RoleDemand, 0)).CanModifyEnterprise(0))
}

func TestCanModifyDemand(t *testing.T) {
	assert.True(t, Resolve(session(domain.RoleAdmin, 0)).CanModifyDemand(12))
	assert.True(t, Resolve(session(domain.RoleDemand, 12)).CanModifyDemand(12))
	assert.False(t, Resolve(session(domain.RoleDemand, 12)).CanModifyDemand(13))
	assert.False(t, Resolve(session(domain.RoleSupply, 12)).CanModifyDemand(12))
}

func TestCanViewEnterprise(t *testing.T) {
	assert.True(t, Resolve(session(domain.RoleAdmin, 0)).CanViewEnterprise(3))
	assert.True(t, Resolve(session(domain.RoleSupply, 3)).CanViewEnterprise(3))
	assert.False(t, Resolve(session(domain.RoleSupply, 3)).CanViewEnterprise(4))
	assert.False(t, Resolve(session(domain.RoleUnknown, 3)).CanViewEnterprise(3))
}

func TestSupplySessionWithoutEnterprise(t *testing.T) {
	s := domain.DecodeSession("sid", "tok", []byte(`{"id":8,"role":"supply"}`))
	c := Resolve(s)

	assert.True(t, c.IsSupply)
	assert.False(t, c.CanModifyEnterprise(99))
	assert.Equal(t,
		[]Route{RouteWorkspace, RouteSupplierHome, RouteMatchedClients, RouteProfile},
		menuRoutes(c.Menu()),
	)
}

func TestWizardKind(t *testing.T) {
	assert.Equal(t, domain.WizardDemandQualification, Resolve(session(domain.RoleDemand, 1)).WizardKind())
	assert.Equal(t, domain.WizardSupplyRegistration, Resolve(session(domain.RoleSupply, 1)).WizardKind())
	assert.Equal(t, domain.WizardNone, Resolve(session(domain.RoleAdmin, 1)).WizardKind())
}
