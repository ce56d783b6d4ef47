package permission

import "github.com/aimatch/portal/internal/core/domain"

// Route is a portal page path.
type Route string

const (
	RouteWorkspace        Route = "/"
	RouteEnterprises      Route = "/enterprises"
	RouteDemands          Route = "/demands"
	RouteRecommendations  Route = "/recommended"
	RouteMatchedSuppliers Route = "/matched-suppliers"
	RouteSupplierHome     Route = "/supplier-home"
	RouteMatchedClients   Route = "/matched-clients"
	RouteProfile          Route = "/profile"
	RouteQualification    Route = "/qualification"
	RouteSupplierRegister Route = "/supplier-register"
	RouteCreateDemand     Route = "/demands/create"
)

// MenuEntry is one item of the navigation menu.
type MenuEntry struct {
	Route   Route  `json:"route"`
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
}

type routeSpec struct {
	route  Route
	inMenu bool
	allow  func(Capabilities) bool
	labels map[domain.Role]string
	label  string
}

func (r routeSpec) labelFor(role domain.Role) string {
	if l, ok := r.labels[role]; ok {
		return l
	}
	return r.label
}

// catalog is the single ordered list of portal routes. Menu visibility and
// route guards both read the allow predicate from here.
var catalog = []routeSpec{
	{
		route:  RouteWorkspace,
		inMenu: true,
		allow:  func(c Capabilities) bool { return c.CanViewOwnStats || c.CanViewPlatformStats },
		label:  "Workspace",
	},
	{
		route:  RouteEnterprises,
		inMenu: true,
		allow:  func(c Capabilities) bool { return c.CanViewAllEnterprises },
		label:  "Enterprise management",
	},
	{
		route:  RouteDemands,
		inMenu: true,
		allow:  func(c Capabilities) bool { return c.CanViewAllDemands || (c.CanViewOwnDemands && c.IsDemand) },
		labels: map[domain.Role]string{domain.RoleAdmin: "Demand management", domain.RoleDemand: "My demands"},
		label:  "Demands",
	},
	{
		route:  RouteRecommendations,
		inMenu: true,
		allow:  func(c Capabilities) bool { return c.CanViewAllRecommendations },
		label:  "Match management",
	},
	{
		route:  RouteMatchedSuppliers,
		inMenu: true,
		allow:  func(c Capabilities) bool { return c.CanViewRecommendedSuppliers },
		label:  "Recommended suppliers",
	},
	{
		route:  RouteSupplierHome,
		inMenu: true,
		allow:  func(c Capabilities) bool { return c.CanManageSupplierProfile },
		label:  "Enterprise home",
	},
	{
		route:  RouteMatchedClients,
		inMenu: true,
		allow:  func(c Capabilities) bool { return c.CanViewMatchedClients },
		label:  "Matched clients",
	},
	{
		route:  RouteProfile,
		inMenu: true,
		allow:  func(c Capabilities) bool { return c.CanViewProfile },
		label:  "Profile",
	},
	{
		route: RouteQualification,
		allow: func(c Capabilities) bool { return c.WizardKind() == domain.WizardDemandQualification },
		label: "Enterprise qualification",
	},
	{
		route: RouteSupplierRegister,
		allow: func(c Capabilities) bool { return c.WizardKind() == domain.WizardSupplyRegistration },
		label: "Supplier registration",
	},
	{
		route: RouteCreateDemand,
		allow: func(c Capabilities) bool { return c.CanCreateDemand },
		label: "Publish demand",
	},
}

// Navigation returns every menu route with its visibility for c.
func (c Capabilities) Navigation() []MenuEntry {
	out := make([]MenuEntry, 0, len(catalog))
	for _, r := range catalog {
		if !r.inMenu {
			continue
		}
		out = append(out, MenuEntry{Route: r.route, Label: r.labelFor(c.Role), Visible: r.allow(c)})
	}
	return out
}

// Menu returns the visible menu entries in display order.
func (c Capabilities) Menu() []MenuEntry {
	var out []MenuEntry
	for _, e := range c.Navigation() {
		if e.Visible {
			out = append(out, e)
		}
	}
	return out
}

// CanAccess is the route guard. Unknown routes are denied.
func (c Capabilities) CanAccess(route Route) bool {
	for _, r := range catalog {
		if r.route == route {
			return r.allow(c)
		}
	}
	return false
}

// Routes lists every route the portal knows, menu or not.
func Routes() []Route {
	out := make([]Route, len(catalog))
	for i, r := range catalog {
		out[i] = r.route
	}
	return out
}
