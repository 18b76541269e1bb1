package domain

// RouteTable maps a route identifier to the role required to access it.
// It is built once at startup and only read afterwards.
type RouteTable struct {
	required map[string]Role
}

// NewRouteTable copies requirements into a new table.
func NewRouteTable(requirements map[string]Role) RouteTable {
	required := make(map[string]Role, len(requirements))
	for id, role := range requirements {
		required[id] = role
	}
	return RouteTable{required: required}
}

// RouteID builds the identifier used as a RouteTable key, e.g. "GET /auth/admin".
func RouteID(method, path string) string {
	return method + " " + path
}

// RequiredRole returns the role declared for routeID, if any.
func (t RouteTable) RequiredRole(routeID string) (Role, bool) {
	role, ok := t.required[routeID]
	return role, ok
}
