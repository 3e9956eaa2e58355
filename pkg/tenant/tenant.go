package tenant

// Tenant is the scope within which all source entities and derived events
// live. Authentication and tenancy enforcement happen upstream; this package
// only resolves and propagates the already-authenticated tenant.
type Tenant struct {
	Id   int
	Uid  string
	Name string
}
