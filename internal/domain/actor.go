package domain

// Role is the caller's access level.
type Role string

const (
	RoleStudent Role = "student"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleManager || r == RoleAdmin
}

// Actor is the authenticated caller of an operation, extracted from the
// bearer token. Every core operation takes the actor explicitly; there is
// no ambient session state.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// CanIngest reports whether the actor may submit access events.
func (a Actor) CanIngest() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// CanReadEventLog reports whether the actor may query the raw event log.
func (a Actor) CanReadEventLog() bool {
	return a.Role == RoleAdmin || a.Role == RoleManager
}

// CanManageDirectory reports whether the actor may change which managers are
// notified for a location.
func (a Actor) CanManageDirectory() bool {
	return a.Role == RoleAdmin
}
