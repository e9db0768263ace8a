package domain

type ActorID string

type Role string

const (
	RoleSuperAdmin        Role = "super_admin"
	RoleOrganizationAdmin Role = "organization_admin"
	RoleDoctor            Role = "doctor"
	RoleLabTech           Role = "lab_tech"
	RolePatient           Role = "patient"
)

// Known reports whether the role is one the client recognizes. Backend
// tokens may carry roles introduced after this client shipped.
func (r Role) Known() bool {
	switch r {
	case RoleSuperAdmin, RoleOrganizationAdmin, RoleDoctor, RoleLabTech, RolePatient:
		return true
	}
	return false
}

// CanScreen reports whether the role is permitted to run the screening
// workflow. The backend enforces the same rule on every scan call.
func (r Role) CanScreen() bool {
	return r == RoleDoctor
}

type Actor struct {
	ID       ActorID
	Username string
	Email    string
	FullName string
	Role     Role
	TenantID string
}

// DisplayName prefers the full name and falls back to the username.
func (a Actor) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}
