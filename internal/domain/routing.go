package domain

type Dashboard string

const (
	DashboardPlatform     Dashboard = "platform"
	DashboardOrganization Dashboard = "organization"
	DashboardClinical     Dashboard = "clinical"
	DashboardLab          Dashboard = "lab"
	DashboardPatient      Dashboard = "patient_portal"
)

// DashboardForRole is the pure role-to-dashboard mapping. It is a
// convenience for rendering, not a security boundary: the backend
// re-checks authorization on every resource call.
func DashboardForRole(role Role) (Dashboard, error) {
	switch role {
	case RoleSuperAdmin:
		return DashboardPlatform, nil
	case RoleOrganizationAdmin:
		return DashboardOrganization, nil
	case RoleDoctor:
		return DashboardClinical, nil
	case RoleLabTech:
		return DashboardLab, nil
	case RolePatient:
		return DashboardPatient, nil
	default:
		return "", ErrUnknownRole
	}
}
