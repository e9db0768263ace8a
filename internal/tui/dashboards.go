package tui

import "github.com/curascan/cli/internal/domain"

// Non-clinical dashboards are thin here: their record administration
// screens live in the web console, not in this client.
func dashboardPlaceholderView(dashboard domain.Dashboard) string {
	var lines []string
	switch dashboard {
	case domain.DashboardPlatform:
		lines = []string{
			"Platform administration",
			"Tenant and subscription management is available in the web console.",
		}
	case domain.DashboardOrganization:
		lines = []string{
			"Organization administration",
			"Staff and patient record management is available in the web console.",
		}
	case domain.DashboardLab:
		lines = []string{
			"Lab dashboard",
			"Uploaded scans await physician review; analysis is run by doctors.",
		}
	case domain.DashboardPatient:
		lines = []string{
			"Patient portal",
			"Your reports are available from your care team.",
		}
	default:
		lines = []string{string(dashboard)}
	}

	out := "\n " + titleStyle.Render(lines[0]) + "\n"
	for _, line := range lines[1:] {
		out += "\n " + valueStyle.Render(line) + "\n"
	}
	return out + "\n " + helpStyle.Render("q quit") + "\n"
}
