package profile

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/curascan/cli/internal/domain"
)

type RenderOptions struct {
	// Verified indicates the profile was just confirmed against the
	// backend rather than read from the local cache.
	Verified bool
}

func renderView(actor domain.Actor, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("CuraScan Session"),
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.name.Render(actor.DisplayName()),
			" ",
			s.role.Render(fmt.Sprintf("(%s)", roleLabel(actor.Role))),
		),
	}

	if actor.Email != "" {
		lines = append(lines, detailLine("email", actor.Email, s))
	}
	if actor.TenantID != "" {
		lines = append(lines, detailLine("tenant", actor.TenantID, s))
	}

	if opts.Verified {
		lines = append(lines, s.key.Render("token verified against the server"))
	} else {
		lines = append(lines, s.warning.Render("[cached] profile not re-verified"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func detailLine(key, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key+": "), s.detail.Render(value))
}

func roleLabel(role domain.Role) string {
	switch role {
	case domain.RoleSuperAdmin:
		return "platform administrator"
	case domain.RoleOrganizationAdmin:
		return "organization administrator"
	case domain.RoleDoctor:
		return "doctor"
	case domain.RoleLabTech:
		return "lab technician"
	case domain.RolePatient:
		return "patient"
	}
	return string(role)
}
