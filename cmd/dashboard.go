package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/curascan/cli/internal/tui"
)

func newDashboardCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"screen"},
		Short:   "Open the role dashboard (screening workflow for doctors)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.sessions.Restore(cmd.Context()) {
				return errors.New("not logged in — run `cura login`")
			}

			p := tea.NewProgram(
				tui.NewApp(app.sessions, app.workflow),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run dashboard: %w", err)
			}
			return nil
		},
	}
}
