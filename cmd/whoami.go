package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/curascan/cli/internal/adapters/render/profile"
	"github.com/curascan/cli/internal/domain"
)

func newWhoamiCmd(app *app) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session's actor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !app.sessions.Restore(cmd.Context()) {
				return errors.New("not logged in — run `cura login`")
			}

			verified := false
			if !cached {
				err := runVerifySpinner(cmd.Context(), cmd.ErrOrStderr(), app.sessions.Verify)
				if err != nil {
					if errors.Is(err, domain.ErrUnauthorized) {
						return errors.New("session expired — run `cura login`")
					}
					return err
				}
				verified = true
			}

			session, ok := app.sessions.Current()
			if !ok {
				return errors.New("not logged in — run `cura login`")
			}

			rendered, err := profile.Render(session.Actor, profile.RenderOptions{Verified: verified})
			if err != nil {
				return fmt.Errorf("render profile: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", false, "Show the cached profile without contacting the server")

	return cmd
}
