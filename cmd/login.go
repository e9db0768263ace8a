package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/curascan/cli/internal/adapters/render/profile"
)

func newLoginCmd(app *app) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the CuraScan backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			identifier := strings.TrimSpace(username)
			if identifier == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Username or email: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read username: %w", err)
				}
				identifier = strings.TrimSpace(line)
			}
			if identifier == "" {
				return fmt.Errorf("username or email is required")
			}

			secret := password
			if secret == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				secret = strings.TrimRight(line, "\r\n")
			}

			session, err := app.sessions.Login(cmd.Context(), identifier, secret)
			if err != nil {
				return err
			}

			rendered, err := profile.Render(session.Actor, profile.RenderOptions{Verified: true})
			if err != nil {
				return fmt.Errorf("render profile: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username or email (prompted when omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted; prefer the prompt)")

	return cmd
}
