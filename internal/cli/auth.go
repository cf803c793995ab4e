package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/infrasync/infrasync-go/svc/session"
)

func newLoginCmd(app *app) *cobra.Command {
	var (
		callbackAddr string
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in through the browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flow, err := app.sessions.NewLoginFlow(
				session.WithCallbackAddr(callbackAddr),
				session.WithLoginTimeout(timeout),
			)
			if err != nil {
				return err
			}
			defer func() { _ = flow.Close() }()

			fmt.Fprintln(cmd.OutOrStdout(), "Opening the browser to log in...")
			if err := flow.Run(cmd.Context()); err != nil {
				return err
			}

			snap := app.sessions.Snapshot()
			s := newStyles()
			if snap.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), s.ok.Render("Logged in as "+snap.User.Username))
				if snap.NeedsOrgSetup {
					fmt.Fprintln(cmd.OutOrStdout(), s.warning.Render("Your account has no organization yet. Run 'infrasync org create' or 'infrasync org join'."))
				}
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.warning.Render("Login completed but the session did not resolve."))
			return snap.Err
		},
	}

	cmd.Flags().StringVar(&callbackAddr, "callback-addr", "127.0.0.1:8970", "loopback address for the login callback")
	cmd.Flags().DurationVar(&timeout, "timeout", 3*time.Minute, "how long to wait for the login callback")
	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the local session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.sessions.Logout(cmd.Context(), true)
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.sessions.Refresh(cmd.Context())
			snap := app.sessions.Snapshot()
			s := newStyles()

			if !snap.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), s.empty.Render("Not logged in."))
				return nil
			}

			if asJSON {
				return printJSON(cmd, snap.User)
			}

			pairs := [][2]string{
				{"user", snap.User.Username},
				{"email", snap.User.Email},
				{"org", snap.User.OrgID},
				{"role", snap.User.Role},
			}
			if snap.NeedsOrgSetup {
				pairs = append(pairs, [2]string{"org setup", "required"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKV(s, pairs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the identity as JSON")
	return cmd
}
