package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/infrasync/infrasync-go/svc/org"
)

func newOrgCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage the organization and its members",
	}

	cmd.AddCommand(
		newOrgShowCmd(app),
		newOrgCreateCmd(app),
		newOrgJoinCmd(app),
		newOrgMembersCmd(app),
		newOrgInviteCmd(app),
		newOrgSetRoleCmd(app),
		newOrgRemoveCmd(app),
		newOrgMetricsCmd(app),
		newOrgAuditCmd(app),
	)
	return cmd
}

func newOrgShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := app.orgs.Get(cmd.Context())
			if err != nil {
				return err
			}

			s := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), renderKV(s, [][2]string{
				{"id", o.ID},
				{"name", o.Name},
				{"created", o.CreatedAt.Format("2006-01-02")},
			}))
			return nil
		},
	}
}

func newOrgCreateCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an organization with you as admin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := app.orgs.Create(cmd.Context(), name)
			if err != nil {
				return err
			}
			// The backend reissues the session token with the new org
			// context; adopt it so later commands act in that org.
			if err := app.sessions.AdoptToken(cmd.Context(), m.Token); err != nil {
				return err
			}

			s := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), s.ok.Render(fmt.Sprintf("Organization %q created (%s).", m.Name, m.OrgID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "organization name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newOrgJoinCmd(app *app) *cobra.Command {
	var inviteCode string

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join an organization with an invite code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := app.orgs.Join(cmd.Context(), inviteCode)
			if err != nil {
				return err
			}
			if err := app.sessions.AdoptToken(cmd.Context(), m.Token); err != nil {
				return err
			}

			s := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), s.ok.Render(fmt.Sprintf("Joined %q (%s).", m.Name, m.OrgID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&inviteCode, "code", "", "invite code")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newOrgMembersCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "members",
		Short: "List organization members",
		RunE: func(cmd *cobra.Command, _ []string) error {
			members, err := app.orgs.Members(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, members)
			}

			s := newStyles()
			rows := make([][]string, 0, len(members))
			for _, m := range members {
				rows = append(rows, []string{m.UserID, m.Username, m.Email, m.Role})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(s, []string{"ID", "USER", "EMAIL", "ROLE"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print members as JSON")
	return cmd
}

func newOrgInviteCmd(app *app) *cobra.Command {
	var (
		email string
		role  string
	)

	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Invite a user to the organization (admin only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.orgs.Invite(cmd.Context(), email, role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Invited %s as %s.\n", email, role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address to invite")
	cmd.Flags().StringVar(&role, "role", org.RoleMember, "role: admin, member or viewer")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newOrgSetRoleCmd(app *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "set-role <user-id>",
		Short: "Change a member's role (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.orgs.UpdateMemberRole(cmd.Context(), args[0], role); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Role updated to %s.\n", role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "new role: admin, member or viewer")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newOrgRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user-id>",
		Short: "Remove a member from the organization (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.orgs.RemoveMember(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Member removed.")
			return nil
		},
	}
}

func newOrgMetricsCmd(app *app) *cobra.Command {
	var periodDays int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show organization-wide digest activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := app.orgs.Metrics(cmd.Context(), periodDays)
			if err != nil {
				return err
			}

			s := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), s.title.Render(fmt.Sprintf("Activity over the last %d days", report.PeriodDays)))
			fmt.Fprintln(cmd.OutOrStdout(), renderMetrics(s, report.Metrics, nil))
			return nil
		},
	}

	cmd.Flags().IntVar(&periodDays, "days", 7, "period length in days")
	return cmd
}

func newOrgAuditCmd(app *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent administrative actions (admin only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := app.orgs.AuditLogs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			s := newStyles()
			if len(logs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), s.empty.Render("No audit entries."))
				return nil
			}

			rows := make([][]string, 0, len(logs))
			for _, l := range logs {
				rows = append(rows, []string{
					l.CreatedAt.Format("2006-01-02 15:04"), l.ActorID, l.Action, l.TargetType + "/" + l.TargetID,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(s, []string{"WHEN", "ACTOR", "ACTION", "TARGET"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to fetch")
	return cmd
}
