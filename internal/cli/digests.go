package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/infrasync/infrasync-go/pkg/slackfmt"
	"github.com/infrasync/infrasync-go/svc/digest"
)

func newDigestsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digests",
		Short: "View and trigger digests",
	}

	cmd.AddCommand(
		newDigestsRecentCmd(app),
		newDigestsRunCmd(app),
	)
	return cmd
}

func newDigestsRecentCmd(app *app) *cobra.Command {
	var (
		monitorIDs []string
		perMonitor int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show recent digests across monitors, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var selection []string
			if len(monitorIDs) > 0 {
				selection = monitorIDs
			}

			digests, err := app.digests.Recent(cmd.Context(), selection, perMonitor)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, digests)
			}

			s := newStyles()
			if len(digests) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), s.empty.Render("No digests delivered yet."))
				return nil
			}

			for _, d := range digests {
				header := fmt.Sprintf("%s  %s  %s", d.DeliveredAt.Format("2006-01-02 15:04"), d.Repo, d.Status)
				fmt.Fprintln(cmd.OutOrStdout(), s.key.Render(header))
				fmt.Fprintln(cmd.OutOrStdout(), s.value.Render(summaryExcerpt(d.Summary)))
				if d.ErrorMessage != "" {
					fmt.Fprintln(cmd.OutOrStdout(), s.warning.Render("delivery error: "+d.ErrorMessage))
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&monitorIDs, "monitor", nil, "restrict to specific monitor IDs")
	cmd.Flags().IntVar(&perMonitor, "limit", 3, "digests per monitor")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print digests as JSON")
	return cmd
}

func newDigestsRunCmd(app *app) *cobra.Command {
	var req digest.Request

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and deliver a digest now",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Generating digest, this can take a while...")
			resp, err := app.digests.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}

			s := newStyles()
			if resp.Success {
				fmt.Fprintln(cmd.OutOrStdout(), s.ok.Render(fmt.Sprintf("Digest for %s: %s", resp.RepoName, resp.DeliveryStatus)))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), s.warning.Render("Digest failed: "+resp.Message))
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.value.Render(slackfmt.ToText(resp.Summary)))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Repo, "repo", "", "repository in owner/repo format")
	cmd.Flags().StringVar(&req.DeliveryMethod, "delivery", "slack", "delivery method: slack, discord or email")
	cmd.Flags().StringVar(&req.WebhookURL, "webhook", "", "webhook URL override")
	cmd.Flags().StringVar(&req.Email, "email", "", "recipient for email delivery")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}

// summaryExcerpt renders the mrkdwn summary as plain text, trimmed to a
// few lines for list views.
func summaryExcerpt(summary string) string {
	text := strings.TrimSpace(slackfmt.ToText(summary))
	lines := strings.Split(text, "\n")
	if len(lines) > 4 {
		lines = append(lines[:4], "...")
	}
	return strings.Join(lines, "\n")
}
