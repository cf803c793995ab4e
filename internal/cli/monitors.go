package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/infrasync/infrasync-go/svc/monitor"
)

func newMonitorsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitors",
		Short: "Manage repository monitors",
	}

	cmd.AddCommand(
		newMonitorsListCmd(app),
		newMonitorsAddCmd(app),
		newMonitorsRemoveCmd(app),
		newMonitorsFrequencyCmd(app),
		newMonitorsMetricsCmd(app),
	)
	return cmd
}

func newMonitorsListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the organization's monitors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			monitors, err := app.monitors.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, monitors)
			}

			s := newStyles()
			if len(monitors) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), s.empty.Render("No monitors yet. Add one with 'infrasync monitors add'."))
				return nil
			}

			rows := make([][]string, 0, len(monitors))
			for _, m := range monitors {
				rows = append(rows, []string{m.ID, m.Repo, m.DeliveryMethod, m.Frequency})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(s, []string{"ID", "REPO", "DELIVERY", "FREQUENCY"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print monitors as JSON")
	return cmd
}

func newMonitorsAddCmd(app *app) *cobra.Command {
	var params monitor.CreateParams

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a monitor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := app.monitors.Create(cmd.Context(), params)
			if err != nil {
				return err
			}

			s := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), s.ok.Render(fmt.Sprintf("Monitor %s created for %s (%s, %s)",
				m.ID, m.Repo, m.DeliveryMethod, m.Frequency)))
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Repo, "repo", "", "repository in owner/repo format")
	cmd.Flags().StringVar(&params.DeliveryMethod, "delivery", monitor.DeliverySlack, "delivery method: slack, discord or email")
	cmd.Flags().StringVar(&params.WebhookURL, "webhook", "", "webhook URL for slack/discord delivery")
	cmd.Flags().StringVar(&params.Frequency, "frequency", monitor.FrequencyDaily, "digest frequency: daily, weekly or on_merge")
	_ = cmd.MarkFlagRequired("repo")
	return cmd
}

func newMonitorsRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <monitor-id>",
		Short: "Delete a monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.monitors.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Monitor deleted.")
			return nil
		},
	}
}

func newMonitorsFrequencyCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-frequency <monitor-id> <frequency>",
		Short: "Change how often a monitor delivers digests",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.monitors.UpdateFrequency(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Frequency updated to %s.\n", args[1])
			return nil
		},
	}
}

func newMonitorsMetricsCmd(app *app) *cobra.Command {
	var (
		periodDays int
		compare    bool
	)

	cmd := &cobra.Command{
		Use:   "metrics <monitor-id>",
		Short: "Show aggregated activity for a monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.monitors.Metrics(cmd.Context(), args[0], periodDays, compare)
			if err != nil {
				return err
			}

			s := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), s.title.Render(fmt.Sprintf("Activity over the last %d days", report.PeriodDays)))
			fmt.Fprintln(cmd.OutOrStdout(), renderMetrics(s, report.Metrics, report.PreviousMetrics))
			return nil
		},
	}

	cmd.Flags().IntVar(&periodDays, "days", 7, "period length in days")
	cmd.Flags().BoolVar(&compare, "compare", false, "include the preceding period for comparison")
	return cmd
}

func renderMetrics(s styles, current, previous map[string]int) string {
	rows := make([][]string, 0, len(current))
	for _, key := range sortedKeys(current) {
		row := []string{key, fmt.Sprint(current[key])}
		if previous != nil {
			row = append(row, fmt.Sprint(previous[key]))
		}
		rows = append(rows, row)
	}

	headers := []string{"METRIC", "COUNT"}
	if previous != nil {
		headers = append(headers, "PREVIOUS")
	}
	return renderTable(s, headers, rows)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
