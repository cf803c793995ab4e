package cli

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/spf13/cobra"

	"github.com/infrasync/infrasync-go/pkg/navigator"
)

func newBillingCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Manage the organization's subscription",
	}

	cmd.AddCommand(
		newBillingStatusCmd(app),
		newBillingCheckoutCmd(app),
		newBillingPortalCmd(app),
		newBillingUpgradeCmd(app),
		newBillingRefreshCmd(app),
	)
	return cmd
}

func newBillingStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current plan and limits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := app.orgID(cmd.Context())
			if err != nil {
				return err
			}

			st, err := app.billing.Status(cmd.Context(), orgID)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd, st)
			}

			s := newStyles()
			pairs := [][2]string{
				{"plan", st.Plan},
				{"billing enabled", fmt.Sprint(st.BillingEnabled)},
			}
			for _, key := range sortedAnyKeys(st.Limits) {
				pairs = append(pairs, [2]string{"limit " + key, fmt.Sprint(st.Limits[key])})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderKV(s, pairs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	return cmd
}

func newBillingCheckoutCmd(app *app) *cobra.Command {
	var plan string

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Open a checkout page to subscribe to a plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := app.orgID(cmd.Context())
			if err != nil {
				return err
			}

			checkoutURL, err := app.billing.CreateCheckoutSession(cmd.Context(), orgID, plan)
			if err != nil {
				return err
			}
			return openURL(cmd, checkoutURL)
		},
	}

	cmd.Flags().StringVar(&plan, "plan", "", "plan to subscribe to: pro or team")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func newBillingPortalCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Open the billing portal for the existing subscription",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := app.orgID(cmd.Context())
			if err != nil {
				return err
			}

			portalURL, err := app.billing.CreatePortalSession(cmd.Context(), orgID)
			if err != nil {
				return err
			}
			return openURL(cmd, portalURL)
		},
	}
}

func newBillingUpgradeCmd(app *app) *cobra.Command {
	var plan string

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Move the existing subscription to a different plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := app.orgID(cmd.Context())
			if err != nil {
				return err
			}

			if err := app.billing.UpgradeSubscription(cmd.Context(), orgID, plan); err != nil {
				return err
			}

			s := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), s.ok.Render("Subscription updated to "+plan+"."))
			return nil
		},
	}

	cmd.Flags().StringVar(&plan, "plan", "", "target plan")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}

func newBillingRefreshCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Resync the plan with the payment provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orgID, err := app.orgID(cmd.Context())
			if err != nil {
				return err
			}

			st, err := app.billing.Refresh(cmd.Context(), orgID)
			if err != nil {
				return err
			}

			s := newStyles()
			fmt.Fprintln(cmd.OutOrStdout(), s.ok.Render("Plan is now "+st.Plan+"."))
			return nil
		},
	}
}

// openURL hands a hosted payment page to the browser, falling back to
// printing it when no browser can be opened.
func openURL(cmd *cobra.Command, u string) error {
	if err := (navigator.Browser{}).Navigate(u); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in a browser:\n%s\n", u)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Opened in the browser.")
	return nil
}

func sortedAnyKeys(m map[string]any) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
