package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artpricematcher/price-matcher/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and manage the global settings",
}

var settingsShowCmd = dbCommand(&cobra.Command{
	Use:   "show",
	Short: "Print the global settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := wired.Resolver.Global(cmd.Context())
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(g)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Strategy:\t%s\n", g.DiscountStrategy)
		fmt.Fprintf(w, "Min margin:\t%.2f%%\n", g.MinMarginPercent)
		fmt.Fprintf(w, "Max discount:\t%.2f%%\n", g.MaxDiscountPercent)
		fmt.Fprintf(w, "Min discount:\t%.2f%%\n", g.MinDiscountPercent)
		fmt.Fprintf(w, "Underbid:\t%.2f\n", g.PriceUnderbid)
		fmt.Fprintf(w, "Min price:\t%.2f\n", g.MinPriceThreshold)
		fmt.Fprintf(w, "Max discount behavior:\t%s\n", g.MaxDiscountBehavior)
		fmt.Fprintf(w, "Days valid:\t%d\n", g.DiscountDaysValid)
		fmt.Fprintf(w, "Customer groups:\t%v\n", g.CustomerGroups)
		fmt.Fprintf(w, "Excluded categories:\t%v\n", g.ExcludedCategories)
		fmt.Fprintf(w, "Excluded manufacturers:\t%v\n", g.ExcludedManufacturers)
		fmt.Fprintf(w, "Excluded references:\t%v\n", g.ExcludedReferences)
		fmt.Fprintf(w, "Clean expired:\t%s\n", yesNo(g.CleanExpiredDiscounts))
		if g.LastCleanRun != nil {
			fmt.Fprintf(w, "Last clean:\t%s\n", g.LastCleanRun.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
})

var settingsTokenCmd = dbCommand(&cobra.Command{
	Use:   "generate-token",
	Short: "Replace the cron token and print the new one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := settings.RotateToken(cmd.Context(), wired.ConfigStore)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
})

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsTokenCmd)
}
