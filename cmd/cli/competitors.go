package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artpricematcher/price-matcher/internal/competitors"
	"github.com/artpricematcher/price-matcher/internal/types"
)

var competitorsCmd = &cobra.Command{
	Use:     "competitors",
	Aliases: []string{"competitor"},
	Short:   "Manage tracked competitors",
}

var competitorsListCmd = dbCommand(&cobra.Command{
	Use:   "list",
	Short: "List competitors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := wired.Competitors.List(cmd.Context())
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(list)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tACTIVE\tCRON\tOVERRIDES\tURL")
		for _, c := range list {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
				c.ID, c.Name, yesNo(c.Active), yesNo(c.CronUpdate), yesNo(c.OverrideDiscountSettings), c.URL)
		}
		return w.Flush()
	},
})

var competitorDetails competitors.Details

var competitorsAddCmd = dbCommand(&cobra.Command{
	Use:   "add <name>",
	Short: "Add a competitor",
	Example: `  price-matcher competitors add rival --url https://rival.example/feed.csv --cron`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := competitorDetails
		d.Name = args[0]
		c, err := wired.Competitors.Add(cmd.Context(), d)
		if err != nil {
			return err
		}
		fmt.Printf("Added competitor %s (id %d)\n", c.Name, c.ID)
		return nil
	},
})

var competitorsEditCmd = dbCommand(&cobra.Command{
	Use:   "edit <competitor>",
	Short: "Change the feed url and cron flags of a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupCompetitor(cmd, args[0])
		if err != nil {
			return err
		}
		d := competitorDetails
		if !cmd.Flags().Changed("url") {
			d.URL = c.URL
		}
		if _, err := wired.Competitors.Update(cmd.Context(), c.ID, d); err != nil {
			return err
		}
		fmt.Printf("Updated competitor %s\n", c.Name)
		return nil
	},
})

var competitorsToggleCmd = dbCommand(&cobra.Command{
	Use:   "toggle <competitor>",
	Short: "Activate or deactivate a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupCompetitor(cmd, args[0])
		if err != nil {
			return err
		}
		active, err := wired.Competitors.Toggle(cmd.Context(), c.ID)
		if err != nil {
			return err
		}
		state := "deactivated"
		if active {
			state = "activated"
		}
		fmt.Printf("Competitor %s %s\n", c.Name, state)
		return nil
	},
})

var competitorsDeleteCmd = dbCommand(&cobra.Command{
	Use:   "delete <competitor>",
	Short: "Delete a competitor with its staged matches and tracked discounts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupCompetitor(cmd, args[0])
		if err != nil {
			return err
		}
		if err := wired.Competitors.Delete(cmd.Context(), c.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted competitor %s\n", c.Name)
		return nil
	},
})

var (
	overridesOff  bool
	overrideFlags = struct {
		strategy  string
		margin    float64
		discount  float64
		underbid  float64
		threshold float64
		days      int
	}{}
)

var competitorsSettingsCmd = dbCommand(&cobra.Command{
	Use:   "settings <competitor>",
	Short: "Set the discount overrides of a competitor",
	Long: `Set per-competitor discount overrides. Only the flags given are stored;
the others fall back to the global settings. --off clears every override.`,
	Example: `  price-matcher competitors settings rival --min-margin 15 --underbid 0.5
  price-matcher competitors settings rival --off`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupCompetitor(cmd, args[0])
		if err != nil {
			return err
		}
		o := competitors.Overrides{Enabled: !overridesOff}
		flags := cmd.Flags()
		if flags.Changed("strategy") {
			o.DiscountStrategy = &overrideFlags.strategy
		}
		if flags.Changed("min-margin") {
			o.MinMarginPercent = &overrideFlags.margin
		}
		if flags.Changed("max-discount") {
			o.MaxDiscountPercent = &overrideFlags.discount
		}
		if flags.Changed("underbid") {
			o.PriceUnderbid = &overrideFlags.underbid
		}
		if flags.Changed("min-price") {
			o.MinPriceThreshold = &overrideFlags.threshold
		}
		if flags.Changed("days") {
			o.DiscountDaysValid = &overrideFlags.days
		}

		updated, err := wired.Competitors.UpdateSettings(cmd.Context(), c.ID, o)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(updated)
		}
		if !updated.OverrideDiscountSettings {
			fmt.Printf("Competitor %s uses the global settings\n", updated.Name)
			return nil
		}
		fmt.Printf("Stored overrides for %s\n", updated.Name)
		return nil
	},
})

func init() {
	rootCmd.AddCommand(competitorsCmd)
	competitorsCmd.AddCommand(competitorsListCmd, competitorsAddCmd, competitorsEditCmd,
		competitorsToggleCmd, competitorsDeleteCmd, competitorsSettingsCmd)

	for _, c := range []*cobra.Command{competitorsAddCmd, competitorsEditCmd} {
		c.Flags().StringVar(&competitorDetails.URL, "url", "", "Feed download url")
		c.Flags().BoolVar(&competitorDetails.CronDownload, "cron-download", false, "Download the feed on schedule")
		c.Flags().BoolVar(&competitorDetails.CronCompare, "cron-compare", false, "Compare the feed on schedule")
		c.Flags().BoolVar(&competitorDetails.CronUpdate, "cron", false, "Include in the scheduled update cycle")
	}

	f := competitorsSettingsCmd.Flags()
	f.BoolVar(&overridesOff, "off", false, "Clear every override")
	f.StringVar(&overrideFlags.strategy, "strategy", "", "Discount strategy: margin, discount or both")
	f.Float64Var(&overrideFlags.margin, "min-margin", 0, "Minimum margin percent")
	f.Float64Var(&overrideFlags.discount, "max-discount", 0, "Maximum discount percent")
	f.Float64Var(&overrideFlags.underbid, "underbid", 0, "Amount to go below the competitor price")
	f.Float64Var(&overrideFlags.threshold, "min-price", 0, "Ignore products cheaper than this")
	f.IntVar(&overrideFlags.days, "days", 0, "Days a discount stays valid")
}

// lookupCompetitor accepts a numeric id or a name
func lookupCompetitor(cmd *cobra.Command, ref string) (*types.Competitor, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return wired.Competitors.Get(cmd.Context(), id)
	}
	return wired.Competitors.GetByName(cmd.Context(), ref)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
