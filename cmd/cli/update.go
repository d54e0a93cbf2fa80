package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/types"
)

var updateCmd = dbCommand(&cobra.Command{
	Use:   "update <competitor>",
	Short: "Promote staged matches of a competitor into specific prices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := wired.Discounts.UpdatePrices(cmd.Context(), discounts.UpdateRequest{
			CompetitorName: args[0],
			Initiator:      types.InitiatorManual,
		})
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(res)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Competitor:\t%s\n", res.Competitor)
		fmt.Fprintf(w, "Checked:\t%d\n", res.TotalChecked)
		fmt.Fprintf(w, "Updated:\t%d\n", res.Updated)
		fmt.Fprintf(w, "Skipped:\t%d\n", res.Skipped)
		fmt.Fprintf(w, "Failed:\t%d\n", res.Failed)
		fmt.Fprintf(w, "Cleaned:\t%d\n", res.CleanedDiscounts)
		fmt.Fprintf(w, "Duration:\t%s\n", res.ExecutionTime)
		return w.Flush()
	},
})

var updateAllCmd = dbCommand(&cobra.Command{
	Use:   "update-all",
	Short: "Update every active competitor with cron updates enabled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := wired.Discounts.UpdateAll(cmd.Context(), types.InitiatorManual)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(res)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COMPETITOR\tCHECKED\tUPDATED\tSKIPPED\tFAILED\tERROR")
		for _, c := range res.Competitors {
			if c.Result == nil {
				fmt.Fprintf(w, "%s\t-\t-\t-\t-\t%s\n", c.Name, c.Error)
				continue
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t\n", c.Name,
				c.Result.TotalChecked, c.Result.Updated, c.Result.Skipped, c.Result.Failed)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\n%d of %d competitors updated, %d discounts cleaned in %s\n",
			res.Succeeded, res.TotalCompetitors, res.CleanedDiscounts, res.ExecutionTime)
		return nil
	},
})

var cleanCmd = dbCommand(&cobra.Command{
	Use:   "clean",
	Short: "Remove expired discounts and their specific prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := wired.Discounts.CleanExpired(cmd.Context(), types.InitiatorManual)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired discounts (%d tracked, %d untracked)\n", res.Total, res.Tracked, res.Untracked)
		return nil
	},
})

var cronCmd = dbCommand(&cobra.Command{
	Use:   "cron",
	Short: "Run the full download, compare and update cycle once",
	Long: `Run the scheduled cycle once for every active competitor with cron updates
enabled: download the feed, compare it, promote the matches, then clean
expired discounts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := wired.Runner.RunCron(cmd.Context())
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(report)
		}
		fmt.Print(report.String())
		return nil
	},
})

func init() {
	rootCmd.AddCommand(updateCmd, updateAllCmd, cleanCmd, cronCmd)
}
