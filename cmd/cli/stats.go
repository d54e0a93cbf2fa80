package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	summaryDays int
	recentLimit int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show operation statistics",
}

var statsSummaryCmd = dbCommand(&cobra.Command{
	Use:   "summary",
	Short: "Aggregate runs per operation and competitor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := wired.Recorder.Summary(cmd.Context(), summaryDays)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(rows)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "OPERATION\tCOMPETITOR\tRUNS\tPRODUCTS\tSUCCESS\tERRORS\tSKIPPED\tTIME\tLAST RUN")
		for _, s := range rows {
			name := s.CompetitorName
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
				s.Operation, name, s.Runs, s.TotalProducts, s.SuccessCount, s.ErrorCount, s.SkippedCount,
				s.TotalTime, s.LastRun.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
})

var statsRecentCmd = dbCommand(&cobra.Command{
	Use:   "recent",
	Short: "List the latest operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := wired.Recorder.Recent(cmd.Context(), recentLimit)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(rows)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tOPERATION\tCOMPETITOR\tPRODUCTS\tSUCCESS\tERRORS\tSKIPPED\tTIME\tBY")
		for _, r := range rows {
			name := r.Competitor
			if name == "" {
				name = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\t%s\n",
				r.ExecutionDate.Format("2006-01-02 15:04:05"), r.Operation, name,
				r.TotalProducts, r.SuccessCount, r.ErrorCount, r.SkippedCount, r.ExecutionTime, r.InitiatedBy)
		}
		return w.Flush()
	},
})

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsSummaryCmd, statsRecentCmd)
	statsSummaryCmd.Flags().IntVar(&summaryDays, "days", 30, "Look back this many days")
	statsRecentCmd.Flags().IntVar(&recentLimit, "limit", 50, "Number of operations")
}
