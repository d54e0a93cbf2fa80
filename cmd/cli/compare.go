package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/artpricematcher/price-matcher/internal/compare"
	"github.com/artpricematcher/price-matcher/internal/feeds"
	"github.com/artpricematcher/price-matcher/internal/parsers/csv"
	"github.com/artpricematcher/price-matcher/internal/types"
)

var (
	compareFile     string
	compareDownload bool
	compareDryRun   bool
)

var compareCmd = dbCommand(&cobra.Command{
	Use:   "compare <competitor>",
	Short: "Compare a competitor feed against the catalog",
	Long: `Compare a competitor price feed against the catalog and stage the products
the shop should discount. Without --file the newest stored feed of the competitor
is used; --download fetches a fresh one through the configured feed source first.

--dry-run evaluates every row without staging anything and prints the decisions.`,
	Example: `  price-matcher compare rival
  price-matcher compare rival --download
  price-matcher compare rival --file ./feeds/rival_20260310.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runCompare,
})

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&compareFile, "file", "", "Feed file to compare (defaults to the newest stored feed)")
	compareCmd.Flags().BoolVar(&compareDownload, "download", false, "Download a fresh feed through the configured source")
	compareCmd.Flags().BoolVar(&compareDryRun, "dry-run", false, "Evaluate rows without staging them")
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	competitor, err := wired.Competitors.GetByName(ctx, args[0])
	if err != nil {
		return err
	}

	path := compareFile
	if path == "" {
		path, err = resolveFeed(cmd, competitor)
		if err != nil {
			return err
		}
	}

	feed, err := csv.OpenFeed(path)
	if err != nil {
		return err
	}
	rows, err := feed.ReadAll()
	if err != nil {
		return err
	}
	logger.Info().Str("file", path).Int("rows", len(rows)).Msg("Feed loaded")

	if compareDryRun {
		results, st, err := wired.Compare.DryRun(ctx, competitor.ID, rows)
		if err != nil {
			return err
		}
		return printDryRun(results, st)
	}

	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Comparing "+competitor.Name),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
	st, err := wired.Compare.Run(ctx, compare.RunRequest{
		CompetitorID: competitor.ID,
		FeedPath:     path,
		Initiator:    types.InitiatorManual,
		Progress:     func(compare.RowResult) { _ = bar.Add(1) },
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}
	return printCompareStats(st)
}

// resolveFeed downloads through the configured source with --download and
// otherwise takes the newest stored feed
func resolveFeed(cmd *cobra.Command, competitor *types.Competitor) (string, error) {
	var src feeds.Source
	if compareDownload {
		var err error
		if src, err = wired.Sources.SourceFor(competitor.Name); err != nil {
			return "", err
		}
	} else {
		src = feeds.NewLocalSource(wired.Storage)
	}
	res, err := src.Fetch(cmd.Context(), competitor)
	if err != nil {
		return "", err
	}
	logger.Info().Str("source", res.Source).Str("file", res.Path).Msg("Feed resolved")
	return res.Path, nil
}

func printCompareStats(st *compare.Stats) error {
	if outputFormat == "json" {
		return printJSON(st)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Competitor:\t%s\n", st.Competitor)
	fmt.Fprintf(w, "Rows:\t%d\n", st.TotalProducts)
	fmt.Fprintf(w, "Found:\t%d\n", st.ProductsFound)
	fmt.Fprintf(w, "Not found:\t%d\n", st.ProductsNotFound)
	fmt.Fprintf(w, "Matched:\t%d\n", st.ProductsMatched)
	fmt.Fprintf(w, "Skipped:\t%d\n", st.ProductsSkipped)
	fmt.Fprintf(w, "Duration:\t%s\n", st.ExecutionTime)
	return w.Flush()
}

func printDryRun(results []compare.RowResult, st *compare.Stats) error {
	if outputFormat == "json" {
		return printJSON(map[string]interface{}{"rows": results, "stats": st})
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROW\tSKU\tEAN\tPRICE\tOUTCOME\tPRODUCT\tNEW PRICE\tREASON")
	for _, r := range results {
		newPrice := "-"
		if r.Decision != nil && r.Decision.Apply {
			newPrice = csv.FormatPrice(r.Decision.NewPrice)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.Row.RowNumber, r.Row.SKU, r.Row.EAN, csv.FormatPrice(r.Row.CompetitorPrice),
			r.Outcome, r.ProductID, newPrice, r.Reason)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d rows: %d matched, %d skipped, %d not found\n",
		st.TotalProducts, st.ProductsMatched, st.ProductsSkipped, st.ProductsNotFound)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
