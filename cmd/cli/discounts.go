package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artpricematcher/price-matcher/internal/discounts"
	"github.com/artpricematcher/price-matcher/internal/parsers/csv"
	"github.com/artpricematcher/price-matcher/internal/report"
	"github.com/artpricematcher/price-matcher/internal/types"
)

var discountsCmd = &cobra.Command{
	Use:     "discounts",
	Aliases: []string{"discount"},
	Short:   "Inspect and manage active discounts",
}

var (
	discountsCompetitor string
	discountsSearch     string
	discountsPage       int
	discountsLimit      int
	extendDays          int
	exportFile          string
	matchesFile         string
)

func discountFilter(cmd *cobra.Command) (discounts.Filter, error) {
	f := discounts.Filter{Search: discountsSearch, Page: discountsPage, Limit: discountsLimit}
	if discountsCompetitor != "" {
		c, err := lookupCompetitor(cmd, discountsCompetitor)
		if err != nil {
			return f, err
		}
		f.CompetitorID = &c.ID
	}
	return f, nil
}

var discountsListCmd = dbCommand(&cobra.Command{
	Use:   "list",
	Short: "List active discounts, soonest expiring first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := discountFilter(cmd)
		if err != nil {
			return err
		}
		page, err := wired.Discounts.List(cmd.Context(), f)
		if err != nil {
			return err
		}
		if outputFormat == "json" {
			return printJSON(page)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPRODUCT\tREFERENCE\tCOMPETITOR\tREGULAR\tDISCOUNT\tPERCENT\tEXPIRES\tDAYS LEFT")
		for _, d := range page.Items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%.1f%%\t%s\t%d\n",
				d.ID, d.ProductName, d.Reference, d.CompetitorName,
				csv.FormatPrice(d.RegularPrice), csv.FormatPrice(d.DiscountPrice), d.DiscountPercent,
				d.DateExpiration.Format("2006-01-02 15:04"), d.DaysLeft)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nPage %d, %d of %d discounts\n", page.Page, len(page.Items), page.Total)
		return nil
	},
})

var discountsExtendCmd = dbCommand(&cobra.Command{
	Use:   "extend <id>",
	Short: "Push back the expiration of a discount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discount id %q", args[0])
		}
		d, err := wired.Discounts.Extend(cmd.Context(), id, extendDays)
		if err != nil {
			return err
		}
		fmt.Printf("Discount %d now expires %s\n", d.ID, d.DateExpiration.Format("2006-01-02 15:04:05"))
		return nil
	},
})

var discountsRemoveCmd = dbCommand(&cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a discount and its specific price",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid discount id %q", args[0])
		}
		if err := wired.Discounts.Remove(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Removed discount %d\n", id)
		return nil
	},
})

var discountsExportCmd = dbCommand(&cobra.Command{
	Use:   "export",
	Short: "Write active discounts to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := discountFilter(cmd)
		if err != nil {
			return err
		}
		f.Limit = 200

		var all []types.ActiveDiscountView
		for f.Page = 1; ; f.Page++ {
			page, err := wired.Discounts.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			all = append(all, page.Items...)
			if len(page.Items) < f.Limit || len(all) >= page.Total {
				break
			}
		}

		out, err := os.Create(exportFile)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := report.WriteDiscounts(out, all); err != nil {
			return err
		}
		fmt.Printf("Exported %d discounts to %s\n", len(all), exportFile)
		return out.Close()
	},
})

var matchesExportCmd = dbCommand(&cobra.Command{
	Use:   "matches <competitor>",
	Short: "Write the staged price differences of a competitor to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := lookupCompetitor(cmd, args[0])
		if err != nil {
			return err
		}
		matches, err := wired.Compare.PriceDifferences(cmd.Context(), c.ID)
		if err != nil {
			return err
		}
		out, err := os.Create(matchesFile)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := report.WriteMatches(out, matches); err != nil {
			return err
		}
		fmt.Printf("Exported %d matches to %s\n", len(matches), matchesFile)
		return out.Close()
	},
})

func init() {
	rootCmd.AddCommand(discountsCmd)
	discountsCmd.AddCommand(discountsListCmd, discountsExtendCmd, discountsRemoveCmd, discountsExportCmd, matchesExportCmd)

	for _, c := range []*cobra.Command{discountsListCmd, discountsExportCmd} {
		c.Flags().StringVar(&discountsCompetitor, "competitor", "", "Only discounts of this competitor (name or id)")
		c.Flags().StringVar(&discountsSearch, "search", "", "Match product name or reference")
	}
	discountsListCmd.Flags().IntVar(&discountsPage, "page", 1, "Page number")
	discountsListCmd.Flags().IntVar(&discountsLimit, "limit", 25, "Discounts per page (max 200)")
	discountsExtendCmd.Flags().IntVar(&extendDays, "days", discounts.DefaultExtendDays, "Days to add")
	discountsExportCmd.Flags().StringVar(&exportFile, "file", "discounts.xlsx", "Output workbook")
	matchesExportCmd.Flags().StringVar(&matchesFile, "file", "matches.xlsx", "Output workbook")
}
