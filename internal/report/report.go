// Package report exports staged matches and active discounts as XLSX
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/artpricematcher/price-matcher/internal/types"
)

const (
	SheetMatches   = "Matches"
	SheetDiscounts = "Discounts"

	dateFormat = "2006-01-02 15:04"
)

var matchHeader = []interface{}{
	"Product ID", "Reference", "EAN13", "Wholesale", "Current Price", "Current Margin %",
	"Competitor Price", "New Price", "New Margin %", "Discount %", "Updated", "Feed", "URL",
}

var discountHeader = []interface{}{
	"ID", "Product ID", "Product", "Reference", "Competitor", "Regular Price", "Discount Price",
	"Competitor Price", "Discount %", "Margin %", "Added", "Expires", "Days Left",
}

// WriteMatches writes the staged matches of one competitor as a workbook
func WriteMatches(w io.Writer, rows []types.PriceMatch) error {
	return write(w, SheetMatches, matchHeader, len(rows), func(i int) []interface{} {
		m := rows[i]
		return []interface{}{
			m.ProductID, m.Reference, m.EAN13, m.WholesalePrice, m.CurrentPrice, m.CurrentMargin,
			m.CompetitorPrice, m.NewPrice, m.NewMargin, m.DiscountPercent,
			m.LastUpdate.Format(dateFormat), m.PriceFile, m.URL,
		}
	})
}

// WriteDiscounts writes enriched active discounts as a workbook
func WriteDiscounts(w io.Writer, rows []types.ActiveDiscountView) error {
	return write(w, SheetDiscounts, discountHeader, len(rows), func(i int) []interface{} {
		d := rows[i]
		return []interface{}{
			d.ID, d.ProductID, d.ProductName, d.Reference, d.CompetitorName, d.RegularPrice,
			d.DiscountPrice, d.CompetitorPrice, d.DiscountPercent, d.MarginPercent,
			d.DateAdd.Format(dateFormat), d.DateExpiration.Format(dateFormat), d.DaysLeft,
		}
	})
}

func write(w io.Writer, sheet string, header []interface{}, n int, row func(int) []interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("error creating header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("error styling header: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("error freezing header: %w", err)
	}

	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
