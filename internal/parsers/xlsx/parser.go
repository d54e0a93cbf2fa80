package xlsx

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/artpricematcher/price-matcher/internal/parsers/csv"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// Options controls how a competitor workbook maps onto the standard columns
type Options struct {
	// Sheet selects a worksheet by name; empty means the first sheet
	Sheet string
	// Aliases lists additional header names per standard column
	Aliases map[string][]string
}

// defaultAliases covers the headers competitors commonly export
var defaultAliases = map[string][]string{
	csv.ColumnSKU:             {"sku", "artikelnummer", "art.nr", "reference", "item"},
	csv.ColumnEAN:             {"ean", "ean13", "gtin", "barcode", "streckkod"},
	csv.ColumnCompetitorPrice: {"competitor_price", "price", "pris", "pris inkl moms"},
	csv.ColumnURL:             {"url", "link", "länk"},
}

// ReadFeed extracts feed rows from workbook content. The first non-empty
// row is the header. Missing sku or price headers return csv.ErrMissingColumn.
func ReadFeed(content []byte, opts Options) ([]types.FeedRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	start := 0
	for start < len(rows) && emptyRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, fmt.Errorf("%w: %s (empty sheet)", csv.ErrMissingColumn, csv.ColumnSKU)
	}

	columns := resolveColumns(rows[start], opts.Aliases)
	for _, col := range []string{csv.ColumnSKU, csv.ColumnCompetitorPrice} {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%w: %s", csv.ErrMissingColumn, col)
		}
	}

	feed := make([]types.FeedRow, 0, len(rows)-start-1)
	for i := start + 1; i < len(rows); i++ {
		if emptyRow(rows[i]) {
			continue
		}
		row := types.FeedRow{
			SKU:       cell(rows[i], columns, csv.ColumnSKU),
			EAN:       cell(rows[i], columns, csv.ColumnEAN),
			URL:       cell(rows[i], columns, csv.ColumnURL),
			RowNumber: i + 1,
		}
		row.CompetitorPrice, row.PriceErr = csv.ParsePrice(cell(rows[i], columns, csv.ColumnCompetitorPrice))
		feed = append(feed, row)
	}
	return feed, nil
}

func resolveColumns(header []string, extra map[string][]string) map[string]int {
	lookup := make(map[string]string)
	for col, names := range defaultAliases {
		for _, n := range names {
			lookup[n] = col
		}
	}
	for col, names := range extra {
		for _, n := range names {
			lookup[strings.ToLower(strings.TrimSpace(n))] = col
		}
	}

	columns := make(map[string]int)
	for i, h := range header {
		col, ok := lookup[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := columns[col]; !seen {
			columns[col] = i
		}
	}
	return columns
}

func cell(row []string, columns map[string]int, col string) string {
	i, ok := columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func emptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
