package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/artpricematcher/price-matcher/internal/parsers/charset"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// FeedReader streams rows of a standardized competitor feed
type FeedReader struct {
	r         *stdcsv.Reader
	columns   map[string]int
	delimiter Delimiter
	line      int
}

// OpenFeed reads and decodes the feed at path
func OpenFeed(path string) (*FeedReader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	return NewFeedReader(data)
}

// NewFeedReader decodes data, detects its delimiter and validates the header
func NewFeedReader(data []byte) (*FeedReader, error) {
	content, err := charset.Decode(data, "")
	if err != nil {
		return nil, err
	}

	delim := DetectDelimiter(content)
	r := stdcsv.NewReader(strings.NewReader(content))
	r.Comma = rune(delim)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s (empty feed)", ErrMissingColumn, ColumnSKU)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	return &FeedReader{r: r, columns: columns, delimiter: delim, line: 1}, nil
}

// Delimiter returns the detected field separator
func (f *FeedReader) Delimiter() Delimiter {
	return f.delimiter
}

// HasColumn reports whether the header contains name
func (f *FeedReader) HasColumn(name string) bool {
	_, ok := f.columns[strings.ToLower(name)]
	return ok
}

// Next returns the next non-blank row or io.EOF. A price that fails to
// parse is reported through FeedRow.PriceErr rather than as an error.
func (f *FeedReader) Next() (types.FeedRow, error) {
	for {
		record, err := f.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return types.FeedRow{}, io.EOF
			}
			var perr *stdcsv.ParseError
			if errors.As(err, &perr) {
				f.line = perr.Line
				return types.FeedRow{RowNumber: perr.Line}, fmt.Errorf("%w: %v", ErrMalformedRow, perr)
			}
			return types.FeedRow{}, fmt.Errorf("read line %d: %w", f.line+1, err)
		}
		f.line++

		if blank(record) {
			continue
		}

		row := types.FeedRow{
			SKU:       f.field(record, ColumnSKU),
			EAN:       f.field(record, ColumnEAN),
			URL:       f.field(record, ColumnURL),
			RowNumber: f.line,
		}
		row.CompetitorPrice, row.PriceErr = ParsePrice(f.field(record, ColumnCompetitorPrice))
		return row, nil
	}
}

// ReadAll drains the reader, dropping malformed rows
func (f *FeedReader) ReadAll() ([]types.FeedRow, error) {
	var rows []types.FeedRow
	for {
		row, err := f.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if errors.Is(err, ErrMalformedRow) {
			continue
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

func (f *FeedReader) field(record []string, name string) string {
	i, ok := f.columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// FeedWriter writes a standardized comma separated feed
type FeedWriter struct {
	w *stdcsv.Writer
}

// NewFeedWriter writes the standard header to w
func NewFeedWriter(w io.Writer) (*FeedWriter, error) {
	cw := stdcsv.NewWriter(w)
	if err := cw.Write(StandardHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &FeedWriter{w: cw}, nil
}

// Write appends one row
func (f *FeedWriter) Write(row types.FeedRow) error {
	return f.w.Write([]string{row.SKU, row.EAN, FormatPrice(row.CompetitorPrice), row.URL})
}

// Close flushes buffered rows
func (f *FeedWriter) Close() error {
	f.w.Flush()
	return f.w.Error()
}
