package csv

import "errors"

// Delimiter is a supported field separator
type Delimiter rune

const (
	DelimiterComma     Delimiter = ','
	DelimiterSemicolon Delimiter = ';'
	DelimiterTab       Delimiter = '\t'
	DelimiterPipe      Delimiter = '|'
)

// Standardized feed columns. Header matching is case-insensitive.
const (
	ColumnSKU             = "sku"
	ColumnEAN             = "ean"
	ColumnCompetitorPrice = "competitor_price"
	ColumnURL             = "url"
)

// StandardHeader is the column order written for standardized feeds
var StandardHeader = []string{ColumnSKU, ColumnEAN, ColumnCompetitorPrice, ColumnURL}

var requiredColumns = []string{ColumnSKU, ColumnCompetitorPrice}

// ErrMissingColumn is returned when a feed header lacks a required column
var ErrMissingColumn = errors.New("missing required column")

// ErrMalformedRow marks a single unreadable line; reading may continue
var ErrMalformedRow = errors.New("malformed feed row")
