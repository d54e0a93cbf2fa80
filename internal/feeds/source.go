package feeds

import (
	"bytes"
	"context"
	"errors"

	"github.com/artpricematcher/price-matcher/internal/parsers/csv"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// Source names used in feeds.sources configuration
const (
	SourceLocal    = "local"
	SourceHTTPCSV  = "http_csv"
	SourceHTTPXLSX = "http_xlsx"
)

// ErrNoURL is returned by download sources for competitors without a feed url
var ErrNoURL = errors.New("competitor has no feed url")

// Result describes a feed made available for comparison
type Result struct {
	Path   string `json:"path"`
	Source string `json:"source"`
	// Rows is the number of standardized rows written, 0 for local files
	Rows int `json:"rows"`
}

// Source obtains a standardized feed for a competitor
type Source interface {
	Name() string
	Fetch(ctx context.Context, competitor *types.Competitor) (*Result, error)
}

// Downloader is the part of the HTTP client a download source needs
type Downloader interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// standardize writes rows with a usable identifier and price as a comma
// separated UTF-8 feed
func standardize(rows []types.FeedRow) ([]byte, int, error) {
	var buf bytes.Buffer
	w, err := csv.NewFeedWriter(&buf)
	if err != nil {
		return nil, 0, err
	}

	written := 0
	for _, row := range rows {
		if row.PriceErr != nil || (row.SKU == "" && row.EAN == "") {
			continue
		}
		if err := w.Write(row); err != nil {
			return nil, 0, err
		}
		written++
	}
	if err := w.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), written, nil
}
