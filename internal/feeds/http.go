package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/artpricematcher/price-matcher/internal/parsers/archive"
	"github.com/artpricematcher/price-matcher/internal/parsers/csv"
	"github.com/artpricematcher/price-matcher/internal/parsers/xlsx"
	"github.com/artpricematcher/price-matcher/internal/storage"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// HTTPCSVSource downloads a CSV feed from the competitor url and stores a
// standardized copy
type HTTPCSVSource struct {
	client Downloader
	store  storage.FeedStorage
}

// NewHTTPCSVSource creates a CSV download source
func NewHTTPCSVSource(client Downloader, store storage.FeedStorage) *HTTPCSVSource {
	return &HTTPCSVSource{client: client, store: store}
}

func (s *HTTPCSVSource) Name() string { return SourceHTTPCSV }

func (s *HTTPCSVSource) Fetch(ctx context.Context, competitor *types.Competitor) (*Result, error) {
	data, err := download(ctx, s.client, competitor)
	if err != nil {
		return nil, err
	}
	if archive.IsZip(data) {
		if data, err = unwrap(ctx, data, competitor); err != nil {
			return nil, err
		}
	}

	fr, err := csv.NewFeedReader(data)
	if err != nil {
		return nil, fmt.Errorf("feed from %s: %w", competitor.URL, err)
	}
	rows, err := fr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("feed from %s: %w", competitor.URL, err)
	}
	return save(ctx, s.store, competitor, s.Name(), rows)
}

// HTTPXLSXSource downloads a workbook and converts its first sheet
type HTTPXLSXSource struct {
	client Downloader
	store  storage.FeedStorage
	opts   xlsx.Options
}

// NewHTTPXLSXSource creates an XLSX download source
func NewHTTPXLSXSource(client Downloader, store storage.FeedStorage, opts xlsx.Options) *HTTPXLSXSource {
	return &HTTPXLSXSource{client: client, store: store, opts: opts}
}

func (s *HTTPXLSXSource) Name() string { return SourceHTTPXLSX }

func (s *HTTPXLSXSource) Fetch(ctx context.Context, competitor *types.Competitor) (*Result, error) {
	data, err := download(ctx, s.client, competitor)
	if err != nil {
		return nil, err
	}
	if archive.IsZip(data) && !archive.IsWorkbook(data) {
		if data, err = unwrap(ctx, data, competitor); err != nil {
			return nil, err
		}
	}

	rows, err := xlsx.ReadFeed(data, s.opts)
	if err != nil {
		return nil, fmt.Errorf("workbook from %s: %w", competitor.URL, err)
	}
	return save(ctx, s.store, competitor, s.Name(), rows)
}

func download(ctx context.Context, client Downloader, competitor *types.Competitor) ([]byte, error) {
	if competitor.URL == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoURL, competitor.Name)
	}
	data, err := client.GetBytes(ctx, competitor.URL)
	if err != nil {
		return nil, fmt.Errorf("download feed for %s: %w", competitor.Name, err)
	}
	return data, nil
}

// unwrap extracts the feed from a zipped download
func unwrap(ctx context.Context, data []byte, competitor *types.Competitor) ([]byte, error) {
	entry, err := archive.ExtractFeed(ctx, data, archive.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("feed archive from %s: %w", competitor.URL, err)
	}
	return entry.Content, nil
}

func save(ctx context.Context, store storage.FeedStorage, competitor *types.Competitor, source string, rows []types.FeedRow) (*Result, error) {
	content, written, err := standardize(rows)
	if err != nil {
		return nil, fmt.Errorf("standardize feed for %s: %w", competitor.Name, err)
	}

	info, err := store.Save(ctx, competitor.Name, content, &storage.Metadata{
		Competitor:   competitor.Name,
		Source:       source,
		SourceURL:    competitor.URL,
		DownloadedAt: time.Now().UTC(),
		Rows:         written,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Path: info.Path, Source: source, Rows: written}, nil
}
