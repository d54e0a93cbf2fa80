package feeds

import (
	"context"
	"fmt"

	"github.com/artpricematcher/price-matcher/internal/storage"
	"github.com/artpricematcher/price-matcher/internal/types"
)

// LocalSource uses the newest file already present in feed storage,
// e.g. one uploaded by hand or by an external job
type LocalSource struct {
	store storage.FeedStorage
}

// NewLocalSource creates a local source over store
func NewLocalSource(store storage.FeedStorage) *LocalSource {
	return &LocalSource{store: store}
}

func (s *LocalSource) Name() string { return SourceLocal }

func (s *LocalSource) Fetch(ctx context.Context, competitor *types.Competitor) (*Result, error) {
	info, err := s.store.Latest(ctx, competitor.Name)
	if err != nil {
		return nil, fmt.Errorf("local feed for %s: %w", competitor.Name, err)
	}
	res := &Result{Path: info.Path, Source: SourceLocal}
	if info.Metadata != nil {
		res.Rows = info.Metadata.Rows
	}
	return res, nil
}
