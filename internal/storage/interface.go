package storage

import (
	"context"
	"errors"
	"time"
)

// ErrFeedNotFound is returned when no feed file exists for a competitor
var ErrFeedNotFound = errors.New("feed file not found")

// Metadata is stored next to each feed as a .meta sidecar
type Metadata struct {
	Competitor   string    `json:"competitor"`
	Source       string    `json:"source,omitempty"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	DownloadedAt time.Time `json:"downloadedAt"`
	Rows         int       `json:"rows"`
}

// FileInfo describes a stored feed
type FileInfo struct {
	Key        string    `json:"key"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// FeedStorage keeps standardized competitor feeds named <competitor>_<timestamp>.csv
type FeedStorage interface {
	// Save writes content as a new feed for competitor
	Save(ctx context.Context, competitor string, content []byte, metadata *Metadata) (*FileInfo, error)

	// Latest returns the most recently modified feed for competitor
	Latest(ctx context.Context, competitor string) (*FileInfo, error)

	// List returns all feeds for competitor, newest first
	List(ctx context.Context, competitor string) ([]FileInfo, error)

	// Prune deletes all but the newest keep feeds and returns how many were removed
	Prune(ctx context.Context, competitor string, keep int) (int, error)
}
