package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TimestampLayout is the timestamp part of a feed file name
const TimestampLayout = "2006-01-02_15-04-05"

// LocalStorage implements FeedStorage on the local filesystem
type LocalStorage struct {
	basePath string
	now      func() time.Time
}

// NewLocalStorage creates the feed directory if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// BasePath returns the feed directory
func (s *LocalStorage) BasePath() string {
	return s.basePath
}

// FeedKey builds the file name for a feed downloaded at t
func FeedKey(competitor string, t time.Time) string {
	return fmt.Sprintf("%s_%s.csv", strings.ToLower(competitor), t.Format(TimestampLayout))
}

// Save writes content through a temp file so readers never see a partial feed
func (s *LocalStorage) Save(ctx context.Context, competitor string, content []byte, metadata *Metadata) (*FileInfo, error) {
	key := FeedKey(competitor, s.now())
	fullPath := filepath.Join(s.basePath, key)

	tmp, err := os.CreateTemp(s.basePath, ".feed-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write feed %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close feed %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return nil, fmt.Errorf("failed to move feed into place: %w", err)
	}

	if metadata != nil {
		metaBytes, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if err := os.WriteFile(fullPath+".meta", metaBytes, 0644); err != nil {
			return nil, fmt.Errorf("failed to write metadata for %s: %w", key, err)
		}
	}

	info, err := s.stat(key)
	if err != nil {
		return nil, err
	}
	info.Checksum = ComputeChecksum(content)
	return info, nil
}

// Latest returns ErrFeedNotFound when the competitor has no feeds
func (s *LocalStorage) Latest(ctx context.Context, competitor string) (*FileInfo, error) {
	files, err := s.List(ctx, competitor)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrFeedNotFound, competitor)
	}
	return &files[0], nil
}

// List orders by modification time, then by name for feeds written in the same second
func (s *LocalStorage) List(ctx context.Context, competitor string) ([]FileInfo, error) {
	pattern := filepath.Join(s.basePath, strings.ToLower(competitor)+"_*.csv")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}

	files := make([]FileInfo, 0, len(matches))
	for _, m := range matches {
		info, err := s.stat(filepath.Base(m))
		if err != nil {
			return nil, err
		}
		files = append(files, *info)
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModifiedAt.Equal(files[j].ModifiedAt) {
			return files[i].ModifiedAt.After(files[j].ModifiedAt)
		}
		return files[i].Key > files[j].Key
	})
	return files, nil
}

// Prune keeps the newest keep feeds
func (s *LocalStorage) Prune(ctx context.Context, competitor string, keep int) (int, error) {
	files, err := s.List(ctx, competitor)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}

	removed := 0
	for i := keep; i < len(files); i++ {
		if err := os.Remove(files[i].Path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to delete feed %s: %w", files[i].Key, err)
		}
		os.Remove(files[i].Path + ".meta")
		removed++
	}
	return removed, nil
}

func (s *LocalStorage) stat(key string) (*FileInfo, error) {
	fullPath := filepath.Join(s.basePath, key)
	st, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat feed %s: %w", key, err)
	}

	info := &FileInfo{
		Key:        key,
		Path:       fullPath,
		Size:       st.Size(),
		ModifiedAt: st.ModTime(),
	}
	if metaBytes, err := os.ReadFile(fullPath + ".meta"); err == nil {
		var metadata Metadata
		if err := json.Unmarshal(metaBytes, &metadata); err == nil {
			info.Metadata = &metadata
		}
	}
	return info, nil
}

// ComputeChecksum computes the SHA256 checksum of content
func ComputeChecksum(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
