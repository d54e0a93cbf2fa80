// Package archive unwraps feeds that competitors publish inside ZIP files
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNoFeedEntry is returned when an archive holds no usable feed file
var ErrNoFeedEntry = errors.New("archive contains no feed file")

var zipMagic = []byte("PK\x03\x04")

// Options limits what is extracted
type Options struct {
	// MaxFileSize is the maximum uncompressed entry size in bytes (0 = unlimited)
	MaxFileSize int64
	// AllowedExtensions filters entries by extension (empty = all)
	AllowedExtensions []string
	// SkipPatterns drops entries whose name contains any pattern
	SkipPatterns []string
}

// DefaultOptions accepts CSV and XLSX entries up to 100MB
func DefaultOptions() Options {
	return Options{
		MaxFileSize:       100 * 1024 * 1024,
		AllowedExtensions: []string{".csv", ".txt", ".xlsx"},
		SkipPatterns:      []string{"__MACOSX", ".DS_Store", "Thumbs.db", "desktop.ini"},
	}
}

// Entry is one extracted file
type Entry struct {
	Name    string
	Content []byte
}

// IsZip reports whether data starts with a ZIP local file header
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// IsWorkbook reports whether a ZIP payload is itself an OOXML document
// rather than an archive wrapping one
func IsWorkbook(data []byte) bool {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return false
	}
	for _, f := range r.File {
		if f.Name == "[Content_Types].xml" {
			return true
		}
	}
	return false
}

// ExtractFeed returns the first allowed entry in name order
func ExtractFeed(ctx context.Context, data []byte, opts Options) (*Entry, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, fmt.Errorf("failed to open ZIP: %w", err)
	}

	files := make([]*zip.File, 0, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		safeName, err := sanitizeFilename(file.Name)
		if err != nil {
			continue
		}
		if skip(safeName, opts) || !allowed(safeName, opts) {
			continue
		}
		if opts.MaxFileSize > 0 && int64(file.UncompressedSize64) > opts.MaxFileSize {
			return nil, fmt.Errorf("file %s exceeds maximum size (%d > %d)",
				safeName, file.UncompressedSize64, opts.MaxFileSize)
		}

		content, err := readWithLimit(file, safeName, opts.MaxFileSize)
		if err != nil {
			return nil, err
		}
		return &Entry{Name: safeName, Content: content}, nil
	}
	return nil, ErrNoFeedEntry
}

// readWithLimit enforces the size limit on the bytes actually inflated,
// not just the declared size
func readWithLimit(file *zip.File, name string, limit int64) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s in ZIP: %w", name, err)
	}
	defer rc.Close()

	var reader io.Reader = rc
	if limit > 0 {
		reader = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s from ZIP: %w", name, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("file %s exceeds maximum size (actual data > %d bytes)", name, limit)
	}
	return data, nil
}

// sanitizeFilename rejects absolute and escaping paths and flattens the rest
// to their base name
func sanitizeFilename(filename string) (string, error) {
	if path.IsAbs(filename) || filepath.IsAbs(filename) {
		return "", fmt.Errorf("absolute path not allowed: %s", filename)
	}
	if len(filename) >= 2 && filename[1] == ':' {
		return "", fmt.Errorf("drive letter not allowed: %s", filename)
	}
	filename = strings.ReplaceAll(filename, "\\", "/")

	cleaned := path.Clean(filename)
	if strings.HasPrefix(cleaned, "..") || strings.HasPrefix(cleaned, "/") {
		return "", fmt.Errorf("path traversal not allowed: %s", filename)
	}
	for _, part := range strings.Split(cleaned, "/") {
		if part == ".." {
			return "", fmt.Errorf("path traversal not allowed: %s", filename)
		}
	}

	base := path.Base(cleaned)
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("invalid filename: %s", filename)
	}
	return base, nil
}

func skip(name string, opts Options) bool {
	for _, p := range opts.SkipPatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func allowed(name string, opts Options) bool {
	if len(opts.AllowedExtensions) == 0 {
		return true
	}
	ext := filepath.Ext(name)
	for _, a := range opts.AllowedExtensions {
		if strings.EqualFold(ext, a) {
			return true
		}
	}
	return false
}
