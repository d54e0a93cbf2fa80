package csv

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpricematcher/price-matcher/internal/types"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{"149", 149, false},
		{"149.50", 149.5, false},
		{"149,50", 149.5, false},
		{" 1 299,50 kr", 1299.5, false},
		{"1.299,50", 1299.5, false},
		{"1,299.50", 1299.5, false},
		{"1.299.000", 1299000, false},
		{"149:-", 149, false},
		{"SEK 89,90", 89.9, false},
		{"0", 0, false},
		{"", 0, true},
		{"n/a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Delimiter
	}{
		{"comma", "sku,ean,competitor_price\nA,1,10\nB,2,20\n", DelimiterComma},
		{"semicolon with decimal commas", "sku;competitor_price\nA;10,50\nB;1,99\n", DelimiterSemicolon},
		{"tab", "sku\tcompetitor_price\nA\t10\n", DelimiterTab},
		{"pipe", "sku|competitor_price|url\nA|10|x\n", DelimiterPipe},
		{"empty", "", DelimiterComma},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDelimiter(tt.content))
		})
	}
}

func TestFeedReader(t *testing.T) {
	content := "\xEF\xBB\xBF SKU ;EAN;Competitor_Price;URL\n" +
		"ABC-1;7310000000001;1 299,50;https://example.com/a\n" +
		";;;\n" +
		"ABC-2;;not a price;\n" +
		"ABC-3;7310000000003\n"

	fr, err := NewFeedReader([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, DelimiterSemicolon, fr.Delimiter())
	assert.True(t, fr.HasColumn("ean"))

	rows, err := fr.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ABC-1", rows[0].SKU)
	assert.Equal(t, "7310000000001", rows[0].EAN)
	assert.InDelta(t, 1299.5, rows[0].CompetitorPrice, 1e-9)
	assert.Equal(t, "https://example.com/a", rows[0].URL)
	assert.Equal(t, 2, rows[0].RowNumber)
	assert.NoError(t, rows[0].PriceErr)

	assert.Equal(t, "ABC-2", rows[1].SKU)
	assert.Equal(t, 4, rows[1].RowNumber)
	assert.Error(t, rows[1].PriceErr)

	assert.Equal(t, "ABC-3", rows[2].SKU)
	assert.Error(t, rows[2].PriceErr)
}

func TestFeedReaderMissingColumn(t *testing.T) {
	tests := []struct {
		name    string
		content string
		column  string
	}{
		{"no price", "sku,ean\nA,1\n", ColumnCompetitorPrice},
		{"no sku", "ean,competitor_price\n1,10\n", ColumnSKU},
		{"empty file", "", ColumnSKU},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFeedReader([]byte(tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingColumn))
			assert.Contains(t, err.Error(), tt.column)
		})
	}
}

func TestOpenFeedNotFound(t *testing.T) {
	_, err := OpenFeed(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFeedWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewFeedWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.Write(types.FeedRow{SKU: "A,1", EAN: "731", CompetitorPrice: 99.5, URL: "u"}))
	require.NoError(t, w.Close())

	fr, err := NewFeedReader(buf.Bytes())
	require.NoError(t, err)
	row, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, "A,1", row.SKU)
	assert.InDelta(t, 99.5, row.CompetitorPrice, 1e-9)

	_, err = fr.Next()
	assert.ErrorIs(t, err, io.EOF)
}
