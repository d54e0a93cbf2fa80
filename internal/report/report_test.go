package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/artpricematcher/price-matcher/internal/types"
)

func readSheet(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteMatches(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMatches(&buf, []types.PriceMatch{{
		ProductID:       42,
		Reference:       "LAMP-X",
		CompetitorPrice: 80,
		NewPrice:        76,
		DiscountPercent: 24,
		LastUpdate:      time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC),
		PriceFile:       "rival_20260310.csv",
	}})
	require.NoError(t, err)

	rows := readSheet(t, &buf, SheetMatches)
	require.Len(t, rows, 2)
	assert.Equal(t, "Product ID", rows[0][0])
	assert.Equal(t, "42", rows[1][0])
	assert.Equal(t, "LAMP-X", rows[1][1])
	assert.Equal(t, "76", rows[1][7])
	assert.Equal(t, "2026-03-10 12:30", rows[1][10])
}

func TestWriteDiscountsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDiscounts(&buf, nil))

	rows := readSheet(t, &buf, SheetDiscounts)
	require.Len(t, rows, 1)
	assert.Equal(t, "Days Left", rows[0][len(rows[0])-1])
}

func TestWriteDiscounts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDiscounts(&buf, []types.ActiveDiscountView{{
		ActiveDiscount: types.ActiveDiscount{ID: 7, ProductID: 42, DiscountPrice: 76},
		ProductName:    "Desk Lamp",
		CompetitorName: "Rival",
		DaysLeft:       3,
	}}))

	rows := readSheet(t, &buf, SheetDiscounts)
	require.Len(t, rows, 2)
	assert.Equal(t, "Desk Lamp", rows[1][2])
	assert.Equal(t, "Rival", rows[1][4])
	assert.Equal(t, "3", rows[1][12])
}
