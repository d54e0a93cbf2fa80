package charset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectEncoding(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected Encoding
	}{
		{"ascii", []byte("sku,competitor_price"), EncodingUTF8},
		{"utf8 with bom", append([]byte{0xEF, 0xBB, 0xBF}, "sku"...), EncodingUTF8},
		{"utf8 nordic", []byte("Kött & bröd"), EncodingUTF8},
		{"windows-1252 nordic", []byte{'K', 0xF6, 't', 't'}, EncodingWindows1252},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectEncoding(tt.data))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		enc      Encoding
		expected string
	}{
		{"strips bom", append([]byte{0xEF, 0xBB, 0xBF}, "sku,ean"...), "", "sku,ean"},
		{"legacy bytes", []byte{'K', 0xF6, 't', 't', ' ', 0xE5}, "", "Kött å"},
		{"mislabelled utf8 passes through", []byte("Kött"), EncodingWindows1252, "Kött"},
		{"latin1", []byte{'a', 0xE9}, EncodingISO88591, "aé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decode(tt.data, tt.enc)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestDecodeUnsupported(t *testing.T) {
	_, err := Decode([]byte{0xFF}, Encoding("ebcdic"))
	assert.Error(t, err)
}
