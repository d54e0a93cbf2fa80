package charset

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingISO88591    Encoding = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding returns UTF-8 for a BOM or valid UTF-8 input and
// Windows-1252 otherwise. Nordic exports from older spreadsheet tools are
// the usual non-UTF-8 case.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) || utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1252
}

// Decode converts data to a UTF-8 string and strips a leading BOM.
// An empty enc means detect.
func Decode(data []byte, enc Encoding) (string, error) {
	if enc == "" {
		enc = DetectEncoding(data)
	}

	// Files labelled as legacy but already valid UTF-8 are passed through
	if utf8.Valid(data) {
		return string(bytes.TrimPrefix(data, utf8BOM)), nil
	}

	var dec encoding.Encoding
	switch enc {
	case EncodingUTF8, EncodingWindows1252:
		dec = charmap.Windows1252
	case EncodingISO88591:
		dec = charmap.ISO8859_1
	default:
		return "", fmt.Errorf("unsupported encoding %q", enc)
	}

	out, err := dec.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(out), nil
}
