package matching

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	eanSeparatorRe = regexp.MustCompile(`[\s\-.]`)
	placeholderRe  = regexp.MustCompile(`^0+$`)
)

// NormalizeEAN strips separators feeds put inside barcodes. All-zero
// placeholders return "" so they never match a catalog product.
func NormalizeEAN(ean string) string {
	bc := eanSeparatorRe.ReplaceAllString(ean, "")
	if placeholderRe.MatchString(bc) {
		return ""
	}
	return bc
}

var (
	foldReplacer = strings.NewReplacer("đ", "dj", "Đ", "Dj", "ß", "ss", "ø", "o", "Ø", "O", "ł", "l", "Ł", "L")
	foldChain    = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Fold lowercases s and strips diacritics for accent-insensitive search
func Fold(s string) string {
	s = foldReplacer.Replace(s)
	out, _, err := transform.String(foldChain, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
