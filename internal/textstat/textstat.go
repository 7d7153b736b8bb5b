// Package textstat provides size accounting for corpus text.
//
// Counts are taken on the NFC normalization of the input so that byte and
// character totals are stable regardless of which Unicode composition a
// source emitted. Somali is written in Latin script but scraped HTML and
// Wikipedia dumps mix precomposed and decomposed forms.
package textstat

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Count returns the byte and character counts of text after NFC normalization.
func Count(text string) (bytes int64, chars int64) {
	normalized := norm.NFC.String(text)
	return int64(len(normalized)), int64(utf8.RuneCountInString(normalized))
}
