package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// invisibleFormatting reports whether the rune is an invisible formatting code
// point known to corrupt downstream text shaping (LaTeX subscripts render as
// garbled code points when these leak into source text).
func invisibleFormatting(r rune) bool {
	switch {
	case r >= 0x200B && r <= 0x200D: // zero-width spaces and joiners
		return true
	case r == 0x200E || r == 0x200F: // LTR/RTL marks
		return true
	case r >= 0x202A && r <= 0x202E: // bidirectional embedding/override
		return true
	case r == 0x202F: // narrow no-break space
		return true
	case r >= 0x2060 && r <= 0x206F: // invisible operators, FSI/PDI
		return true
	case r == 0xFEFF: // BOM / zero-width no-break space
		return true
	case r == 0x00AD: // soft hyphen
		return true
	}
	return false
}

// StripInvisible removes invisible formatting code points from text and
// converts no-break spaces to regular spaces. The result is NFC-normalized so
// decomposed sequences survive downstream shaping intact.
func StripInvisible(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if invisibleFormatting(r) {
			continue
		}
		if r == 0x00A0 {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// CountInvisible reports how many invisible formatting code points the text
// contains, for diagnostics.
func CountInvisible(text string) int {
	count := 0
	for _, r := range text {
		if invisibleFormatting(r) {
			count++
		}
	}
	return count
}
