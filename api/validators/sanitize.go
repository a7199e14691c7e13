package validators

import (
	"net/url"
	"strings"
	"unicode"
)

// SanitizeString trims input, drops control characters, and caps it at
// maxRunes runes. A maxRunes of zero disables the cap.
func SanitizeString(input string, maxRunes int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	cleaned = strings.TrimSpace(cleaned)

	if maxRunes <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxRunes {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:maxRunes]))
}

// QueryParam reads and sanitizes one query string value.
func QueryParam(values url.Values, key string, maxRunes int) string {
	return SanitizeString(values.Get(key), maxRunes)
}
