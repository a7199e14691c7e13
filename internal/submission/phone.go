package submission

import (
	"fmt"
	"strings"
)

// NormalizePhone reformats a North American number as (NNN) NNN-NNNN. Eleven
// digits are accepted only with a leading country code of 1. Only ASCII digits
// count; any other rune is treated as a separator.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 11 && digits[0] == '1':
		digits = digits[1:]
	case len(digits) != 10:
		return "", fmt.Errorf("phone number must have 10 digits, got %d", len(digits))
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:]), nil
}
