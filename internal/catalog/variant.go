package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// VariantID renders the submission id of a quantity-scaled add-on, e.g.
// "virtual-staging-4". Internal state keeps {addon id, quantity} instead.
func VariantID(addonID string, quantity int) string {
	return fmt.Sprintf("%s-%d", addonID, quantity)
}

// SplitVariantID reverses VariantID. ok is false when id carries no positive
// numeric suffix.
func SplitVariantID(id string) (addonID string, quantity int, ok bool) {
	idx := strings.LastIndex(id, "-")
	if idx <= 0 || idx == len(id)-1 {
		return "", 0, false
	}
	n, err := strconv.Atoi(id[idx+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return id[:idx], n, true
}
