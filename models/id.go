package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatPlayerID renders the fixed player id format, e.g. P001.
func FormatPlayerID(n int) string {
	return fmt.Sprintf("%s%0*d", PlayerIDPrefix, PlayerIDPadding, n)
}

// FormatMatchID renders the fixed match id format, e.g. T0001.
func FormatMatchID(n int) string {
	return fmt.Sprintf("%s%0*d", MatchIDPrefix, MatchIDPadding, n)
}

// IDNumber extracts the numeric suffix of a prefixed id. Returns 0 and
// false for ids that do not carry the given prefix or a numeric tail.
func IDNumber(id, prefix string) (int, bool) {
	if !strings.HasPrefix(id, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
