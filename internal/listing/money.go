// File: internal/listing/money.go
package listing

import (
	"math"
	"strconv"
	"strings"
)

// ParsePriceCents converts a major-unit decimal string ("9.99") to integer
// minor units by flooring, so a buyer's max-price filter never excludes an
// item priced exactly at the boundary. Returns ok=false for blank or
// malformed input.
func ParsePriceCents(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0, false
	}
	return int64(math.Floor(value * 100)), true
}
