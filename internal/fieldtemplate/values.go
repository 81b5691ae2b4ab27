// File: internal/fieldtemplate/values.go
package fieldtemplate

import (
	"net/url"
	"strings"
)

// FieldPrefix is the reserved prefix marking dynamic field inputs in form
// submissions and browse query strings. Fixed listing fields (title, price,
// category_id, ...) never carry it, so one flat namespace can transport an
// arbitrary per-category schema.
const FieldPrefix = "df__"

// ExtractValues scans submitted form or query values and returns the dynamic
// field mapping: prefixed keys are stripped and trimmed, entries whose key
// trims to nothing are dropped, and unprefixed keys are ignored. When a key
// appears multiple times the first value wins. Pure transformation, no I/O.
func ExtractValues(submitted url.Values) map[string]string {
	values := make(map[string]string)
	for name, fieldValues := range submitted {
		if !strings.HasPrefix(name, FieldPrefix) {
			continue
		}
		key := strings.TrimSpace(strings.TrimPrefix(name, FieldPrefix))
		if key == "" {
			continue
		}
		if _, exists := values[key]; exists {
			continue
		}
		var value string
		if len(fieldValues) > 0 {
			value = strings.TrimSpace(fieldValues[0])
		}
		values[key] = value
	}
	return values
}
