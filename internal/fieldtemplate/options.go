// File: internal/fieldtemplate/options.go
package fieldtemplate

import (
	"encoding/json"
	"strings"
)

// EncodeOptions serializes a SELECT template's option list into its
// persisted string form (a JSON array of strings). Blank entries are
// dropped and the remaining entries trimmed.
func EncodeOptions(options []string) (string, error) {
	cleaned := make([]string, 0, len(options))
	for _, opt := range options {
		trimmed := strings.TrimSpace(opt)
		if trimmed == "" {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeOptions parses the persisted option blob. Absent, empty or malformed
// input degrades to an empty slice: option corruption must never break
// template rendering.
func DecodeOptions(raw *string) []string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return []string{}
	}
	var options []string
	if err := json.Unmarshal([]byte(*raw), &options); err != nil {
		return []string{}
	}
	if options == nil {
		return []string{}
	}
	return options
}
