// File: internal/listing/validate.go
package listing

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"marketplace_backend/internal/fieldtemplate"
)

const minPublishTitleLength = 5

// ValidatePublish decides whether a listing may go live. All rules are
// checked and every failing message is collected, in a fixed order: title,
// price, then each missing required template in template sort order. Only
// active templates count, so deactivating a field never retroactively blocks
// an existing listing from being republished. Pure, no I/O.
func ValidatePublish(title string, priceCents int64, templates []fieldtemplate.FieldTemplate, values map[string]string) (bool, []string) {
	var errs []string

	// Character count, not byte count: a two-rune CJK title must not pass.
	if utf8.RuneCountInString(strings.TrimSpace(title)) < minPublishTitleLength {
		errs = append(errs, fmt.Sprintf("Title must be at least %d characters to publish.", minPublishTitleLength))
	}
	if priceCents <= 0 {
		errs = append(errs, "Price must be greater than 0 to publish.")
	}
	for _, template := range templates {
		if !template.IsActive || !template.Required {
			continue
		}
		if strings.TrimSpace(values[template.Key]) == "" {
			errs = append(errs, fmt.Sprintf("%s is required to publish.", template.Label))
		}
	}

	return len(errs) == 0, errs
}
