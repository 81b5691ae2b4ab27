// File: internal/assistant/service_test.go
package assistant

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_IncludesAllDetails(t *testing.T) {
	prompt := buildPrompt(DescribeRequest{
		Title:     "Used Golf 7",
		Category:  "vehicles",
		Condition: "used",
		Fields:    map[string]string{"km": "124000", "fuel": "Diesel"},
	})

	assert.Contains(t, prompt, "Title: Used Golf 7")
	assert.Contains(t, prompt, "Category: vehicles")
	assert.Contains(t, prompt, "Condition: used")
	assert.Contains(t, prompt, "- km: 124000")
	assert.Contains(t, prompt, "- fuel: Diesel")
	// Deterministic field order regardless of map iteration.
	assert.Less(t, strings.Index(prompt, "- fuel:"), strings.Index(prompt, "- km:"))
}

func TestBuildPrompt_OmitsEmptySections(t *testing.T) {
	prompt := buildPrompt(DescribeRequest{Title: "Nice chair", Category: "furniture"})

	assert.NotContains(t, prompt, "Condition:")
	assert.NotContains(t, prompt, "Details:")
}

func TestNewService_RequiresAPIKey(t *testing.T) {
	_, err := NewService("", "gemini-2.0-flash", nil)
	assert.Error(t, err)
}
