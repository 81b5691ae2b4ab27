// File: internal/fieldtemplate/values_test.go
package fieldtemplate

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractValues_PrefixedKeysOnly(t *testing.T) {
	submitted := url.Values{
		"df__brand": {" Toyota "},
		"df__":      {"ignored"},
		"title":     {"x"},
	}

	values := ExtractValues(submitted)

	assert.Equal(t, map[string]string{"brand": "Toyota"}, values)
}

func TestExtractValues_TrimsKeysAndValues(t *testing.T) {
	submitted := url.Values{
		"df__ mileage_km ": {"  120000  "},
		"df__   ":          {"blank key after trim"},
	}

	values := ExtractValues(submitted)

	assert.Equal(t, map[string]string{"mileage_km": "120000"}, values)
}

func TestExtractValues_FirstValueWins(t *testing.T) {
	submitted := url.Values{
		"df__color": {"red", "blue"},
	}

	values := ExtractValues(submitted)

	assert.Equal(t, "red", values["color"])
}

func TestExtractValues_EmptyValueKept(t *testing.T) {
	// An empty value is still an explicit submission; required-field
	// enforcement happens at publish validation, not extraction.
	submitted := url.Values{
		"df__vin": {"   "},
	}

	values := ExtractValues(submitted)

	v, ok := values["vin"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestExtractValues_Empty(t *testing.T) {
	assert.Empty(t, ExtractValues(url.Values{}))
	assert.Empty(t, ExtractValues(url.Values{"price": {"10"}, "city_id": {"abc"}}))
}
