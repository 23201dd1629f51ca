package sites

import (
	"testing"

	"github.com/lepinkainen/bookscout/internal/sites/adlibris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"adlibris", "adlibris-microdata"}, Names())
}

func TestLookup(t *testing.T) {
	rules, err := Lookup("adlibris", "")
	require.NoError(t, err)
	assert.IsType(t, &adlibris.Embedded{}, rules)
	assert.Equal(t, adlibris.BaseURL, rules.Site().BaseURL)

	rules, err = Lookup(" Adlibris-Microdata ", "http://127.0.0.1:9999/se")
	require.NoError(t, err)
	assert.IsType(t, &adlibris.Microdata{}, rules)
	assert.Equal(t, "http://127.0.0.1:9999/se", rules.Site().BaseURL)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("bokus", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown site "bokus"`)
	assert.Contains(t, err.Error(), "adlibris, adlibris-microdata")
}
