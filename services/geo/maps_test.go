package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "iledefrance", NormalizeKey("Île-de-France"))
	assert.Equal(t, "newyork", NormalizeKey("  New York "))
	assert.Equal(t, "osterreich", NormalizeKey("Österreich"))
}

func TestCountryLookup(t *testing.T) {
	iso2, ok := ISO2ForCountryName("The Netherlands")
	assert.True(t, ok)
	assert.Equal(t, "NL", iso2)

	iso2, ok = ISO2ForCountryName("Norge")
	assert.True(t, ok)
	assert.Equal(t, "NO", iso2)

	_, ok = ISO2ForCountryName("Atlantis")
	assert.False(t, ok)
}

func TestDialCode(t *testing.T) {
	assert.Equal(t, "47", DialCodeForISO2("no"))
	assert.Equal(t, "1", DialCodeForISO2("US"))
	assert.Equal(t, "", DialCodeForISO2("XX"))
}

func TestProvinceLookup(t *testing.T) {
	code, ok := ProvinceCodeForName("US", "California")
	assert.True(t, ok)
	assert.Equal(t, "CA", code)

	codes := ProvinceCodes("CA")
	assert.True(t, codes["QC"])

	assert.Nil(t, ProvinceCodes("FR"))
}
