// Package geo holds the static lookup tables used to normalize free-text
// locale input into the canonical codes the payment and backend APIs expect.
package geo

import "strings"

// countryNameToISO2 is keyed by NormalizeKey of the country name or a common alias.
var countryNameToISO2 = map[string]string{
	"austria":            "AT",
	"osterreich":         "AT",
	"australia":          "AU",
	"belgium":            "BE",
	"belgie":             "BE",
	"belgique":           "BE",
	"canada":             "CA",
	"switzerland":        "CH",
	"schweiz":            "CH",
	"suisse":             "CH",
	"germany":            "DE",
	"deutschland":        "DE",
	"denmark":            "DK",
	"danmark":            "DK",
	"spain":              "ES",
	"espana":             "ES",
	"finland":            "FI",
	"suomi":              "FI",
	"france":             "FR",
	"unitedkingdom":      "GB",
	"greatbritain":       "GB",
	"england":            "GB",
	"uk":                 "GB",
	"ireland":            "IE",
	"iceland":            "IS",
	"island":             "IS",
	"italy":              "IT",
	"italia":             "IT",
	"netherlands":        "NL",
	"thenetherlands":     "NL",
	"nederland":          "NL",
	"holland":            "NL",
	"norway":             "NO",
	"norge":              "NO",
	"noreg":              "NO",
	"newzealand":         "NZ",
	"poland":             "PL",
	"polska":             "PL",
	"portugal":           "PT",
	"sweden":             "SE",
	"sverige":            "SE",
	"unitedstates":       "US",
	"usa":                "US",
	"unitedstatesofamerica": "US",
	"america":            "US",
}

var iso2ToDialCode = map[string]string{
	"AT": "43",
	"AU": "61",
	"BE": "32",
	"CA": "1",
	"CH": "41",
	"DE": "49",
	"DK": "45",
	"ES": "34",
	"FI": "358",
	"FR": "33",
	"GB": "44",
	"IE": "353",
	"IS": "354",
	"IT": "39",
	"NL": "31",
	"NO": "47",
	"NZ": "64",
	"PL": "48",
	"PT": "351",
	"SE": "46",
	"US": "1",
}

// provinceNameToCode maps NormalizeKey of the province name to its code, per country.
var provinceNameToCode = map[string]map[string]string{
	"US": {
		"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
		"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
		"districtofcolumbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
		"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
		"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
		"maryland": "MD", "massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
		"mississippi": "MS", "missouri": "MO", "montana": "MT", "nebraska": "NE",
		"nevada": "NV", "newhampshire": "NH", "newjersey": "NJ", "newmexico": "NM",
		"newyork": "NY", "northcarolina": "NC", "northdakota": "ND", "ohio": "OH",
		"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhodeisland": "RI",
		"southcarolina": "SC", "southdakota": "SD", "tennessee": "TN", "texas": "TX",
		"utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
		"westvirginia": "WV", "wisconsin": "WI", "wyoming": "WY",
	},
	"CA": {
		"alberta": "AB", "britishcolumbia": "BC", "manitoba": "MB",
		"newbrunswick": "NB", "newfoundlandandlabrador": "NL", "novascotia": "NS",
		"northwestterritories": "NT", "nunavut": "NU", "ontario": "ON",
		"princeedwardisland": "PE", "quebec": "QC", "saskatchewan": "SK", "yukon": "YT",
	},
	"NO": {
		"oslo": "03", "rogaland": "11", "moreogromsdal": "15", "nordland": "18",
		"ostfold": "31", "akershus": "32", "buskerud": "33", "innlandet": "34",
		"vestfold": "39", "telemark": "40", "agder": "42", "vestland": "46",
		"trondelag": "50", "troms": "55", "finnmark": "56",
	},
}

// ISO2ForCountryName resolves a free-text country name. Second return is false
// when the name is unknown.
func ISO2ForCountryName(name string) (string, bool) {
	iso2, ok := countryNameToISO2[NormalizeKey(name)]
	return iso2, ok
}

// DialCodeForISO2 returns the international dialing code without leading "+",
// or empty when unknown.
func DialCodeForISO2(iso2 string) string {
	return iso2ToDialCode[strings.ToUpper(iso2)]
}

// ProvinceCodes returns the known province codes for a country, or nil when
// there is no table for it.
func ProvinceCodes(iso2 string) map[string]bool {
	table, ok := provinceNameToCode[strings.ToUpper(iso2)]
	if !ok {
		return nil
	}

	codes := make(map[string]bool, len(table))
	for _, code := range table {
		codes[code] = true
	}
	return codes
}

// ProvinceCodeForName resolves a normalized province name for a country.
func ProvinceCodeForName(iso2 string, name string) (string, bool) {
	table, ok := provinceNameToCode[strings.ToUpper(iso2)]
	if !ok {
		return "", false
	}

	code, ok := table[NormalizeKey(name)]
	return code, ok
}
