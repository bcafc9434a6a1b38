// Package checkoutdraft holds the mutable scratch copy of contact and address
// fields edited during a checkout session, and the logic that normalizes its
// free-text locale input into canonical codes.
package checkoutdraft

import (
	"regexp"
	"strings"

	"github.com/vioreel/viocommerce/services/checkoutapi"
	"github.com/vioreel/viocommerce/services/geo"
)

// Draft is created once per checkout overlay session and mutated by UI field
// edits. It is never persisted.
type Draft struct {
	Email       string
	Phone       string
	PhoneCode   string
	FirstName   string
	LastName    string
	Company     string
	Address1    string
	Address2    string
	City        string
	Province    string
	Zip         string
	CountryName string
	CountryCode string

	ShippingMethod string
	SuccessURL     string
	CancelURL      string

	AcceptsTerms              bool
	AcceptsPurchaseConditions bool
}

// Prefill carries optional seed values supplied by the host app.
type Prefill struct {
	Email       string
	Phone       string
	FirstName   string
	LastName    string
	Address1    string
	City        string
	Zip         string
	CountryName string
	CountryCode string
}

// New seeds a draft from the prefill. In development and sandbox environments
// missing fields fall back to demo defaults; in production they stay empty.
func New(prefill *Prefill, development bool) *Draft {
	draft := &Draft{}

	if development {
		draft.Email = "demo@vioreel.com"
		draft.Phone = "91234567"
		draft.FirstName = "Demo"
		draft.LastName = "Shopper"
		draft.Address1 = "Storgata 1"
		draft.City = "Oslo"
		draft.Zip = "0155"
		draft.CountryName = "Norway"
		draft.CountryCode = "NO"
	}

	if prefill != nil {
		setIfNotEmpty(&draft.Email, prefill.Email)
		setIfNotEmpty(&draft.Phone, prefill.Phone)
		setIfNotEmpty(&draft.FirstName, prefill.FirstName)
		setIfNotEmpty(&draft.LastName, prefill.LastName)
		setIfNotEmpty(&draft.Address1, prefill.Address1)
		setIfNotEmpty(&draft.City, prefill.City)
		setIfNotEmpty(&draft.Zip, prefill.Zip)
		setIfNotEmpty(&draft.CountryName, prefill.CountryName)
		setIfNotEmpty(&draft.CountryCode, prefill.CountryCode)
	}

	return draft
}

func setIfNotEmpty(target *string, value string) {
	if strings.TrimSpace(value) != "" {
		*target = value
	}
}

// SyncFromMarket adopts the market's country when the draft has none yet.
func (d *Draft) SyncFromMarket(countryName string, countryCode string) {
	if strings.TrimSpace(d.CountryCode) == "" && strings.TrimSpace(d.CountryName) == "" {
		d.CountryName = countryName
		d.CountryCode = countryCode
	}
}

// Sanitize trims every string field in place.
func (d *Draft) Sanitize() {
	fields := []*string{
		&d.Email, &d.Phone, &d.PhoneCode, &d.FirstName, &d.LastName,
		&d.Company, &d.Address1, &d.Address2, &d.City, &d.Province,
		&d.Zip, &d.CountryName, &d.CountryCode, &d.ShippingMethod,
		&d.SuccessURL, &d.CancelURL,
	}
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

// ResolveISO2 prefers the explicit 2-letter code, then the country name
// lookup, then the fallback.
func (d *Draft) ResolveISO2(fallback string) string {
	code := strings.TrimSpace(d.CountryCode)
	if len(code) == 2 {
		return strings.ToUpper(code)
	}

	if iso2, ok := geo.ISO2ForCountryName(d.CountryName); ok {
		return iso2
	}

	return fallback
}

// ResolvePhoneCode prefers the explicit dialing code (leading "+" stripped),
// then the static table. Empty string when unknown.
func (d *Draft) ResolvePhoneCode(iso2 string) string {
	code := strings.TrimSpace(d.PhoneCode)
	if code != "" {
		return strings.TrimPrefix(code, "+")
	}

	return geo.DialCodeForISO2(iso2)
}

var codeLike = regexp.MustCompile(`^[A-Za-z]{2,5}$`)

var provinceSuffixWords = []string{
	"state", "province", "region", "county", "territory",
	"fylke", "lan", "provincia", "regiao", "bundesland",
}

// ResolveProvinceCode degrades gracefully: table lookups first, then the
// suffix-stripped retry, then the looks-like-a-code heuristic, else empty.
// Empty string means "omit the field downstream", never an error.
func ResolveProvinceCode(iso2 string, provinceName string) string {
	trimmed := strings.TrimSpace(provinceName)
	if trimmed == "" {
		return ""
	}

	if codes := geo.ProvinceCodes(iso2); codes != nil {
		upper := strings.ToUpper(trimmed)
		if codes[upper] {
			return upper
		}

		if code, ok := geo.ProvinceCodeForName(iso2, trimmed); ok {
			return code
		}

		if code, ok := geo.ProvinceCodeForName(iso2, stripSuffixWords(trimmed)); ok {
			return code
		}
	}

	if codeLike.MatchString(trimmed) {
		return strings.ToUpper(trimmed)
	}

	return ""
}

func stripSuffixWords(name string) string {
	words := strings.Fields(name)
	for len(words) > 1 {
		last := geo.NormalizeKey(words[len(words)-1])
		isSuffix := false
		for _, suffix := range provinceSuffixWords {
			if last == suffix {
				isSuffix = true
				break
			}
		}
		if !isSuffix {
			break
		}
		words = words[:len(words)-1]
	}

	return strings.Join(words, " ")
}

// ResolveProvinceCode on the draft resolves its own province field.
func (d *Draft) ResolveProvinceCode(iso2 string) string {
	return ResolveProvinceCode(iso2, d.Province)
}

var nonPhoneChars = regexp.MustCompile(`[\s\-\.\(\)]`)

// ResolveFullPhoneNumber concatenates the resolved dialing code and the
// cleaned-up local number. Empty when no phone was entered.
func (d *Draft) ResolveFullPhoneNumber(iso2 string) string {
	phone := nonPhoneChars.ReplaceAllString(strings.TrimSpace(d.Phone), "")
	if phone == "" {
		return ""
	}

	return d.ResolvePhoneCode(iso2) + phone
}

// AddressPayload builds the address payload of a checkout update from the
// draft. Unresolved codes come out as empty strings and are omitted on the wire.
func (d *Draft) AddressPayload(fallbackISO2 string) checkoutapi.Address {
	iso2 := d.ResolveISO2(fallbackISO2)

	return checkoutapi.Address{
		Address1:     d.Address1,
		Address2:     d.Address2,
		City:         d.City,
		Company:      d.Company,
		Country:      d.CountryName,
		CountryCode:  iso2,
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Phone:        d.Phone,
		PhoneCode:    d.ResolvePhoneCode(iso2),
		Province:     d.Province,
		ProvinceCode: d.ResolveProvinceCode(iso2),
		Zip:          d.Zip,
	}
}
