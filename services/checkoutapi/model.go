// Package checkoutapi holds the payload types shared between the checkout
// controller, the payment provider services and the cart boundary.
package checkoutapi

import (
	"strings"
	"time"
)

type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
	PaymentMethodKlarna PaymentMethod = "klarna"
	PaymentMethodVipps  PaymentMethod = "vipps"
)

// DefaultPaymentMethods is the fallback order when neither the app config nor
// the backend restricts the set.
var DefaultPaymentMethods = []PaymentMethod{
	PaymentMethodStripe,
	PaymentMethodKlarna,
	PaymentMethodVipps,
}

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentMethodStripe:
		return PaymentMethodStripe, true
	case PaymentMethodKlarna:
		return PaymentMethodKlarna, true
	case PaymentMethodVipps:
		return PaymentMethodVipps, true
	default:
		return "", false
	}
}

// Address is the address payload of a checkout update. Empty fields are
// omitted: an unresolved province code degrades to "omit", never to an error.
type Address struct {
	Address1     string `json:"address1,omitempty"`
	Address2     string `json:"address2,omitempty"`
	City         string `json:"city,omitempty"`
	Company      string `json:"company,omitempty"`
	Country      string `json:"country,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PhoneCode    string `json:"phone_code,omitempty"`
	Province     string `json:"province,omitempty"`
	ProvinceCode string `json:"province_code,omitempty"`
	Zip          string `json:"zip,omitempty"`
}

type CheckoutUpdateRequest struct {
	Email                     string        `json:"email"`
	SuccessURL                string        `json:"successUrl"`
	CancelURL                 string        `json:"cancelUrl"`
	PaymentMethod             PaymentMethod `json:"paymentMethod"`
	ShippingAddress           Address       `json:"shippingAddress"`
	BillingAddress            Address       `json:"billingAddress"`
	AcceptsTerms              bool          `json:"acceptsTerms"`
	AcceptsPurchaseConditions bool          `json:"acceptsPurchaseConditions"`
	Status                    string        `json:"status,omitempty"`
}

type KlarnaCustomer struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type KlarnaInitRequest struct {
	CountryCode     string         `json:"countryCode"`
	Currency        string         `json:"currency"`
	Locale          string         `json:"locale"`
	ReturnURL       string         `json:"returnUrl"`
	Intent          string         `json:"intent"`
	AutoCapture     bool           `json:"autoCapture"`
	Customer        KlarnaCustomer `json:"customer"`
	BillingAddress  Address        `json:"billingAddress"`
	ShippingAddress Address        `json:"shippingAddress"`
}

type KlarnaInitResponse struct {
	ClientToken             string   `json:"clientToken"`
	PaymentMethodCategories []string `json:"paymentMethodCategories"`
}

// ProviderContext correlates an externally-hosted payment flow (web Klarna,
// Vipps browser redirect) with the checkout it belongs to.
type ProviderContext struct {
	CheckoutUID  string
	Provider     string
	CreatedAt    time.Time
	LastModified *time.Time
	ReturnURL    string
	ExternalID   string
	Status       string
}
