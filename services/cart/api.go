// Package cart defines the boundary to the host app's cart manager. The SDK
// core never talks to the commerce backend directly: every checkout mutation
// goes through this interface.
package cart

import (
	"context"

	"github.com/vioreel/viocommerce/services/checkoutapi"
)

type Market struct {
	CountryName string
	CountryCode string
	Currency    string
	Locale      string
}

type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Currency   string `json:"currency"`
	ImageURL   string `json:"imageUrl"`
}

type Line struct {
	ProductID      string
	Name           string
	Quantity       int
	UnitPriceCents int64
}

type Totals struct {
	Lines         []Line
	SubtotalCents int64
	ShippingCents int64
	DiscountCents int64
	TotalCents    int64
	Currency      string
}

type Checkout struct {
	ID string
}

type KlarnaWebSession struct {
	SnippetHTML string
	URL         string
}

type KlarnaOrder struct {
	OrderID string
	Status  string
}

type StripeIntent struct {
	ClientSecret   string
	PublishableKey string
}

type VippsPayment struct {
	RedirectURL string
}

// CreateCheckoutRequest carries the sanitized draft fields needed to open a
// checkout on the backend.
type CreateCheckoutRequest struct {
	Email      string
	SuccessURL string
	CancelURL  string
}

//go:generate mockgen -source=api.go -package cart -destination manager_mock.go CartManager
type CartManager interface {
	EnsureCatalogLoaded(c context.Context) error
	SelectedMarket(c context.Context) (Market, error)
	AvailablePaymentMethods(c context.Context) ([]string, error)

	CreateCheckout(c context.Context, req CreateCheckoutRequest) (Checkout, error)
	UpdateCheckout(c context.Context, checkoutUID string, req checkoutapi.CheckoutUpdateRequest) error
	RefreshTotals(c context.Context) (Totals, error)
	ClearCart(c context.Context) error

	ApplyDiscount(c context.Context, code string) error
	RemoveDiscount(c context.Context) error

	InitKlarnaWeb(c context.Context, checkoutUID string) (KlarnaWebSession, error)
	InitKlarnaNative(c context.Context, checkoutUID string, req checkoutapi.KlarnaInitRequest) (KlarnaInitResult, error)
	ConfirmKlarnaNative(c context.Context, checkoutUID string, authToken string) error
	FetchKlarnaOrder(c context.Context, checkoutUID string) (KlarnaOrder, error)

	RequestStripeIntent(c context.Context, checkoutUID string) (StripeIntent, error)
	RequestStripeLink(c context.Context, checkoutUID string) (string, error)

	InitVippsPayment(c context.Context, checkoutUID string, returnURL string) (VippsPayment, error)
	VippsPaymentStatus(c context.Context, checkoutUID string) (string, error)

	AddProductToCart(c context.Context, productUID string) error
}

// KlarnaInitResult aliases the shared response payload.
type KlarnaInitResult = checkoutapi.KlarnaInitResponse
