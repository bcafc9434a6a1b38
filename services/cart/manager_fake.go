package cart

import (
	"context"
	"sync"

	"github.com/vioreel/viocommerce/services/checkoutapi"
)

// FakeCartManager is the test double for the host app's cart. Behavior is
// overridden per test through the function fields; unset fields succeed with
// zero values. Call counts are recorded for interaction assertions.
type FakeCartManager struct {
	sync.Mutex
	Calls map[string]int

	EnsureCatalogLoadedFunc     func(c context.Context) error
	SelectedMarketFunc          func(c context.Context) (Market, error)
	AvailablePaymentMethodsFunc func(c context.Context) ([]string, error)
	CreateCheckoutFunc          func(c context.Context, req CreateCheckoutRequest) (Checkout, error)
	UpdateCheckoutFunc          func(c context.Context, checkoutUID string, req checkoutapi.CheckoutUpdateRequest) error
	RefreshTotalsFunc           func(c context.Context) (Totals, error)
	ClearCartFunc               func(c context.Context) error
	ApplyDiscountFunc           func(c context.Context, code string) error
	RemoveDiscountFunc          func(c context.Context) error
	InitKlarnaWebFunc           func(c context.Context, checkoutUID string) (KlarnaWebSession, error)
	InitKlarnaNativeFunc        func(c context.Context, checkoutUID string, req checkoutapi.KlarnaInitRequest) (KlarnaInitResult, error)
	ConfirmKlarnaNativeFunc     func(c context.Context, checkoutUID string, authToken string) error
	FetchKlarnaOrderFunc        func(c context.Context, checkoutUID string) (KlarnaOrder, error)
	RequestStripeIntentFunc     func(c context.Context, checkoutUID string) (StripeIntent, error)
	RequestStripeLinkFunc       func(c context.Context, checkoutUID string) (string, error)
	InitVippsPaymentFunc        func(c context.Context, checkoutUID string, returnURL string) (VippsPayment, error)
	VippsPaymentStatusFunc      func(c context.Context, checkoutUID string) (string, error)
	AddProductToCartFunc        func(c context.Context, productUID string) error
}

func NewFakeCartManager() *FakeCartManager {
	return &FakeCartManager{
		Calls: map[string]int{},
	}
}

func (f *FakeCartManager) record(name string) {
	f.Lock()
	defer f.Unlock()
	f.Calls[name]++
}

// CallCount returns how often the named operation was invoked.
func (f *FakeCartManager) CallCount(name string) int {
	f.Lock()
	defer f.Unlock()
	return f.Calls[name]
}

func (f *FakeCartManager) EnsureCatalogLoaded(c context.Context) error {
	f.record("EnsureCatalogLoaded")
	if f.EnsureCatalogLoadedFunc != nil {
		return f.EnsureCatalogLoadedFunc(c)
	}
	return nil
}

func (f *FakeCartManager) SelectedMarket(c context.Context) (Market, error) {
	f.record("SelectedMarket")
	if f.SelectedMarketFunc != nil {
		return f.SelectedMarketFunc(c)
	}
	return Market{}, nil
}

func (f *FakeCartManager) AvailablePaymentMethods(c context.Context) ([]string, error) {
	f.record("AvailablePaymentMethods")
	if f.AvailablePaymentMethodsFunc != nil {
		return f.AvailablePaymentMethodsFunc(c)
	}
	return nil, nil
}

func (f *FakeCartManager) CreateCheckout(c context.Context, req CreateCheckoutRequest) (Checkout, error) {
	f.record("CreateCheckout")
	if f.CreateCheckoutFunc != nil {
		return f.CreateCheckoutFunc(c, req)
	}
	return Checkout{ID: "checkout-1"}, nil
}

func (f *FakeCartManager) UpdateCheckout(c context.Context, checkoutUID string, req checkoutapi.CheckoutUpdateRequest) error {
	f.record("UpdateCheckout")
	if f.UpdateCheckoutFunc != nil {
		return f.UpdateCheckoutFunc(c, checkoutUID, req)
	}
	return nil
}

func (f *FakeCartManager) RefreshTotals(c context.Context) (Totals, error) {
	f.record("RefreshTotals")
	if f.RefreshTotalsFunc != nil {
		return f.RefreshTotalsFunc(c)
	}
	return Totals{}, nil
}

func (f *FakeCartManager) ClearCart(c context.Context) error {
	f.record("ClearCart")
	if f.ClearCartFunc != nil {
		return f.ClearCartFunc(c)
	}
	return nil
}

func (f *FakeCartManager) ApplyDiscount(c context.Context, code string) error {
	f.record("ApplyDiscount")
	if f.ApplyDiscountFunc != nil {
		return f.ApplyDiscountFunc(c, code)
	}
	return nil
}

func (f *FakeCartManager) RemoveDiscount(c context.Context) error {
	f.record("RemoveDiscount")
	if f.RemoveDiscountFunc != nil {
		return f.RemoveDiscountFunc(c)
	}
	return nil
}

func (f *FakeCartManager) InitKlarnaWeb(c context.Context, checkoutUID string) (KlarnaWebSession, error) {
	f.record("InitKlarnaWeb")
	if f.InitKlarnaWebFunc != nil {
		return f.InitKlarnaWebFunc(c, checkoutUID)
	}
	return KlarnaWebSession{}, nil
}

func (f *FakeCartManager) InitKlarnaNative(c context.Context, checkoutUID string, req checkoutapi.KlarnaInitRequest) (KlarnaInitResult, error) {
	f.record("InitKlarnaNative")
	if f.InitKlarnaNativeFunc != nil {
		return f.InitKlarnaNativeFunc(c, checkoutUID, req)
	}
	return KlarnaInitResult{}, nil
}

func (f *FakeCartManager) ConfirmKlarnaNative(c context.Context, checkoutUID string, authToken string) error {
	f.record("ConfirmKlarnaNative")
	if f.ConfirmKlarnaNativeFunc != nil {
		return f.ConfirmKlarnaNativeFunc(c, checkoutUID, authToken)
	}
	return nil
}

func (f *FakeCartManager) FetchKlarnaOrder(c context.Context, checkoutUID string) (KlarnaOrder, error) {
	f.record("FetchKlarnaOrder")
	if f.FetchKlarnaOrderFunc != nil {
		return f.FetchKlarnaOrderFunc(c, checkoutUID)
	}
	return KlarnaOrder{}, nil
}

func (f *FakeCartManager) RequestStripeIntent(c context.Context, checkoutUID string) (StripeIntent, error) {
	f.record("RequestStripeIntent")
	if f.RequestStripeIntentFunc != nil {
		return f.RequestStripeIntentFunc(c, checkoutUID)
	}
	return StripeIntent{}, nil
}

func (f *FakeCartManager) RequestStripeLink(c context.Context, checkoutUID string) (string, error) {
	f.record("RequestStripeLink")
	if f.RequestStripeLinkFunc != nil {
		return f.RequestStripeLinkFunc(c, checkoutUID)
	}
	return "", nil
}

func (f *FakeCartManager) InitVippsPayment(c context.Context, checkoutUID string, returnURL string) (VippsPayment, error) {
	f.record("InitVippsPayment")
	if f.InitVippsPaymentFunc != nil {
		return f.InitVippsPaymentFunc(c, checkoutUID, returnURL)
	}
	return VippsPayment{}, nil
}

func (f *FakeCartManager) VippsPaymentStatus(c context.Context, checkoutUID string) (string, error) {
	f.record("VippsPaymentStatus")
	if f.VippsPaymentStatusFunc != nil {
		return f.VippsPaymentStatusFunc(c, checkoutUID)
	}
	return "", nil
}

func (f *FakeCartManager) AddProductToCart(c context.Context, productUID string) error {
	f.record("AddProductToCart")
	if f.AddProductToCartFunc != nil {
		return f.AddProductToCartFunc(c, productUID)
	}
	return nil
}
