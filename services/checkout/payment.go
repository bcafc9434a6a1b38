package checkout

import (
	"context"
	"fmt"

	"github.com/vioreel/viocommerce/lib/myerrors"
	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/services/cart"
	"github.com/vioreel/viocommerce/services/checkoutapi"
	"github.com/vioreel/viocommerce/services/checkoutklarna"
	"github.com/vioreel/viocommerce/services/checkoutstripe"
	"github.com/vioreel/viocommerce/services/deeplink"
)

// Thin wrappers around the cart boundary. An empty result without an explicit
// delegate error is turned into a generic failure so callers never have to
// null-check provider payloads.

func (oc *OverlayController) InitKlarna(c context.Context) (cart.KlarnaWebSession, error) {
	session, err := oc.cartManager.InitKlarnaWeb(c, oc.state.Get().CheckoutUID)
	if err != nil {
		return cart.KlarnaWebSession{}, err
	}
	if session.URL == "" && session.SnippetHTML == "" {
		return cart.KlarnaWebSession{}, myerrors.NewInternalError(fmt.Errorf("Klarna init failed"))
	}
	return session, nil
}

func (oc *OverlayController) InitKlarnaNative(c context.Context) (cart.KlarnaInitResult, error) {
	result, err := oc.cartManager.InitKlarnaNative(c, oc.state.Get().CheckoutUID, oc.buildKlarnaInitRequest())
	if err != nil {
		return cart.KlarnaInitResult{}, err
	}
	if result.ClientToken == "" {
		return cart.KlarnaInitResult{}, myerrors.NewInternalError(fmt.Errorf("Klarna init failed"))
	}
	return result, nil
}

func (oc *OverlayController) ConfirmKlarnaNative(c context.Context, authToken string) error {
	return oc.cartManager.ConfirmKlarnaNative(c, oc.state.Get().CheckoutUID, authToken)
}

func (oc *OverlayController) FetchKlarnaOrder(c context.Context) (cart.KlarnaOrder, error) {
	order, err := oc.cartManager.FetchKlarnaOrder(c, oc.state.Get().CheckoutUID)
	if err != nil {
		return cart.KlarnaOrder{}, err
	}
	if order.OrderID == "" {
		return cart.KlarnaOrder{}, myerrors.NewInternalError(fmt.Errorf("Klarna order fetch failed"))
	}
	return order, nil
}

func (oc *OverlayController) RequestStripeIntent(c context.Context) (cart.StripeIntent, error) {
	intent, err := oc.cartManager.RequestStripeIntent(c, oc.state.Get().CheckoutUID)
	if err != nil {
		return cart.StripeIntent{}, err
	}
	if intent.ClientSecret == "" {
		return cart.StripeIntent{}, myerrors.NewInternalError(fmt.Errorf("Stripe intent request failed"))
	}
	return intent, nil
}

func (oc *OverlayController) RequestStripeLink(c context.Context) (string, error) {
	link, err := oc.cartManager.RequestStripeLink(c, oc.state.Get().CheckoutUID)
	if err != nil {
		return "", err
	}
	if link == "" {
		return "", myerrors.NewInternalError(fmt.Errorf("Stripe link request failed"))
	}
	return link, nil
}

func (oc *OverlayController) buildKlarnaInitRequest() checkoutapi.KlarnaInitRequest {
	oc.draft.Sanitize()
	iso2 := oc.draft.ResolveISO2(oc.fallbackISO2)
	address := oc.draft.AddressPayload(oc.fallbackISO2)

	return checkoutapi.KlarnaInitRequest{
		CountryCode: iso2,
		Currency:    oc.market.Currency,
		Locale:      oc.market.Locale,
		ReturnURL:   oc.config.KlarnaReturnURL,
		Intent:      "buy",
		AutoCapture: true,
		Customer: checkoutapi.KlarnaCustomer{
			Email: oc.draft.Email,
			Phone: oc.draft.ResolveFullPhoneNumber(iso2),
		},
		BillingAddress:  address,
		ShippingAddress: address,
	}
}

// PayWithSelectedMethod dispatches the Review step's primary action to the
// selected provider's flow.
func (oc *OverlayController) PayWithSelectedMethod(c context.Context) {
	scoped := oc.scope(c)
	go func() {
		switch oc.state.Get().SelectedPaymentMethod {
		case checkoutapi.PaymentMethodStripe:
			oc.payWithStripe(scoped)
		case checkoutapi.PaymentMethodKlarna:
			oc.payWithKlarna(scoped)
		case checkoutapi.PaymentMethodVipps:
			oc.payWithVipps(scoped)
		default:
			oc.failPayment(fmt.Errorf("no payment method selected"))
		}
	}()
}

func (oc *OverlayController) payWithStripe(c context.Context) {
	intent, err := oc.RequestStripeIntent(c)
	if err != nil {
		oc.failPayment(err)
		return
	}

	publishableKey := intent.PublishableKey
	if publishableKey == "" {
		publishableKey = oc.config.StripePublishableKey
	}
	oc.sheetBridge.EnsureConfigured(publishableKey)

	err = oc.sheetBridge.PresentPaymentIntent(c, intent.ClientSecret, func(result checkoutstripe.SheetResult) {
		switch result.Kind {
		case checkoutstripe.SheetResultCompleted:
			oc.GoToStep(StepProcessing)
			oc.updateCheckout(c, "paid", true)
		case checkoutstripe.SheetResultCanceled:
			oc.GoToStep(StepReview)
		default:
			oc.failPayment(fmt.Errorf("%s", sheetFailureMessage(result)))
		}
	})
	if err != nil {
		oc.failPayment(err)
	}
}

func sheetFailureMessage(result checkoutstripe.SheetResult) string {
	if result.Message != "" {
		return result.Message
	}
	return "Payment failed"
}

// payWithKlarna tries the native flow first; any failure before the native
// surface is actually showing falls back to the web flow.
func (oc *OverlayController) payWithKlarna(c context.Context) {
	if oc.config.KlarnaNativeEnabled && oc.klarnaBridge.Ready() {
		if oc.tryKlarnaNative(c) {
			return
		}
	}

	oc.payWithKlarnaWeb(c)
}

func (oc *OverlayController) tryKlarnaNative(c context.Context) bool {
	initResult, err := oc.InitKlarnaNative(c)
	if err != nil {
		oc.logger.Log(c, "", mylog.SeverityWarn, "Klarna native init failed, falling back to web: %s", err)
		return false
	}

	category, matched := checkoutklarna.MatchCategory(initResult.PaymentMethodCategories)
	if !matched {
		oc.logger.Log(c, "", mylog.SeverityWarn, "No supported Klarna category in %v, falling back to web", initResult.PaymentMethodCategories)
		return false
	}

	err = oc.klarnaBridge.Present(c, initResult.ClientToken, category, true, checkoutklarna.Callbacks{
		OnAuthorized: func(authToken string) {
			err := oc.ConfirmKlarnaNative(c, authToken)
			if err != nil {
				oc.failPayment(err)
				return
			}
			oc.GoToStep(StepProcessing)
			oc.updateCheckout(c, "paid", true)
		},
		OnCancel: func() {
			oc.GoToStep(StepReview)
		},
		OnError: func(message string) {
			oc.failPayment(fmt.Errorf("%s", message))
		},
	})
	if err != nil {
		oc.logger.Log(c, "", mylog.SeverityWarn, "Klarna native presentation failed, falling back to web: %s", err)
		return false
	}

	return true
}

// HandleKlarnaWebNavigation is called by the hosted web-checkout shim for
// every page navigation. A terminal redirect is published on the deep-link
// bus and reported back as true so the host can close the web view.
func (oc *OverlayController) HandleKlarnaWebNavigation(c context.Context, rawURL string) bool {
	status, terminal := checkoutklarna.ClassifyRedirectURL(rawURL, oc.successURL(), oc.cancelURL())
	if !terminal {
		return false
	}

	oc.deepLinkBus.Publish(deeplink.Event{Status: status})
	return true
}

func (oc *OverlayController) payWithKlarnaWeb(c context.Context) {
	session, err := oc.InitKlarna(c)
	if err != nil {
		oc.failPayment(err)
		return
	}

	if session.URL != "" {
		oc.navigator.OpenExternalURL(c, session.URL)
		return
	}
	oc.navigator.ShowKlarnaWeb(c, session)
}

// payWithVipps hands the shopper to the external Vipps flow and starts the
// status poller. The deep-link bus resumes the flow when the shopper returns.
func (oc *OverlayController) payWithVipps(c context.Context) {
	checkoutUID := oc.state.Get().CheckoutUID

	payment, err := oc.cartManager.InitVippsPayment(c, checkoutUID, oc.config.VippsReturnURL)
	if err != nil {
		oc.failPayment(err)
		return
	}
	if payment.RedirectURL == "" {
		oc.failPayment(fmt.Errorf("Vipps init failed"))
		return
	}

	oc.vippsTracker.Start(c, checkoutUID, func(checkoutUID string, status string) {
		oc.onVippsStatus(c, checkoutUID, status)
	})

	oc.navigator.OpenExternalURL(c, payment.RedirectURL)
}

// onVippsStatus turns a terminal poll result into a deep-link event, so the
// poller and the return-URL redirect resume the flow through one code path.
func (oc *OverlayController) onVippsStatus(c context.Context, checkoutUID string, status string) {
	oc.logger.Log(c, checkoutUID, mylog.SeverityInfo, "Vipps payment for checkout %s resolved to %s", checkoutUID, status)

	switch status {
	case "authorized", "captured":
		oc.deepLinkBus.Publish(deeplink.Event{Status: deeplink.StatusSuccess})
	default:
		oc.deepLinkBus.Publish(deeplink.Event{Status: deeplink.StatusCancel})
	}
}

func (oc *OverlayController) failPayment(err error) {
	oc.state.Update(func(state State) State {
		state.CurrentStep = StepError
		state.LastError = err.Error()
		return state
	})
}
