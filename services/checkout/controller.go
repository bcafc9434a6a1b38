package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/vioreel/viocommerce/lib/myconfig"
	"github.com/vioreel/viocommerce/lib/myerrors"
	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/lib/mystate"
	"github.com/vioreel/viocommerce/services/analytics"
	"github.com/vioreel/viocommerce/services/cart"
	"github.com/vioreel/viocommerce/services/checkoutapi"
	"github.com/vioreel/viocommerce/services/checkoutdraft"
	"github.com/vioreel/viocommerce/services/checkoutklarna"
	"github.com/vioreel/viocommerce/services/checkoutstripe"
	"github.com/vioreel/viocommerce/services/checkoutvipps"
	"github.com/vioreel/viocommerce/services/deeplink"
)

// Navigator is the host shim that can leave the overlay: open an external
// browser or host the Klarna web checkout page.
type Navigator interface {
	OpenExternalURL(c context.Context, url string)
	ShowKlarnaWeb(c context.Context, session cart.KlarnaWebSession)
}

// State is the complete checkout overlay snapshot, replaced as a whole on
// every change.
type State struct {
	CurrentStep           Step
	SelectedPaymentMethod checkoutapi.PaymentMethod
	AllowedPaymentMethods []checkoutapi.PaymentMethod
	CheckoutUID           string
	Totals                cart.Totals
	IsInitialized         bool
	IsEditingAddress      bool
	IsPlacingOrder        bool
	IsApplyingDiscount    bool
	DiscountInput         string
	DiscountMessage       string
	LastError             string
}

// OverlayController is the checkout state machine. All state lives in one
// observable snapshot; every mutation replaces the snapshot as a whole.
type OverlayController struct {
	logger       mylog.Logger
	config       myconfig.Config
	draft        *checkoutdraft.Draft
	cartManager  cart.CartManager
	analytics    analytics.Manager
	klarnaBridge *checkoutklarna.Bridge
	sheetBridge  *checkoutstripe.SheetBridge
	vippsTracker *checkoutvipps.Tracker
	deepLinkBus  *deeplink.Bus
	navigator    Navigator

	state        *mystate.Holder[State]
	market       cart.Market
	fallbackISO2 string
	unsubscribe  func()

	sessionCtx    context.Context
	sessionCancel context.CancelFunc
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewOverlayController(config myconfig.Config, prefill *checkoutdraft.Prefill,
	cartManager cart.CartManager, analyticsManager analytics.Manager,
	klarnaBridge *checkoutklarna.Bridge, sheetBridge *checkoutstripe.SheetBridge,
	vippsTracker *checkoutvipps.Tracker, deepLinkBus *deeplink.Bus,
	navigator Navigator) *OverlayController {
	return &OverlayController{
		logger:       mylog.New("checkout"),
		config:       config,
		draft:        checkoutdraft.New(prefill, config.IsDevelopment()),
		cartManager:  cartManager,
		analytics:    analyticsManager,
		klarnaBridge: klarnaBridge,
		sheetBridge:  sheetBridge,
		vippsTracker: vippsTracker,
		deepLinkBus:  deepLinkBus,
		navigator:    navigator,
		state: mystate.NewHolder(State{
			CurrentStep: StepOrderSummary,
		}),
	}
}

// Start runs the initialization protocol and begins consuming the deep-link
// bus. Must be balanced with Close.
func (oc *OverlayController) Start(c context.Context) {
	oc.sessionCtx, oc.sessionCancel = context.WithCancel(c)

	oc.initialize(oc.sessionCtx)

	events, cancel := oc.deepLinkBus.Subscribe()
	oc.unsubscribe = cancel
	go oc.consumeDeepLinks(oc.sessionCtx, events)
}

// Close tears the session down: stops the bus subscription, cancels work
// still in flight and stops every outstanding Vipps poll.
func (oc *OverlayController) Close(c context.Context) {
	if oc.unsubscribe != nil {
		oc.unsubscribe()
		oc.unsubscribe = nil
	}
	if oc.sessionCancel != nil {
		oc.sessionCancel()
		oc.sessionCancel = nil
	}
	oc.vippsTracker.StopAll()
}

// scope binds background work to the session lifetime, so a call completing
// after Close cannot mutate the state of a closed controller.
func (oc *OverlayController) scope(c context.Context) context.Context {
	if oc.sessionCtx != nil {
		return oc.sessionCtx
	}
	return c
}

func (oc *OverlayController) State() State {
	return oc.state.Get()
}

func (oc *OverlayController) Draft() *checkoutdraft.Draft {
	return oc.draft
}

// Subscribe observes the checkout snapshot. The observer is called with the
// current snapshot immediately. The returned func unsubscribes.
func (oc *OverlayController) Subscribe(observer func(State)) func() {
	return oc.state.Subscribe(observer)
}

func (oc *OverlayController) initialize(c context.Context) {
	err := oc.cartManager.EnsureCatalogLoaded(c)
	if err != nil {
		oc.logger.Log(c, "", mylog.SeverityWarn, "Error loading catalog: %s", err)
	}

	market, err := oc.cartManager.SelectedMarket(c)
	if err != nil {
		oc.logger.Log(c, "", mylog.SeverityWarn, "Error fetching selected market: %s", err)
	} else {
		oc.draft.SyncFromMarket(market.CountryName, market.CountryCode)
		oc.market = market
		oc.fallbackISO2 = market.CountryCode
	}

	reported, err := oc.cartManager.AvailablePaymentMethods(c)
	if err != nil {
		oc.logger.Log(c, "", mylog.SeverityWarn, "Error fetching available payment methods: %s", err)
		reported = nil
	}
	allowed := resolveAllowedMethods(oc.config.PaymentMethods, reported)

	totals, err := oc.cartManager.RefreshTotals(c)
	if err != nil {
		oc.logger.Log(c, "", mylog.SeverityWarn, "Error refreshing totals: %s", err)
	}

	oc.state.Update(func(state State) State {
		state.AllowedPaymentMethods = allowed
		if !containsMethod(allowed, state.SelectedPaymentMethod) && len(allowed) > 0 {
			state.SelectedPaymentMethod = allowed[0]
		}
		state.Totals = totals
		state.IsInitialized = true
		return state
	})
}

// GoToNextStep and GoToPreviousStep follow the transition table; GoToStep is
// the unchecked jump used by payment-result callbacks.
func (oc *OverlayController) GoToNextStep() {
	oc.state.Update(func(state State) State {
		state.CurrentStep = NextStep(state.CurrentStep)
		return state
	})
}

func (oc *OverlayController) GoToPreviousStep() {
	oc.state.Update(func(state State) State {
		state.CurrentStep = PreviousStep(state.CurrentStep)
		return state
	})
}

func (oc *OverlayController) GoToStep(step Step) {
	oc.state.Update(func(state State) State {
		state.CurrentStep = step
		return state
	})
}

// SelectPaymentMethod is a no-op when the method is not allowed.
func (oc *OverlayController) SelectPaymentMethod(method checkoutapi.PaymentMethod) {
	oc.state.Update(func(state State) State {
		if containsMethod(state.AllowedPaymentMethods, method) {
			state.SelectedPaymentMethod = method
		}
		return state
	})
}

func (oc *OverlayController) SetEditingAddress(editing bool) {
	oc.state.Update(func(state State) State {
		state.IsEditingAddress = editing
		return state
	})
}

func (oc *OverlayController) SetDiscountInput(code string) {
	oc.state.Update(func(state State) State {
		state.DiscountInput = code
		return state
	})
}

// ProceedToPayment creates the checkout on the backend. A second call while
// one is in flight is a no-op: the in-flight flag is tested and set in one
// step, which is the guard against duplicate creation from double-taps.
func (oc *OverlayController) ProceedToPayment(c context.Context, advanceToReview bool, onResult func(checkoutUID string, err error)) {
	started := oc.state.TryUpdate(func(state State) (State, bool) {
		if state.IsPlacingOrder {
			return state, false
		}
		state.IsPlacingOrder = true
		return state, true
	})
	if !started {
		return
	}

	go oc.placeOrder(oc.scope(c), advanceToReview, onResult)
}

func (oc *OverlayController) placeOrder(c context.Context, advanceToReview bool, onResult func(checkoutUID string, err error)) {
	oc.draft.Sanitize()

	checkout, err := oc.cartManager.CreateCheckout(c, cart.CreateCheckoutRequest{
		Email:      oc.draft.Email,
		SuccessURL: oc.successURL(),
		CancelURL:  oc.cancelURL(),
	})
	if c.Err() != nil {
		return
	}
	if err != nil {
		oc.state.Update(func(state State) State {
			state.IsPlacingOrder = false
			state.CurrentStep = StepError
			state.LastError = err.Error()
			return state
		})
		onResult("", err)
		return
	}

	totals, err := oc.cartManager.RefreshTotals(c)
	if err != nil {
		oc.logger.Log(c, checkout.ID, mylog.SeverityWarn, "Error refreshing totals: %s", err)
	}

	oc.state.Update(func(state State) State {
		state.IsPlacingOrder = false
		state.CheckoutUID = checkout.ID
		state.Totals = totals
		state.LastError = ""
		if advanceToReview {
			state.CurrentStep = StepReview
		}
		return state
	})
	onResult(checkout.ID, nil)
}

// UpdateCheckout pushes the draft's address and consent fields to the
// backend. On success with advanceToSuccess the order is considered done:
// the step jumps to Success, the cart is cleared and the purchase is tracked.
func (oc *OverlayController) UpdateCheckout(c context.Context, status string, advanceToSuccess bool, onResult func(error)) {
	scoped := oc.scope(c)
	go func() {
		onResult(oc.updateCheckout(scoped, status, advanceToSuccess))
	}()
}

func (oc *OverlayController) updateCheckout(c context.Context, status string, advanceToSuccess bool) error {
	oc.draft.Sanitize()
	snapshot := oc.state.Get()

	// Billing intentionally mirrors shipping: the product captures one address
	address := oc.draft.AddressPayload(oc.fallbackISO2)

	err := oc.cartManager.UpdateCheckout(c, snapshot.CheckoutUID, checkoutapi.CheckoutUpdateRequest{
		Email:                     oc.draft.Email,
		SuccessURL:                oc.successURL(),
		CancelURL:                 oc.cancelURL(),
		PaymentMethod:             snapshot.SelectedPaymentMethod,
		ShippingAddress:           address,
		BillingAddress:            address,
		AcceptsTerms:              oc.draft.AcceptsTerms,
		AcceptsPurchaseConditions: oc.draft.AcceptsPurchaseConditions,
		Status:                    status,
	})
	if c.Err() != nil {
		return c.Err()
	}
	if err != nil {
		oc.state.Update(func(state State) State {
			state.CurrentStep = StepError
			state.LastError = err.Error()
			return state
		})
		return err
	}

	if !advanceToSuccess {
		return nil
	}

	oc.GoToStep(StepSuccess)

	err = oc.cartManager.ClearCart(c)
	if err != nil {
		oc.logger.Log(c, snapshot.CheckoutUID, mylog.SeverityWarn, "Error clearing cart: %s", err)
	}

	oc.trackPurchase(c, snapshot)

	return nil
}

func (oc *OverlayController) trackPurchase(c context.Context, snapshot State) {
	lines := make([]analytics.PurchaseLine, 0, len(snapshot.Totals.Lines))
	for _, line := range snapshot.Totals.Lines {
		lines = append(lines, analytics.PurchaseLine{
			ProductUID:     line.ProductID,
			Name:           line.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
		})
	}

	event := analytics.PurchaseEvent{
		CheckoutUID:   snapshot.CheckoutUID,
		Lines:         lines,
		RevenueCents:  snapshot.Totals.TotalCents,
		Currency:      snapshot.Totals.Currency,
		PaymentMethod: snapshot.SelectedPaymentMethod,
	}
	if snapshot.Totals.ShippingCents > 0 {
		event.ShippingCents = snapshot.Totals.ShippingCents
	}

	oc.analytics.TrackPurchase(c, event)
}

// ApplyDiscount applies the entered code. Guarded against concurrent discount
// operations the same way order placement is.
func (oc *OverlayController) ApplyDiscount(c context.Context, onResult func(error)) {
	started := oc.state.TryUpdate(func(state State) (State, bool) {
		if state.IsApplyingDiscount {
			return state, false
		}
		state.IsApplyingDiscount = true
		return state, true
	})
	if !started {
		return
	}

	go func() {
		onResult(oc.applyDiscount(oc.scope(c)))
	}()
}

func (oc *OverlayController) applyDiscount(c context.Context) error {
	code := strings.TrimSpace(oc.state.Get().DiscountInput)
	if code == "" {
		oc.state.Update(func(state State) State {
			state.IsApplyingDiscount = false
			state.DiscountMessage = "Enter a discount code"
			return state
		})
		return myerrors.NewInvalidInputError(fmt.Errorf("missing discount code"))
	}

	err := oc.cartManager.ApplyDiscount(c, code)
	if err != nil {
		oc.state.Update(func(state State) State {
			state.IsApplyingDiscount = false
			state.DiscountMessage = discountFailureMessage(err)
			return state
		})
		return err
	}

	totals, err := oc.cartManager.RefreshTotals(c)
	if err != nil {
		oc.logger.Log(c, "", mylog.SeverityWarn, "Error refreshing totals: %s", err)
	}

	oc.state.Update(func(state State) State {
		state.IsApplyingDiscount = false
		state.DiscountInput = ""
		state.DiscountMessage = ""
		state.Totals = totals
		return state
	})

	return nil
}

// ApplyDiscountOrCreate first creates the checkout when none exists yet, so a
// discount can be entered before the shopper ever proceeded to payment.
func (oc *OverlayController) ApplyDiscountOrCreate(c context.Context, onResult func(error)) {
	if oc.state.Get().CheckoutUID != "" {
		oc.ApplyDiscount(c, onResult)
		return
	}

	oc.ProceedToPayment(c, false, func(checkoutUID string, err error) {
		if err != nil {
			onResult(err)
			return
		}
		oc.ApplyDiscount(c, onResult)
	})
}

func (oc *OverlayController) RemoveDiscount(c context.Context, onResult func(error)) {
	started := oc.state.TryUpdate(func(state State) (State, bool) {
		if state.IsApplyingDiscount {
			return state, false
		}
		state.IsApplyingDiscount = true
		return state, true
	})
	if !started {
		return
	}

	scoped := oc.scope(c)
	go func() {
		err := oc.cartManager.RemoveDiscount(scoped)

		totals, totalsErr := oc.cartManager.RefreshTotals(scoped)
		if totalsErr != nil {
			oc.logger.Log(c, "", mylog.SeverityWarn, "Error refreshing totals: %s", totalsErr)
		}

		oc.state.Update(func(state State) State {
			state.IsApplyingDiscount = false
			if err != nil {
				state.DiscountMessage = discountFailureMessage(err)
			} else {
				state.DiscountMessage = ""
				state.Totals = totals
			}
			return state
		})
		onResult(err)
	}()
}

func discountFailureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return "Could not apply discount"
	}
	return err.Error()
}

func (oc *OverlayController) consumeDeepLinks(c context.Context, events <-chan deeplink.Event) {
	for event := range events {
		oc.handleDeepLink(c, event)
	}
}

func (oc *OverlayController) handleDeepLink(c context.Context, event deeplink.Event) {
	checkoutUID := oc.state.Get().CheckoutUID
	oc.logger.Log(c, checkoutUID, mylog.SeverityInfo, "Deep link %s for checkout %s", event.Status, checkoutUID)

	switch event.Status {
	case deeplink.StatusSuccess:
		oc.GoToStep(StepProcessing)
		err := oc.updateCheckout(c, "paid", true)
		if err == nil {
			oc.vippsTracker.Stop(checkoutUID)
		}
	case deeplink.StatusCancel:
		oc.vippsTracker.Stop(checkoutUID)
		oc.GoToStep(StepError)
	}
}

func (oc *OverlayController) successURL() string {
	if oc.draft.SuccessURL != "" {
		return oc.draft.SuccessURL
	}
	return oc.config.SuccessURL
}

func (oc *OverlayController) cancelURL() string {
	if oc.draft.CancelURL != "" {
		return oc.draft.CancelURL
	}
	return oc.config.CancelURL
}
