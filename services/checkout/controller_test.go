package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v74"
	"go.uber.org/mock/gomock"

	"github.com/vioreel/viocommerce/lib/myconfig"
	"github.com/vioreel/viocommerce/lib/mystore"
	"github.com/vioreel/viocommerce/lib/mytime"
	"github.com/vioreel/viocommerce/services/analytics"
	"github.com/vioreel/viocommerce/services/cart"
	"github.com/vioreel/viocommerce/services/checkoutapi"
	"github.com/vioreel/viocommerce/services/checkoutklarna"
	"github.com/vioreel/viocommerce/services/checkoutstripe"
	"github.com/vioreel/viocommerce/services/checkoutvipps"
	"github.com/vioreel/viocommerce/services/deeplink"
)

func TestInitialization(t *testing.T) {
	c := context.TODO()

	t.Run("Init syncs market, resolves methods and snaps the selection", func(t *testing.T) {
		// given
		env := setupCheckout(t, func(config *myconfig.Config) {
			config.PaymentMethods = []string{"vipps", "klarna"}
		})
		env.cartManager.SelectedMarketFunc = func(c context.Context) (cart.Market, error) {
			return cart.Market{CountryName: "Norway", CountryCode: "NO", Currency: "NOK", Locale: "nb-NO"}, nil
		}
		env.cartManager.AvailablePaymentMethodsFunc = func(c context.Context) ([]string, error) {
			return []string{"klarna", "vipps"}, nil
		}

		// when
		env.controller.Start(c)
		defer env.controller.Close(c)

		// then
		state := env.controller.State()
		assert.True(t, state.IsInitialized)
		assert.Equal(t, StepOrderSummary, state.CurrentStep)
		assert.Equal(t, []checkoutapi.PaymentMethod{checkoutapi.PaymentMethodVipps, checkoutapi.PaymentMethodKlarna}, state.AllowedPaymentMethods)
		assert.Equal(t, checkoutapi.PaymentMethodVipps, state.SelectedPaymentMethod)
		assert.Equal(t, 1, env.cartManager.CallCount("EnsureCatalogLoaded"))

		// demo defaults in dev, market country adopted via the draft
		assert.Equal(t, "demo@vioreel.com", env.controller.Draft().Email)
		assert.Equal(t, "NO", env.controller.Draft().CountryCode)
	})

	t.Run("Both allow-lists empty yields the full default set", func(t *testing.T) {
		env := setupCheckout(t, nil)

		env.controller.Start(c)
		defer env.controller.Close(c)

		state := env.controller.State()
		assert.Equal(t, checkoutapi.DefaultPaymentMethods, state.AllowedPaymentMethods)
		assert.Equal(t, checkoutapi.PaymentMethodStripe, state.SelectedPaymentMethod)
	})
}

func TestProceedToPayment(t *testing.T) {
	c := context.TODO()

	t.Run("Double tap creates exactly one checkout", func(t *testing.T) {
		// given
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)

		release := make(chan struct{})
		env.cartManager.CreateCheckoutFunc = func(c context.Context, req cart.CreateCheckoutRequest) (cart.Checkout, error) {
			<-release
			return cart.Checkout{ID: "checkout-1"}, nil
		}

		done := make(chan error, 2)
		onResult := func(checkoutUID string, err error) {
			done <- err
		}

		// when
		env.controller.ProceedToPayment(c, true, onResult)
		env.controller.ProceedToPayment(c, true, onResult)
		close(release)

		// then
		assert.NoError(t, <-done)
		assert.Equal(t, 1, env.cartManager.CallCount("CreateCheckout"))

		state := env.controller.State()
		assert.False(t, state.IsPlacingOrder)
		assert.Equal(t, StepReview, state.CurrentStep)
		assert.Equal(t, "checkout-1", state.CheckoutUID)
	})

	t.Run("Creation failure transitions to Error and releases the guard", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)

		env.cartManager.CreateCheckoutFunc = func(c context.Context, req cart.CreateCheckoutRequest) (cart.Checkout, error) {
			return cart.Checkout{}, fmt.Errorf("backend down")
		}

		done := make(chan error, 1)
		env.controller.ProceedToPayment(c, true, func(checkoutUID string, err error) {
			done <- err
		})

		assert.Error(t, <-done)
		state := env.controller.State()
		assert.Equal(t, StepError, state.CurrentStep)
		assert.False(t, state.IsPlacingOrder)
	})
}

func TestDeepLinkRoundTrip(t *testing.T) {
	c := context.TODO()

	t.Run("Success event updates the checkout to paid exactly once and clears the cart", func(t *testing.T) {
		// given
		env := setupCheckout(t, nil)
		env.cartManager.RefreshTotalsFunc = func(c context.Context) (cart.Totals, error) {
			return cart.Totals{
				Lines:         []cart.Line{{ProductID: "p1", Name: "Sneaker", Quantity: 2, UnitPriceCents: 9900}},
				TotalCents:    19800,
				ShippingCents: 0,
				Currency:      "NOK",
			}, nil
		}

		var mutex sync.Mutex
		updates := []checkoutapi.CheckoutUpdateRequest{}
		env.cartManager.UpdateCheckoutFunc = func(c context.Context, checkoutUID string, req checkoutapi.CheckoutUpdateRequest) error {
			mutex.Lock()
			defer mutex.Unlock()
			updates = append(updates, req)
			return nil
		}

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)

		// when
		env.bus.Publish(deeplink.Event{Status: deeplink.StatusSuccess})

		// then
		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepSuccess
		}, time.Second, 5*time.Millisecond)

		mutex.Lock()
		assert.Len(t, updates, 1)
		assert.Equal(t, "paid", updates[0].Status)
		assert.Equal(t, updates[0].ShippingAddress, updates[0].BillingAddress)
		mutex.Unlock()

		assert.Equal(t, 1, env.cartManager.CallCount("ClearCart"))

		purchases := env.analytics.TrackedPurchases()
		assert.Len(t, purchases, 1)
		assert.Equal(t, int64(19800), purchases[0].RevenueCents)
		assert.Equal(t, int64(0), purchases[0].ShippingCents)
		assert.Len(t, purchases[0].Lines, 1)
	})

	t.Run("Hosted web-checkout navigation to the cancel URL resumes through the bus", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)

		assert.False(t, env.controller.HandleKlarnaWebNavigation(c, "https://klarna.example/checkout/step2"))
		assert.True(t, env.controller.HandleKlarnaWebNavigation(c, "http://localhost:8080/checkout/return/cancel?checkoutUID=checkout-1"))

		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepError
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("Cancel event transitions to Error", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)

		env.bus.Publish(deeplink.Event{Status: deeplink.StatusCancel})

		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepError
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 0, env.cartManager.CallCount("UpdateCheckout"))
	})
}

func TestPayWithStripe(t *testing.T) {
	c := context.TODO()

	t.Run("Completed sheet advances to Success and tracks the purchase with shipping", func(t *testing.T) {
		// given
		env := setupCheckout(t, nil)
		env.cartManager.RefreshTotalsFunc = func(c context.Context) (cart.Totals, error) {
			return cart.Totals{TotalCents: 10900, ShippingCents: 1000, Currency: "NOK"}, nil
		}
		env.cartManager.RequestStripeIntentFunc = func(c context.Context, checkoutUID string) (cart.StripeIntent, error) {
			return cart.StripeIntent{ClientSecret: "pi_1_secret_abc", PublishableKey: "pk_test_123"}, nil
		}
		env.sheetHost.outcome = checkoutstripe.SheetOutcomeCompleted
		env.payer.status = stripe.PaymentIntentStatusSucceeded

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)
		env.controller.SelectPaymentMethod(checkoutapi.PaymentMethodStripe)

		// when
		env.controller.PayWithSelectedMethod(c)

		// then
		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepSuccess
		}, time.Second, 5*time.Millisecond)

		assert.Equal(t, 1, env.cartManager.CallCount("UpdateCheckout"))
		assert.Equal(t, 1, env.cartManager.CallCount("ClearCart"))

		purchases := env.analytics.TrackedPurchases()
		assert.Len(t, purchases, 1)
		assert.Equal(t, int64(1000), purchases[0].ShippingCents)
		assert.Equal(t, checkoutapi.PaymentMethodStripe, purchases[0].PaymentMethod)
	})

	t.Run("Canceled sheet returns to Review", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.cartManager.RequestStripeIntentFunc = func(c context.Context, checkoutUID string) (cart.StripeIntent, error) {
			return cart.StripeIntent{ClientSecret: "pi_1_secret_abc", PublishableKey: "pk_test_123"}, nil
		}
		env.sheetHost.outcome = checkoutstripe.SheetOutcomeCanceled

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)
		env.controller.SelectPaymentMethod(checkoutapi.PaymentMethodStripe)

		env.controller.PayWithSelectedMethod(c)

		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepReview && env.cartManager.CallCount("RequestStripeIntent") == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 0, env.cartManager.CallCount("UpdateCheckout"))
	})

	t.Run("Empty intent fails the payment", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.cartManager.RequestStripeIntentFunc = func(c context.Context, checkoutUID string) (cart.StripeIntent, error) {
			return cart.StripeIntent{}, nil
		}

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)
		env.controller.SelectPaymentMethod(checkoutapi.PaymentMethodStripe)

		env.controller.PayWithSelectedMethod(c)

		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepError
		}, time.Second, 5*time.Millisecond)
	})
}

func TestPayWithKlarna(t *testing.T) {
	c := context.TODO()

	t.Run("Native flow authorizes, confirms and completes", func(t *testing.T) {
		// given
		env := setupCheckout(t, nil)
		env.klarnaBridge.Init(env.klarnaHost)
		env.cartManager.InitKlarnaNativeFunc = func(c context.Context, checkoutUID string, req checkoutapi.KlarnaInitRequest) (cart.KlarnaInitResult, error) {
			assert.Equal(t, "NO", req.CountryCode)
			return cart.KlarnaInitResult{ClientToken: "token-1", PaymentMethodCategories: []string{"pay_later"}}, nil
		}

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)
		env.controller.SelectPaymentMethod(checkoutapi.PaymentMethodKlarna)

		// when
		env.controller.PayWithSelectedMethod(c)

		assert.Eventually(t, func() bool {
			return env.klarnaHost.launchCount() == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, "pay_later", env.klarnaHost.lastCategory())

		env.klarnaBridge.HandleActivityResult(c, checkoutklarna.ActivityResult{OK: true, AuthToken: "auth-1"})

		// then
		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepSuccess
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 1, env.cartManager.CallCount("ConfirmKlarnaNative"))
		assert.Equal(t, 1, env.cartManager.CallCount("UpdateCheckout"))

		// a duplicate surface result finds no pending callbacks
		env.klarnaBridge.HandleActivityResult(c, checkoutklarna.ActivityResult{OK: true, AuthToken: "auth-2"})
		assert.Equal(t, 1, env.cartManager.CallCount("ConfirmKlarnaNative"))
	})

	t.Run("Native init without token falls back to the web flow", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.klarnaBridge.Init(env.klarnaHost)
		env.cartManager.InitKlarnaNativeFunc = func(c context.Context, checkoutUID string, req checkoutapi.KlarnaInitRequest) (cart.KlarnaInitResult, error) {
			return cart.KlarnaInitResult{}, nil
		}
		env.cartManager.InitKlarnaWebFunc = func(c context.Context, checkoutUID string) (cart.KlarnaWebSession, error) {
			return cart.KlarnaWebSession{URL: "https://klarna.example/pay"}, nil
		}

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)
		env.controller.SelectPaymentMethod(checkoutapi.PaymentMethodKlarna)

		env.controller.PayWithSelectedMethod(c)

		assert.Eventually(t, func() bool {
			return env.navigator.openedCount() == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, "https://klarna.example/pay", env.navigator.lastOpenedURL())
		assert.Equal(t, 0, env.klarnaHost.launchCount())
	})

	t.Run("Unready bridge goes straight to web with a hosted snippet", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.cartManager.InitKlarnaWebFunc = func(c context.Context, checkoutUID string) (cart.KlarnaWebSession, error) {
			return cart.KlarnaWebSession{SnippetHTML: "<div>klarna</div>"}, nil
		}

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)
		env.controller.SelectPaymentMethod(checkoutapi.PaymentMethodKlarna)

		env.controller.PayWithSelectedMethod(c)

		assert.Eventually(t, func() bool {
			return env.navigator.klarnaWebCount() == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 0, env.cartManager.CallCount("InitKlarnaNative"))
	})
}

func TestPayWithVipps(t *testing.T) {
	c := context.TODO()

	t.Run("Init opens the external flow and the poller completes the payment", func(t *testing.T) {
		// given
		env := setupCheckout(t, nil)
		env.cartManager.InitVippsPaymentFunc = func(c context.Context, checkoutUID string, returnURL string) (cart.VippsPayment, error) {
			return cart.VippsPayment{RedirectURL: "https://vipps.example/pay"}, nil
		}
		env.cartManager.VippsPaymentStatusFunc = func(c context.Context, checkoutUID string) (string, error) {
			return "authorized", nil
		}

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)
		env.controller.SelectPaymentMethod(checkoutapi.PaymentMethodVipps)

		// when
		env.controller.PayWithSelectedMethod(c)

		// then
		assert.Eventually(t, func() bool {
			return env.navigator.openedCount() == 1
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, "https://vipps.example/pay", env.navigator.lastOpenedURL())

		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepSuccess
		}, time.Second, 5*time.Millisecond)
		assert.False(t, env.tracker.Tracking("checkout-1"))
		assert.Equal(t, 1, env.cartManager.CallCount("UpdateCheckout"))
	})

	t.Run("Missing redirect URL fails the payment", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.cartManager.InitVippsPaymentFunc = func(c context.Context, checkoutUID string, returnURL string) (cart.VippsPayment, error) {
			return cart.VippsPayment{}, nil
		}

		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)
		env.controller.SelectPaymentMethod(checkoutapi.PaymentMethodVipps)

		env.controller.PayWithSelectedMethod(c)

		assert.Eventually(t, func() bool {
			return env.controller.State().CurrentStep == StepError
		}, time.Second, 5*time.Millisecond)
		assert.False(t, env.tracker.Tracking("checkout-1"))
	})
}

func TestDiscounts(t *testing.T) {
	c := context.TODO()

	t.Run("Applying a code clears the input and refreshes totals", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)

		env.controller.SetDiscountInput("  SUMMER10  ")

		var appliedCode string
		env.cartManager.ApplyDiscountFunc = func(c context.Context, code string) error {
			appliedCode = code
			return nil
		}

		done := make(chan error, 1)
		env.controller.ApplyDiscount(c, func(err error) { done <- err })

		assert.NoError(t, <-done)
		assert.Equal(t, "SUMMER10", appliedCode)

		state := env.controller.State()
		assert.Empty(t, state.DiscountInput)
		assert.Empty(t, state.DiscountMessage)
		assert.False(t, state.IsApplyingDiscount)
	})

	t.Run("Concurrent discount operations are blocked by the guard", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)

		env.controller.SetDiscountInput("SUMMER10")

		release := make(chan struct{})
		env.cartManager.ApplyDiscountFunc = func(c context.Context, code string) error {
			<-release
			return nil
		}

		done := make(chan error, 2)
		env.controller.ApplyDiscount(c, func(err error) { done <- err })
		env.controller.ApplyDiscount(c, func(err error) { done <- err })
		close(release)

		assert.NoError(t, <-done)
		assert.Equal(t, 1, env.cartManager.CallCount("ApplyDiscount"))
	})

	t.Run("Failure surfaces the delegate message", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)

		env.controller.SetDiscountInput("EXPIRED")
		env.cartManager.ApplyDiscountFunc = func(c context.Context, code string) error {
			return fmt.Errorf("code expired")
		}

		done := make(chan error, 1)
		env.controller.ApplyDiscount(c, func(err error) { done <- err })

		assert.Error(t, <-done)
		assert.Equal(t, "code expired", env.controller.State().DiscountMessage)
		assert.False(t, env.controller.State().IsApplyingDiscount)
	})
}

func TestProviderWrappers(t *testing.T) {
	c := context.TODO()

	t.Run("Empty delegate results become generic failures", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)

		env.cartManager.FetchKlarnaOrderFunc = func(c context.Context, checkoutUID string) (cart.KlarnaOrder, error) {
			return cart.KlarnaOrder{}, nil
		}
		env.cartManager.RequestStripeLinkFunc = func(c context.Context, checkoutUID string) (string, error) {
			return "", nil
		}

		_, err := env.controller.FetchKlarnaOrder(c)
		assert.ErrorContains(t, err, "Klarna order fetch failed")

		_, err = env.controller.RequestStripeLink(c)
		assert.ErrorContains(t, err, "Stripe link request failed")
	})

	t.Run("Delegate errors pass through unchanged", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)

		env.cartManager.FetchKlarnaOrderFunc = func(c context.Context, checkoutUID string) (cart.KlarnaOrder, error) {
			return cart.KlarnaOrder{}, fmt.Errorf("klarna down")
		}
		env.cartManager.RequestStripeLinkFunc = func(c context.Context, checkoutUID string) (string, error) {
			return "", fmt.Errorf("stripe down")
		}

		_, err := env.controller.FetchKlarnaOrder(c)
		assert.ErrorContains(t, err, "klarna down")

		_, err = env.controller.RequestStripeLink(c)
		assert.ErrorContains(t, err, "stripe down")
	})

	t.Run("Populated results are returned as-is", func(t *testing.T) {
		env := setupCheckout(t, nil)
		env.controller.Start(c)
		defer env.controller.Close(c)
		placeOrder(t, env.controller)

		env.cartManager.FetchKlarnaOrderFunc = func(c context.Context, checkoutUID string) (cart.KlarnaOrder, error) {
			return cart.KlarnaOrder{OrderID: "order-1", Status: "captured"}, nil
		}
		env.cartManager.RequestStripeLinkFunc = func(c context.Context, checkoutUID string) (string, error) {
			return "https://pay.stripe.example/link-1", nil
		}

		order, err := env.controller.FetchKlarnaOrder(c)
		assert.NoError(t, err)
		assert.Equal(t, "order-1", order.OrderID)

		link, err := env.controller.RequestStripeLink(c)
		assert.NoError(t, err)
		assert.Equal(t, "https://pay.stripe.example/link-1", link)
	})
}

func TestClose(t *testing.T) {
	c := context.TODO()

	t.Run("Order placement resolving after close leaves the state untouched", func(t *testing.T) {
		// given
		env := setupCheckout(t, nil)
		env.controller.Start(c)

		release := make(chan struct{})
		env.cartManager.CreateCheckoutFunc = func(c context.Context, req cart.CreateCheckoutRequest) (cart.Checkout, error) {
			<-release
			return cart.Checkout{ID: "checkout-1"}, nil
		}
		env.controller.ProceedToPayment(c, true, func(checkoutUID string, err error) {})

		// when: the session is torn down while the creation is in flight
		env.controller.Close(c)
		close(release)

		// then
		assert.Never(t, func() bool {
			state := env.controller.State()
			return state.CheckoutUID != "" || state.CurrentStep != StepOrderSummary
		}, 100*time.Millisecond, 5*time.Millisecond)
	})
}

func placeOrder(t *testing.T, controller *OverlayController) {
	t.Helper()

	done := make(chan error, 1)
	controller.ProceedToPayment(context.TODO(), true, func(checkoutUID string, err error) {
		done <- err
	})
	assert.NoError(t, <-done)
}

type checkoutEnv struct {
	controller   *OverlayController
	cartManager  *cart.FakeCartManager
	analytics    *analytics.RecordingManager
	klarnaBridge *checkoutklarna.Bridge
	klarnaHost   *fakeKlarnaHost
	sheetHost    *fakeSheetHost
	payer        *fakePayer
	tracker      *checkoutvipps.Tracker
	bus          *deeplink.Bus
	navigator    *fakeNavigator
}

func setupCheckout(t *testing.T, adjustConfig func(*myconfig.Config)) *checkoutEnv {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	config := myconfig.Config{
		Environment:          myconfig.EnvironmentDev,
		StripePublishableKey: "pk_test_fallback",
		KlarnaNativeEnabled:  true,
		KlarnaReturnURL:      "http://localhost:8080/checkout/return",
		VippsReturnURL:       "http://localhost:8080/checkout/return",
		SuccessURL:           "http://localhost:8080/checkout/return/success",
		CancelURL:            "http://localhost:8080/checkout/return/cancel",
		VippsPollInterval:    10 * time.Millisecond,
	}
	if adjustConfig != nil {
		adjustConfig(&config)
	}

	cartManager := cart.NewFakeCartManager()
	analyticsManager := analytics.NewRecordingManager()
	klarnaHost := &fakeKlarnaHost{}
	klarnaBridge := checkoutklarna.NewBridge()
	payer := &fakePayer{status: stripe.PaymentIntentStatusSucceeded}
	sheetHost := &fakeSheetHost{outcome: checkoutstripe.SheetOutcomeCompleted}
	sheetBridge := checkoutstripe.NewSheetBridge(payer)
	sheetBridge.Attach(sheetHost)

	contextStore, cleanup, err := mystore.New[checkoutapi.ProviderContext](c)
	assert.NoError(t, err)
	t.Cleanup(cleanup)

	tracker := checkoutvipps.NewTracker(cartManager, contextStore, nower, config.VippsPollInterval)
	bus := deeplink.NewBus()
	navigator := &fakeNavigator{}

	controller := NewOverlayController(config, nil, cartManager, analyticsManager,
		klarnaBridge, sheetBridge, tracker, bus, navigator)

	return &checkoutEnv{
		controller:   controller,
		cartManager:  cartManager,
		analytics:    analyticsManager,
		klarnaBridge: klarnaBridge,
		klarnaHost:   klarnaHost,
		sheetHost:    sheetHost,
		payer:        payer,
		tracker:      tracker,
		bus:          bus,
		navigator:    navigator,
	}
}

type fakeNavigator struct {
	sync.Mutex
	openedURLs []string
	klarnaWeb  []cart.KlarnaWebSession
}

func (f *fakeNavigator) OpenExternalURL(c context.Context, url string) {
	f.Lock()
	defer f.Unlock()
	f.openedURLs = append(f.openedURLs, url)
}

func (f *fakeNavigator) ShowKlarnaWeb(c context.Context, session cart.KlarnaWebSession) {
	f.Lock()
	defer f.Unlock()
	f.klarnaWeb = append(f.klarnaWeb, session)
}

func (f *fakeNavigator) openedCount() int {
	f.Lock()
	defer f.Unlock()
	return len(f.openedURLs)
}

func (f *fakeNavigator) lastOpenedURL() string {
	f.Lock()
	defer f.Unlock()
	if len(f.openedURLs) == 0 {
		return ""
	}
	return f.openedURLs[len(f.openedURLs)-1]
}

func (f *fakeNavigator) klarnaWebCount() int {
	f.Lock()
	defer f.Unlock()
	return len(f.klarnaWeb)
}

type fakeKlarnaHost struct {
	sync.Mutex
	launches   int
	categories []string
	err        error
}

func (f *fakeKlarnaHost) LaunchPaymentSurface(c context.Context, clientToken string, category string, autoAuthorize bool) error {
	f.Lock()
	defer f.Unlock()
	f.launches++
	f.categories = append(f.categories, category)
	return f.err
}

func (f *fakeKlarnaHost) launchCount() int {
	f.Lock()
	defer f.Unlock()
	return f.launches
}

func (f *fakeKlarnaHost) lastCategory() string {
	f.Lock()
	defer f.Unlock()
	if len(f.categories) == 0 {
		return ""
	}
	return f.categories[len(f.categories)-1]
}

type fakeSheetHost struct {
	outcome checkoutstripe.SheetOutcome
	err     error
}

func (f *fakeSheetHost) PresentPaymentSheet(c context.Context, clientSecret string) (checkoutstripe.SheetOutcome, error) {
	return f.outcome, f.err
}

type fakePayer struct {
	status stripe.PaymentIntentStatus
	err    error
}

func (f *fakePayer) RetrievePaymentIntent(c context.Context, clientSecret string) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{Status: f.status}, nil
}
