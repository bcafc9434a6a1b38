// Package checkoutstripe adapts the platform payment sheet into the checkout
// controller's result contract, backed by the Stripe API for outcome
// verification.
package checkoutstripe

import (
	"context"
	"fmt"
	"sync"

	"github.com/stripe/stripe-go/v74"

	"github.com/vioreel/viocommerce/lib/myerrors"
	"github.com/vioreel/viocommerce/lib/mylog"
)

// SheetOutcome is what the platform sheet shim reports back.
type SheetOutcome string

const (
	SheetOutcomeCompleted SheetOutcome = "completed"
	SheetOutcomeCanceled  SheetOutcome = "canceled"
	SheetOutcomeFailed    SheetOutcome = "failed"
)

// SheetHost is the platform shim that can show the payment sheet for an
// intent and block until the shopper finishes.
type SheetHost interface {
	PresentPaymentSheet(c context.Context, clientSecret string) (SheetOutcome, error)
}

type SheetResultKind string

const (
	SheetResultCompleted SheetResultKind = "completed"
	SheetResultCanceled  SheetResultKind = "canceled"
	SheetResultFailed    SheetResultKind = "failed"
)

type SheetResult struct {
	Kind    SheetResultKind
	Message string
}

// SheetBridge holds one active host binding. Attach replaces the previous
// binding; attaching the same host again is a no-op.
type SheetBridge struct {
	mutex         sync.Mutex
	logger        mylog.Logger
	payer         Payer
	host          SheetHost
	configuredKey string
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewSheetBridge(payer Payer) *SheetBridge {
	return &SheetBridge{
		logger: mylog.New("checkoutstripe"),
		payer:  payer,
	}
}

func (b *SheetBridge) Attach(host SheetHost) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.host == host {
		return
	}
	b.host = host
}

// EnsureConfigured re-initializes the payment configuration only when the
// publishable key changes.
func (b *SheetBridge) EnsureConfigured(publishableKey string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if publishableKey == "" || publishableKey == b.configuredKey {
		return
	}
	stripe.Key = publishableKey
	b.configuredKey = publishableKey
}

// PresentPaymentIntent shows the sheet and resolves its outcome. A completed
// sheet is verified against the intent's actual status before reporting
// success.
func (b *SheetBridge) PresentPaymentIntent(c context.Context, clientSecret string, onResult func(SheetResult)) error {
	b.mutex.Lock()
	host := b.host
	b.mutex.Unlock()

	if host == nil {
		return myerrors.NewInternalError(fmt.Errorf("payment sheet not attached"))
	}

	outcome, err := host.PresentPaymentSheet(c, clientSecret)
	if err != nil {
		onResult(SheetResult{Kind: SheetResultFailed, Message: err.Error()})
		return nil
	}

	switch outcome {
	case SheetOutcomeCompleted:
		onResult(b.verifyIntent(c, clientSecret))
	case SheetOutcomeCanceled:
		onResult(SheetResult{Kind: SheetResultCanceled})
	default:
		onResult(SheetResult{Kind: SheetResultFailed, Message: "Payment failed"})
	}

	return nil
}

func (b *SheetBridge) verifyIntent(c context.Context, clientSecret string) SheetResult {
	intent, err := b.payer.RetrievePaymentIntent(c, clientSecret)
	if err != nil {
		b.logger.Log(c, "", mylog.SeverityWarn, "Error verifying payment intent: %s", err)
		return SheetResult{Kind: SheetResultFailed, Message: "Could not verify payment"}
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded,
		stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresCapture:
		return SheetResult{Kind: SheetResultCompleted}
	default:
		return SheetResult{Kind: SheetResultFailed, Message: fmt.Sprintf("Payment not completed (status %s)", intent.Status)}
	}
}
