// Package checkoutklarna adapts the Klarna native payment surface into the
// checkout controller's callback contract, and classifies the redirects of
// the web fallback flow.
package checkoutklarna

import (
	"context"
	"fmt"
	"sync"

	"github.com/vioreel/viocommerce/lib/myerrors"
	"github.com/vioreel/viocommerce/lib/mylog"
)

// ActivityResult is the outcome contract of the native payment surface:
// OK with an auth token means authorized; not-OK with an error message means
// failure; not-OK without one means the shopper cancelled.
type ActivityResult struct {
	OK        bool
	AuthToken string
	Error     string
}

// NativeHost is the platform shim that can show the Klarna payment surface.
// After the surface finishes, the host calls Bridge.HandleActivityResult.
type NativeHost interface {
	LaunchPaymentSurface(c context.Context, clientToken string, category string, autoAuthorize bool) error
}

type Callbacks struct {
	OnAuthorized func(authToken string)
	OnCancel     func()
	OnError      func(message string)
}

// Bridge holds at most one native host binding and at most one set of pending
// callbacks. A second Present before the first resolves silently discards the
// first's callbacks; callers must serialize their use. Known single-slot
// limitation, kept from the original design.
type Bridge struct {
	mutex   sync.Mutex
	logger  mylog.Logger
	host    NativeHost
	pending *Callbacks
}

func NewBridge() *Bridge {
	return &Bridge{
		logger: mylog.New("checkoutklarna"),
	}
}

// Init binds the native host. Idempotent: once bound, later calls are no-ops.
func (b *Bridge) Init(host NativeHost) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.host != nil {
		return
	}
	b.host = host
}

func (b *Bridge) Ready() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return b.host != nil
}

// Present registers the callbacks and launches the native payment surface.
// Exactly one callback fires per surface result, after which the slot is
// cleared.
func (b *Bridge) Present(c context.Context, clientToken string, category string, autoAuthorize bool, callbacks Callbacks) error {
	b.mutex.Lock()
	if b.host == nil {
		b.mutex.Unlock()
		return myerrors.NewInternalError(fmt.Errorf("klarna bridge not initialized"))
	}
	if b.pending != nil {
		b.logger.Log(c, "", mylog.SeverityWarn, "Discarding unresolved Klarna callbacks: overlapping Present calls are not supported")
	}
	b.pending = &callbacks
	host := b.host
	b.mutex.Unlock()

	err := host.LaunchPaymentSurface(c, clientToken, category, autoAuthorize)
	if err != nil {
		b.mutex.Lock()
		b.pending = nil
		b.mutex.Unlock()
		return myerrors.NewInternalError(fmt.Errorf("error launching klarna payment surface: %s", err))
	}

	return nil
}

// HandleActivityResult routes the surface outcome to exactly one pending
// callback. The slot is cleared before dispatch so a duplicate result finds
// nothing to fire.
func (b *Bridge) HandleActivityResult(c context.Context, result ActivityResult) {
	b.mutex.Lock()
	callbacks := b.pending
	b.pending = nil
	b.mutex.Unlock()

	if callbacks == nil {
		b.logger.Log(c, "", mylog.SeverityWarn, "Klarna result without pending presentation: ignored")
		return
	}

	switch {
	case result.OK && result.AuthToken != "":
		callbacks.OnAuthorized(result.AuthToken)
	case !result.OK && result.Error != "":
		callbacks.OnError(FriendlyErrorMessage(result.Error))
	case !result.OK:
		callbacks.OnCancel()
	default:
		callbacks.OnError("Unknown result")
	}
}
