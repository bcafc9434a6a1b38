// Package checkoutvipps tracks externally-hosted Vipps payments. The shopper
// leaves the app for the Vipps flow in a browser; the tracker polls the
// payment status until it becomes terminal or tracking is stopped.
package checkoutvipps

import (
	"context"
	"sync"
	"time"

	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/lib/mystore"
	"github.com/vioreel/viocommerce/lib/mytime"
	"github.com/vioreel/viocommerce/services/checkoutapi"
)

// StatusFetcher is the slice of the cart boundary the tracker needs.
type StatusFetcher interface {
	VippsPaymentStatus(c context.Context, checkoutUID string) (string, error)
}

type StatusCallback func(checkoutUID string, status string)

var terminalStatuses = map[string]bool{
	"authorized": true,
	"captured":   true,
	"cancelled":  true,
	"failed":     true,
	"expired":    true,
}

func IsTerminalStatus(status string) bool {
	return terminalStatuses[status]
}

// Tracker polls one in-flight Vipps payment per checkout uid.
type Tracker struct {
	mutex        sync.Mutex
	logger       mylog.Logger
	fetcher      StatusFetcher
	contextStore mystore.Store[checkoutapi.ProviderContext]
	nower        mytime.Nower
	interval     time.Duration
	polls        map[string]context.CancelFunc
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewTracker(fetcher StatusFetcher, contextStore mystore.Store[checkoutapi.ProviderContext], nower mytime.Nower, interval time.Duration) *Tracker {
	return &Tracker{
		logger:       mylog.New("checkoutvipps"),
		fetcher:      fetcher,
		contextStore: contextStore,
		nower:        nower,
		interval:     interval,
		polls:        map[string]context.CancelFunc{},
	}
}

// Start begins polling. Starting an already-tracked checkout is a no-op.
// onStatus fires once, with the first terminal status observed.
func (t *Tracker) Start(c context.Context, checkoutUID string, onStatus StatusCallback) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, tracking := t.polls[checkoutUID]; tracking {
		return
	}

	pollCtx, cancel := context.WithCancel(c)
	t.polls[checkoutUID] = cancel

	t.logger.Log(c, checkoutUID, mylog.SeverityInfo, "Start tracking vipps payment for checkout %s", checkoutUID)

	go t.poll(pollCtx, checkoutUID, onStatus)
}

func (t *Tracker) poll(c context.Context, checkoutUID string, onStatus StatusCallback) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.Done():
			return
		case <-ticker.C:
			status, err := t.fetcher.VippsPaymentStatus(c, checkoutUID)
			if err != nil {
				t.logger.Log(c, checkoutUID, mylog.SeverityWarn, "Error polling vipps status: %s", err)
				continue
			}

			t.recordStatus(c, checkoutUID, status)

			if IsTerminalStatus(status) {
				t.logger.Log(c, checkoutUID, mylog.SeverityInfo, "Vipps payment for checkout %s -> %s", checkoutUID, status)
				t.Stop(checkoutUID)
				onStatus(checkoutUID, status)
				return
			}
		}
	}
}

func (t *Tracker) recordStatus(c context.Context, checkoutUID string, status string) {
	now := t.nower.Now()
	err := t.contextStore.RunInTransaction(c, func(c context.Context) error {
		providerContext, found, err := t.contextStore.Get(c, checkoutUID)
		if err != nil {
			return err
		}
		if !found {
			providerContext = checkoutapi.ProviderContext{
				CheckoutUID: checkoutUID,
				Provider:    "vipps",
				CreatedAt:   now,
			}
		}
		providerContext.Status = status
		providerContext.LastModified = &now
		return t.contextStore.Put(c, checkoutUID, providerContext)
	})
	if err != nil {
		t.logger.Log(c, checkoutUID, mylog.SeverityWarn, "Error storing vipps status: %s", err)
	}
}

// Stop cancels tracking for one checkout. Safe to call when not tracking.
func (t *Tracker) Stop(checkoutUID string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if cancel, tracking := t.polls[checkoutUID]; tracking {
		cancel()
		delete(t.polls, checkoutUID)
	}
}

// StopAll cancels every in-flight poll. Called on session teardown.
func (t *Tracker) StopAll() {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for checkoutUID, cancel := range t.polls {
		cancel()
		delete(t.polls, checkoutUID)
	}
}

// Tracking reports whether a checkout is being polled.
func (t *Tracker) Tracking(checkoutUID string) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	_, tracking := t.polls[checkoutUID]
	return tracking
}
