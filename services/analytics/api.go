// Package analytics defines the boundary to the host app's analytics manager.
package analytics

import (
	"context"
	"sync"

	"github.com/vioreel/viocommerce/services/checkoutapi"
)

type PurchaseLine struct {
	ProductUID     string
	Name           string
	Quantity       int
	UnitPriceCents int64
}

// PurchaseEvent is fired once per completed checkout. ShippingCents is only
// set when the order carried a shipping charge.
type PurchaseEvent struct {
	CheckoutUID   string
	Lines         []PurchaseLine
	RevenueCents  int64
	Currency      string
	PaymentMethod checkoutapi.PaymentMethod
	ShippingCents int64
}

type Manager interface {
	TrackPurchase(c context.Context, event PurchaseEvent)
}

// RecordingManager captures tracked events for test assertions.
type RecordingManager struct {
	sync.Mutex
	Purchases []PurchaseEvent
}

func NewRecordingManager() *RecordingManager {
	return &RecordingManager{}
}

func (m *RecordingManager) TrackPurchase(c context.Context, event PurchaseEvent) {
	m.Lock()
	defer m.Unlock()
	m.Purchases = append(m.Purchases, event)
}

func (m *RecordingManager) TrackedPurchases() []PurchaseEvent {
	m.Lock()
	defer m.Unlock()
	return append([]PurchaseEvent{}, m.Purchases...)
}
