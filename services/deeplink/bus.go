// Package deeplink carries provider-redirect outcomes back into the checkout
// flow. A web-hosted payment page (Klarna web, Vipps) finishes outside the
// call stack that started it; the bus is how its outcome re-enters the
// controller.
package deeplink

import "github.com/vioreel/viocommerce/lib/mybus"

type Status string

const (
	StatusSuccess Status = "success"
	StatusCancel  Status = "cancel"
)

type Event struct {
	Status Status
}

type Bus struct {
	inner *mybus.Bus[Event]
}

func NewBus() *Bus {
	return &Bus{
		inner: mybus.New[Event](),
	}
}

func (b *Bus) Publish(event Event) {
	b.inner.Publish(event)
}

func (b *Bus) Subscribe() (<-chan Event, func()) {
	return b.inner.Subscribe()
}
