// Package liveshow drives the overlay shown while a live shopping stream is
// playing: stream lifecycle, playback toggles, product selection and the
// relay of remote heart events into the likes manager.
package liveshow

import (
	"context"

	"github.com/vioreel/viocommerce/services/dynamiccomponents"
)

// Stream is the host app's description of a live broadcast.
type Stream struct {
	ID       string
	Title    string
	HostName string
	VideoURL string
}

//go:generate mockgen -source=api.go -package liveshow -destination manager_mock.go LiveShowManager

// LiveShowManager is the host-app boundary that owns the actual stream
// session. The controller observes it and tells it to hide, nothing more.
type LiveShowManager interface {
	// SubscribeStream observes the current stream. A nil value means no
	// stream is showing. The observer is called with the current value
	// immediately. The returned func unsubscribes.
	SubscribeStream(observer func(*Stream)) func()

	// SubscribeHearts observes remote heart signals from other viewers.
	SubscribeHearts(observer func()) func()

	Hide(c context.Context)
}

// ComponentFetcher loads the dynamic components configured for a stream.
type ComponentFetcher interface {
	Fetch(c context.Context, streamUID string) ([]dynamiccomponents.Component, error)
}
