// Package dynamiccomponents schedules the server-supplied marketing overlays
// (banners, featured products) shown during a live stream within their
// configured time windows.
package dynamiccomponents

import (
	"time"

	"github.com/vioreel/viocommerce/services/cart"
)

type ComponentType string

const (
	TypeFeaturedProduct ComponentType = "featured_product"
	TypeBanner          ComponentType = "banner"
)

type Trigger string

const (
	TriggerStreamStart Trigger = "STREAM_START"
	TriggerManual      Trigger = "MANUAL"
)

type ComponentData struct {
	Title          string
	Text           string
	Animation      string
	DurationMillis int64
	ProductUID     string
	Product        *cart.Product
}

// Component is one scheduled overlay element. A nil StartTime means the
// component is eligible immediately; a nil EndTime means it stays active
// until deactivated (banners may instead carry a duration).
type Component struct {
	ID        string
	Type      ComponentType
	StartTime *time.Time
	EndTime   *time.Time
	Position  string
	TriggerOn Trigger
	Data      ComponentData
}
