package liveshow

import (
	"context"
	"sync"

	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/lib/mystate"
	"github.com/vioreel/viocommerce/services/cart"
	"github.com/vioreel/viocommerce/services/dynamiccomponents"
	"github.com/vioreel/viocommerce/services/livelikes"
)

// Configuration carries the overlay options the host app decided at startup.
type Configuration struct {
	LikesEnabled       bool
	ProductGridEnabled bool
}

// State is the complete overlay snapshot. It is replaced as a whole on every
// change, never mutated field by field.
type State struct {
	Stream           *Stream
	IsVisible        bool
	IsLoading        bool
	IsPlaying        bool
	IsMuted          bool
	ControlsVisible  bool
	SelectedProduct  *cart.Product
	ShowProductsGrid bool
	ActiveComponents []dynamiccomponents.RenderedComponent
	Configuration    Configuration
}

// OverlayController is the live-show session state machine. It owns no
// network or playback resources itself: the stream session lives in the
// host's LiveShowManager, components in the component manager, hearts in the
// likes manager. The controller wires them together into one snapshot.
type OverlayController struct {
	logger           mylog.Logger
	liveShowManager  LiveShowManager
	componentFetcher ComponentFetcher
	componentManager *dynamiccomponents.Manager
	likesManager     *livelikes.Manager
	cartManager      cart.CartManager
	state            *mystate.Holder[State]
	unsubscribes     []func()

	loadMutex  sync.Mutex
	cancelLoad context.CancelFunc
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewOverlayController(liveShowManager LiveShowManager, componentFetcher ComponentFetcher,
	componentManager *dynamiccomponents.Manager, likesManager *livelikes.Manager,
	cartManager cart.CartManager, configuration Configuration) *OverlayController {
	return &OverlayController{
		logger:           mylog.New("liveshow"),
		liveShowManager:  liveShowManager,
		componentFetcher: componentFetcher,
		componentManager: componentManager,
		likesManager:     likesManager,
		cartManager:      cartManager,
		state: mystate.NewHolder(State{
			IsMuted:       true,
			Configuration: configuration,
		}),
	}
}

// Start subscribes to the stream, the remote heart signals and the active
// component set. Must be balanced with Close.
func (oc *OverlayController) Start(c context.Context) {
	oc.unsubscribes = append(oc.unsubscribes,
		oc.liveShowManager.SubscribeStream(func(stream *Stream) {
			oc.onStream(c, stream)
		}),
		oc.liveShowManager.SubscribeHearts(func() {
			oc.likesManager.HandleRemoteHeartEvent(c)
		}),
		oc.componentManager.SubscribeActive(func(active []dynamiccomponents.Component) {
			oc.state.Update(func(state State) State {
				state.ActiveComponents = dynamiccomponents.Render(active)
				return state
			})
		}),
	)
}

// Close tears the session down: unsubscribes everything and cancels all
// outstanding component and heart timers.
func (oc *OverlayController) Close(c context.Context) {
	for _, unsubscribe := range oc.unsubscribes {
		unsubscribe()
	}
	oc.unsubscribes = nil
	oc.cancelPendingLoad()
	oc.componentManager.Reset(c)
	oc.likesManager.Reset(c)
}

func (oc *OverlayController) State() State {
	return oc.state.Get()
}

// Subscribe observes the overlay snapshot. The observer is called with the
// current snapshot immediately. The returned func unsubscribes.
func (oc *OverlayController) Subscribe(observer func(State)) func() {
	return oc.state.Subscribe(observer)
}

func (oc *OverlayController) onStream(c context.Context, stream *Stream) {
	// A load still in flight belongs to the previous stream value
	oc.cancelPendingLoad()

	if stream == nil {
		oc.state.Update(func(state State) State {
			state.Stream = nil
			state.IsVisible = false
			state.IsLoading = false
			state.IsPlaying = false
			state.SelectedProduct = nil
			state.ShowProductsGrid = false
			return state
		})
		oc.componentManager.Reset(c)
		return
	}

	oc.state.Update(func(state State) State {
		state.Stream = stream
		state.IsVisible = true
		state.IsLoading = true
		state.IsPlaying = true
		state.IsMuted = true
		return state
	})

	oc.loadMutex.Lock()
	loadCtx, cancel := context.WithCancel(c)
	oc.cancelLoad = cancel
	oc.loadMutex.Unlock()

	go oc.loadComponents(loadCtx, stream.ID)
}

func (oc *OverlayController) cancelPendingLoad() {
	oc.loadMutex.Lock()
	defer oc.loadMutex.Unlock()

	if oc.cancelLoad != nil {
		oc.cancelLoad()
		oc.cancelLoad = nil
	}
}

// loadComponents replaces the component set for the stream. A fetch failure
// leaves the overlay usable with zero dynamic components. A result arriving
// after the stream ended or was replaced is dropped: components of a gone
// stream must not be resurrected.
func (oc *OverlayController) loadComponents(c context.Context, streamUID string) {
	components, err := oc.componentFetcher.Fetch(c, streamUID)
	if err != nil && c.Err() == nil {
		oc.logger.Log(c, streamUID, mylog.SeverityWarn, "Error fetching components for stream %s: %s", streamUID, err)
		components = nil
	}

	oc.loadMutex.Lock()
	defer oc.loadMutex.Unlock()

	if c.Err() != nil {
		return
	}

	oc.componentManager.Reset(c)
	for _, component := range components {
		oc.componentManager.Register(c, component)
	}

	oc.state.Update(func(state State) State {
		state.IsLoading = false
		return state
	})
}

func (oc *OverlayController) ToggleControls(c context.Context) {
	oc.state.Update(func(state State) State {
		state.ControlsVisible = !state.ControlsVisible
		return state
	})
}

func (oc *OverlayController) TogglePlayback(c context.Context) {
	oc.state.Update(func(state State) State {
		state.IsPlaying = !state.IsPlaying
		return state
	})
}

func (oc *OverlayController) ToggleMute(c context.Context) {
	oc.state.Update(func(state State) State {
		state.IsMuted = !state.IsMuted
		return state
	})
}

func (oc *OverlayController) SelectProduct(c context.Context, product cart.Product) {
	oc.state.Update(func(state State) State {
		state.SelectedProduct = &product
		return state
	})
}

func (oc *OverlayController) DismissProductDetail(c context.Context) {
	oc.state.Update(func(state State) State {
		state.SelectedProduct = nil
		return state
	})
}

func (oc *OverlayController) ToggleProductGrid(c context.Context) {
	oc.state.Update(func(state State) State {
		state.ShowProductsGrid = !state.ShowProductsGrid
		return state
	})
}

// SendHeart appends a user heart at the tap position.
func (oc *OverlayController) SendHeart(c context.Context, x float64, y float64) {
	oc.likesManager.CreateUserLike(c, x, y)
}

// AddSelectedProductToCart delegates to the cart manager. No-op when no
// product is selected.
func (oc *OverlayController) AddSelectedProductToCart(c context.Context) {
	selected := oc.state.Get().SelectedProduct
	if selected == nil {
		return
	}

	go func() {
		err := oc.cartManager.AddProductToCart(c, selected.ID)
		if err != nil {
			oc.logger.Log(c, selected.ID, mylog.SeverityWarn, "Error adding product %s to cart: %s", selected.ID, err)
		}
	}()
}

// DismissOverlay hides the stream session and collapses the overlay.
func (oc *OverlayController) DismissOverlay(c context.Context) {
	oc.liveShowManager.Hide(c)
	oc.componentManager.Reset(c)
	oc.state.Update(func(state State) State {
		state.Stream = nil
		state.IsVisible = false
		state.IsPlaying = false
		state.SelectedProduct = nil
		state.ShowProductsGrid = false
		return state
	})
}
