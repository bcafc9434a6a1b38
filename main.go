package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vioreel/viocommerce/lib/mybus"
	"github.com/vioreel/viocommerce/lib/myconfig"
	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/lib/myrand"
	"github.com/vioreel/viocommerce/lib/mystate"
	"github.com/vioreel/viocommerce/lib/mystore"
	"github.com/vioreel/viocommerce/lib/mytime"
	"github.com/vioreel/viocommerce/lib/myuuid"
	"github.com/vioreel/viocommerce/services/analytics"
	"github.com/vioreel/viocommerce/services/cart"
	"github.com/vioreel/viocommerce/services/checkout"
	"github.com/vioreel/viocommerce/services/checkoutapi"
	"github.com/vioreel/viocommerce/services/checkoutklarna"
	"github.com/vioreel/viocommerce/services/checkoutstripe"
	"github.com/vioreel/viocommerce/services/checkoutvipps"
	"github.com/vioreel/viocommerce/services/deeplink"
	"github.com/vioreel/viocommerce/services/dynamiccomponents"
	"github.com/vioreel/viocommerce/services/livelikes"
	"github.com/vioreel/viocommerce/services/liveshow"
)

// Demo host: wires the full SDK the way an embedding app would, backed by the
// in-memory demo cart, and serves the provider return-URL endpoint that feeds
// the deep-link bus.
func main() {
	c := context.Background()

	config, err := myconfig.Parse()
	if err != nil {
		log.Fatalf("Error parsing config: %s", err)
	}

	nower := mytime.RealNower{}
	scheduler := mytime.NewScheduler()

	contextStore, storeCleanup, err := mystore.New[checkoutapi.ProviderContext](c)
	if err != nil {
		log.Fatalf("Error creating provider context store: %s", err)
	}
	defer storeCleanup()

	cartManager := cart.NewFakeCartManager()
	bus := deeplink.NewBus()

	klarnaBridge := checkoutklarna.NewBridge()
	sheetBridge := checkoutstripe.NewSheetBridge(checkoutstripe.NewPayer())
	vippsTracker := checkoutvipps.NewTracker(cartManager, contextStore, nower, config.VippsPollInterval)

	checkoutController := checkout.NewOverlayController(config, nil, cartManager,
		analytics.NewRecordingManager(), klarnaBridge, sheetBridge, vippsTracker, bus,
		logNavigator{logger: mylog.New("navigator")})
	checkoutController.Start(c)
	defer checkoutController.Close(c)

	componentManager := dynamiccomponents.NewManager(nower, scheduler)
	likesManager := livelikes.NewManager(nower, scheduler, myuuid.RealUUIDer{}, myrand.RealRander{})
	liveShowController := liveshow.NewOverlayController(newDemoLiveShowManager(),
		dynamiccomponents.NewFetcher(config.ComponentsBaseURL, config.ComponentsAPIToken),
		componentManager, likesManager, cartManager,
		liveshow.Configuration{LikesEnabled: true, ProductGridEnabled: true})
	liveShowController.Start(c)
	defer liveShowController.Close(c)

	router := mux.NewRouter()
	deepLinkService := deeplink.NewWebService(bus, contextStore, nower)
	err = deepLinkService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering deeplink endpoints: %s", err)
	}

	startWebServerBlocking(router, config.Port)
}

func startWebServerBlocking(router *mux.Router, port string) {
	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}

// logNavigator stands in for the platform shim that opens browsers and web
// views in a real host app.
type logNavigator struct {
	logger mylog.Logger
}

func (n logNavigator) OpenExternalURL(c context.Context, url string) {
	n.logger.Log(c, "", mylog.SeverityInfo, "Would open external browser at %s", url)
}

func (n logNavigator) ShowKlarnaWeb(c context.Context, session cart.KlarnaWebSession) {
	n.logger.Log(c, "", mylog.SeverityInfo, "Would host Klarna web checkout (url=%q, snippet=%d bytes)", session.URL, len(session.SnippetHTML))
}

// demoLiveShowManager is a stand-in stream session so the overlay controller
// can be wired without a real broadcast backend.
type demoLiveShowManager struct {
	stream *mystate.Holder[*liveshow.Stream]
	hearts *mybus.Bus[struct{}]
}

func newDemoLiveShowManager() *demoLiveShowManager {
	return &demoLiveShowManager{
		stream: mystate.NewHolder[*liveshow.Stream](nil),
		hearts: mybus.New[struct{}](),
	}
}

func (m *demoLiveShowManager) SubscribeStream(observer func(*liveshow.Stream)) func() {
	return m.stream.Subscribe(observer)
}

func (m *demoLiveShowManager) SubscribeHearts(observer func()) func() {
	events, cancel := m.hearts.Subscribe()
	go func() {
		for range events {
			observer()
		}
	}()
	return cancel
}

func (m *demoLiveShowManager) Hide(c context.Context) {
	m.stream.Update(func(*liveshow.Stream) *liveshow.Stream {
		return nil
	})
}
