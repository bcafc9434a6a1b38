package deeplink

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/vioreel/viocommerce/lib/mystore"
	"github.com/vioreel/viocommerce/lib/mytime"
	"github.com/vioreel/viocommerce/services/checkoutapi"
)

func TestReturnEndpoints(t *testing.T) {

	t.Run("Status in path publishes on bus and updates provider context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		ctx, router, bus, storer, nower := setup(t, ctrl)

		// given
		nower.EXPECT().Now().Return(mytime.ExampleTime)
		_ = storer.Put(ctx, "123", checkoutapi.ProviderContext{
			CheckoutUID: "123",
			Provider:    "vipps",
			ReturnURL:   "http://localhost:8080/checkout/return",
		})
		events, cancel := bus.Subscribe()
		defer cancel()

		// when
		request, err := http.NewRequest(http.MethodGet, "/checkout/return/success?checkoutUID=123", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Equal(t, Event{Status: StatusSuccess}, receiveEvent(t, events))

		providerContext, exists, _ := storer.Get(ctx, "123")
		assert.True(t, exists)
		assert.Equal(t, "success", providerContext.Status)
	})

	t.Run("Status as query parameter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, bus, _, _ := setup(t, ctrl)

		events, cancel := bus.Subscribe()
		defer cancel()

		// when
		request, err := http.NewRequest(http.MethodGet, "/checkout/return?status=cancel", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)
		assert.Equal(t, Event{Status: StatusCancel}, receiveEvent(t, events))
	})

	t.Run("Unknown status is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// setup
		_, router, _, _, _ := setup(t, ctrl)

		// when
		request, err := http.NewRequest(http.MethodGet, "/checkout/return/pending", nil)
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 400, response.Code)
	})
}

func setup(t *testing.T, ctrl *gomock.Controller) (context.Context, *mux.Router, *Bus, mystore.Store[checkoutapi.ProviderContext], *mytime.MockNower) {
	c := context.TODO()
	storer, _, _ := mystore.New[checkoutapi.ProviderContext](c)
	nower := mytime.NewMockNower(ctrl)
	bus := NewBus()

	sut := NewWebService(bus, storer, nower)
	router := mux.NewRouter()
	err := sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return c, router, bus, storer, nower
}

func receiveEvent(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for deep-link event")
		return Event{}
	}
}
