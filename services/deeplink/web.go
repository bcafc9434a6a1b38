package deeplink

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	formcodec "github.com/go-playground/form/v4"

	"github.com/vioreel/viocommerce/lib/mycontext"
	"github.com/vioreel/viocommerce/lib/myerrors"
	"github.com/vioreel/viocommerce/lib/myhttp"
	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/lib/mystore"
	"github.com/vioreel/viocommerce/lib/mytime"
	"github.com/vioreel/viocommerce/services/checkoutapi"
)

type webService struct {
	logger       mylog.Logger
	bus          *Bus
	contextStore mystore.Store[checkoutapi.ProviderContext]
	nower        mytime.Nower
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(bus *Bus, contextStore mystore.Store[checkoutapi.ProviderContext], nower mytime.Nower) *webService {
	return &webService{
		logger:       mylog.New("deeplink"),
		bus:          bus,
		contextStore: contextStore,
		nower:        nower,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/checkout/return/{status}", s.returnWithStatusPage()).Methods("GET")
	router.HandleFunc("/checkout/return", s.returnPage()).Methods("GET")

	return nil
}

// returnWithStatusPage handles return URLs that carry the outcome in the path,
// the shape the success/cancel URLs are configured with.
func (s *webService) returnWithStatusPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		status, ok := parseStatus(mux.Vars(r)["status"])
		if !ok {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("unknown return status %q", mux.Vars(r)["status"]))
			return
		}

		s.resolve(c, w, status, r.URL.Query().Get("checkoutUID"))
	}
}

type returnParams struct {
	Status      string `form:"status"`
	CheckoutUID string `form:"checkoutUID"`
}

// returnPage handles return URLs that carry the outcome as a query parameter,
// the fallback shape some provider-hosted pages redirect with.
func (s *webService) returnPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		params := returnParams{}
		err := formcodec.NewDecoder().Decode(&params, r.URL.Query())
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(fmt.Errorf("error decoding query: %s", err)))
			return
		}

		status, ok := parseStatus(params.Status)
		if !ok {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("unknown return status %q", params.Status))
			return
		}

		s.resolve(c, w, status, params.CheckoutUID)
	}
}

func (s *webService) resolve(c context.Context, w http.ResponseWriter, status Status, checkoutUID string) {
	s.logger.Log(c, checkoutUID, mylog.SeverityInfo, "Provider redirect resolved -> %s", status)

	if checkoutUID != "" {
		now := s.nower.Now()
		err := s.contextStore.RunInTransaction(c, func(c context.Context) error {
			providerContext, found, err := s.contextStore.Get(c, checkoutUID)
			if err != nil || !found {
				return err
			}
			providerContext.Status = string(status)
			providerContext.LastModified = &now
			return s.contextStore.Put(c, checkoutUID, providerContext)
		})
		if err != nil {
			s.logger.Log(c, checkoutUID, mylog.SeverityWarn, "Error updating provider context: %s", err)
		}
	}

	s.bus.Publish(Event{Status: status})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<html><body><p>Payment %s. You can return to the app.</p></body></html>", status)
}

func parseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusSuccess:
		return StatusSuccess, true
	case StatusCancel:
		return StatusCancel, true
	default:
		return "", false
	}
}
