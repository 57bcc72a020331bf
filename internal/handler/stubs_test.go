package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/model"
	"github.com/iliyamo/donation-holds/internal/service"
)

type stubReservations struct {
	listings []service.Listing
	hold     model.Hold
	item     model.CatalogItem
	holds    []model.Hold
	record   model.PickupRecord
	records  []model.PickupRecord
	err      error

	gotArea    model.Area
	gotShowAll bool
	gotUserID  uint64
	gotItemID  string
	gotHoldID  uint64
	gotActive  bool
}

func (s *stubReservations) ListDonations(_ context.Context, area model.Area, showAll bool) ([]service.Listing, error) {
	s.gotArea, s.gotShowAll = area, showAll
	return s.listings, s.err
}

func (s *stubReservations) RequestHold(_ context.Context, userID uint64, itemID string) (model.Hold, model.CatalogItem, error) {
	s.gotUserID, s.gotItemID = userID, itemID
	return s.hold, s.item, s.err
}

func (s *stubReservations) GetHold(_ context.Context, id uint64) (model.Hold, error) {
	s.gotHoldID = id
	return s.hold, s.err
}

func (s *stubReservations) CancelHold(_ context.Context, id uint64) (model.Hold, error) {
	s.gotHoldID = id
	return s.hold, s.err
}

func (s *stubReservations) ConfirmPickup(_ context.Context, id uint64) (model.PickupRecord, error) {
	s.gotHoldID = id
	return s.record, s.err
}

func (s *stubReservations) ListHolds(_ context.Context, userID uint64, activeOnly bool) ([]model.Hold, error) {
	s.gotUserID, s.gotActive = userID, activeOnly
	return s.holds, s.err
}

func (s *stubReservations) History(_ context.Context, userID uint64) ([]model.PickupRecord, error) {
	s.gotUserID = userID
	return s.records, s.err
}

type stubUsers struct {
	user    model.User
	created bool
	err     error

	gotEmail string
	gotName  string
}

func (s *stubUsers) CreateOrGet(_ context.Context, email, name string) (model.User, bool, error) {
	s.gotEmail, s.gotName = email, name
	return s.user, s.created, s.err
}

func (s *stubUsers) Lookup(_ context.Context, email string) (model.User, error) {
	s.gotEmail = email
	return s.user, s.err
}

// newTestServer wires the handlers onto a bare echo instance with the same
// paths the router uses.
func newTestServer(res Reservations, users Users) *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	log := zap.NewNop()

	d := NewDonationHandler(res, log)
	h := NewHoldHandler(res, log)
	hist := NewHistoryHandler(res, log)
	u := NewUserHandler(users, log)

	e.GET("/healthz", Health)
	e.GET("/v1/donations", d.List)
	e.POST("/v1/holds", h.Create)
	e.GET("/v1/holds", h.List)
	e.GET("/v1/holds/:id", h.Get)
	e.DELETE("/v1/holds/:id", h.Cancel)
	e.POST("/v1/holds/:id/pickup", h.ConfirmPickup)
	e.GET("/v1/history", hist.List)
	e.POST("/v1/users", u.Create)
	e.GET("/v1/users/lookup", u.Lookup)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
