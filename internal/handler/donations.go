package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/model"
)

// DonationHandler serves the availability listing.
type DonationHandler struct {
	res Reservations
	log *zap.Logger
}

func NewDonationHandler(res Reservations, log *zap.Logger) *DonationHandler {
	return &DonationHandler{res: res, log: log}
}

type donationsQuery struct {
	Lat     float64 `query:"lat" validate:"gte=-90,lte=90"`
	Lng     float64 `query:"lng" validate:"gte=-180,lte=180"`
	Radius  float64 `query:"radius" validate:"gte=0"`
	ShowAll bool    `query:"show_all"`
}

// List handles GET /v1/donations.  Without show_all only unclaimed items
// are returned; with it every item carries is_held.
func (h *DonationHandler) List(c echo.Context) error {
	var q donationsQuery
	if ok, err := bindAndValidate(c, &q); !ok {
		return err
	}
	area := model.Area{Latitude: q.Lat, Longitude: q.Lng, RadiusMiles: model.DefaultRadiusMiles}
	if q.Radius > 0 {
		area.RadiusMiles = q.Radius
	}

	items, err := h.res.ListDonations(c.Request().Context(), area, q.ShowAll)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, items)
}
