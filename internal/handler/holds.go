package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HoldHandler exposes the hold lifecycle over HTTP.
type HoldHandler struct {
	res Reservations
	log *zap.Logger
}

func NewHoldHandler(res Reservations, log *zap.Logger) *HoldHandler {
	return &HoldHandler{res: res, log: log}
}

type createHoldRequest struct {
	UserID uint64 `json:"user_id" validate:"required"`
	ItemID string `json:"item_id" validate:"required,max=64"`
}

// Create handles POST /v1/holds.  201 with the hold and the item snapshot,
// 409 when the item is taken or unknown.
func (h *HoldHandler) Create(c echo.Context) error {
	var req createHoldRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	hold, item, err := h.res.RequestHold(c.Request().Context(), req.UserID, req.ItemID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"hold":     toHoldResponse(hold),
		"donation": item,
	})
}

type listHoldsQuery struct {
	UserID uint64 `query:"user_id" validate:"required"`
	Active bool   `query:"active"`
}

// List handles GET /v1/holds?user_id=&active=.
func (h *HoldHandler) List(c echo.Context) error {
	var q listHoldsQuery
	if ok, err := bindAndValidate(c, &q); !ok {
		return err
	}
	holds, err := h.res.ListHolds(c.Request().Context(), q.UserID, q.Active)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toHoldResponses(holds))
}

// Get handles GET /v1/holds/:id.
func (h *HoldHandler) Get(c echo.Context) error {
	id, ok := holdIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}
	hold, err := h.res.GetHold(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toHoldResponse(hold))
}

// Cancel handles DELETE /v1/holds/:id.
func (h *HoldHandler) Cancel(c echo.Context) error {
	id, ok := holdIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}
	hold, err := h.res.CancelHold(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hold": toHoldResponse(hold)})
}

// ConfirmPickup handles POST /v1/holds/:id/pickup.
func (h *HoldHandler) ConfirmPickup(c echo.Context) error {
	id, ok := holdIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hold id"})
	}
	rec, err := h.res.ConfirmPickup(c.Request().Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"record": toPickupResponse(rec)})
}
