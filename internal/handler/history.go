package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type HistoryHandler struct {
	res Reservations
	log *zap.Logger
}

func NewHistoryHandler(res Reservations, log *zap.Logger) *HistoryHandler {
	return &HistoryHandler{res: res, log: log}
}

type historyQuery struct {
	UserID uint64 `query:"user_id" validate:"required"`
}

// List handles GET /v1/history?user_id=, newest pickup first.
func (h *HistoryHandler) List(c echo.Context) error {
	var q historyQuery
	if ok, err := bindAndValidate(c, &q); !ok {
		return err
	}
	records, err := h.res.History(c.Request().Context(), q.UserID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]pickupResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toPickupResponse(r))
	}
	return c.JSON(http.StatusOK, out)
}
