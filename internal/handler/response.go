package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/model"
	"github.com/iliyamo/donation-holds/internal/service"
)

// Reservations is what the HTTP layer needs from the orchestrator.
type Reservations interface {
	ListDonations(ctx context.Context, area model.Area, showAll bool) ([]service.Listing, error)
	RequestHold(ctx context.Context, userID uint64, itemID string) (model.Hold, model.CatalogItem, error)
	GetHold(ctx context.Context, holdID uint64) (model.Hold, error)
	CancelHold(ctx context.Context, holdID uint64) (model.Hold, error)
	ConfirmPickup(ctx context.Context, holdID uint64) (model.PickupRecord, error)
	ListHolds(ctx context.Context, userID uint64, activeOnly bool) ([]model.Hold, error)
	History(ctx context.Context, userID uint64) ([]model.PickupRecord, error)
}

// Users is the user directory as seen by the HTTP layer.
type Users interface {
	CreateOrGet(ctx context.Context, email, name string) (model.User, bool, error)
	Lookup(ctx context.Context, email string) (model.User, error)
}

type holdResponse struct {
	ID          uint64     `json:"id"`
	UserID      uint64     `json:"user_id"`
	ItemID      string     `json:"item_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
}

func toHoldResponse(h model.Hold) holdResponse {
	return holdResponse{
		ID:          h.ID,
		UserID:      h.UserID,
		ItemID:      h.ItemID,
		Status:      string(h.Status),
		CreatedAt:   h.CreatedAt,
		ExpiresAt:   h.ExpiresAt,
		CompletedAt: h.CompletedAt,
		CancelledAt: h.CancelledAt,
	}
}

func toHoldResponses(hs []model.Hold) []holdResponse {
	out := make([]holdResponse, 0, len(hs))
	for _, h := range hs {
		out = append(out, toHoldResponse(h))
	}
	return out
}

type pickupResponse struct {
	ID             uint64    `json:"id"`
	UserID         uint64    `json:"user_id"`
	ItemID         string    `json:"item_id"`
	Description    *string   `json:"description"`
	DonorContact   *string   `json:"donor_contact"`
	PickupLocation *string   `json:"pickup_location"`
	CompletedAt    time.Time `json:"completed_at"`
}

func toPickupResponse(r model.PickupRecord) pickupResponse {
	return pickupResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		ItemID:         r.ItemID,
		Description:    r.Description,
		DonorContact:   r.DonorContact,
		PickupLocation: r.PickupLocation,
		CompletedAt:    r.CompletedAt,
	}
}

type userResponse struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

// writeError maps domain errors onto status codes.  Anything unknown is a
// 500 and its text is not echoed back.
func writeError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrAlreadyHeld):
		return c.JSON(http.StatusConflict, echo.Map{"error": "item is already reserved"})
	case errors.Is(err, service.ErrItemNotFound):
		return c.JSON(http.StatusConflict, echo.Map{"error": "item not found"})
	case errors.Is(err, service.ErrHoldNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active hold found"})
	case errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// bindAndValidate binds the request into dst and runs validation tags.  On
// failure it has already written the 400 response; ok is false.
func bindAndValidate(c echo.Context, dst interface{}) (bool, error) {
	if err := c.Bind(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if err := c.Validate(dst); err != nil {
		return false, c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}
	return true, nil
}

func holdIDParam(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
