package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type UserHandler struct {
	users Users
	log   *zap.Logger
}

func NewUserHandler(users Users, log *zap.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

type createUserRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"required,max=255"`
}

// Create handles POST /v1/users.  201 when the user is new, 200 with the
// existing record otherwise.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validationMessage(err)})
	}

	u, created, err := h.users.CreateOrGet(c.Request().Context(), req.Email, req.Name)
	if err != nil {
		return writeError(c, h.log, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"user": toUserResponse(u), "created": created})
}

type lookupUserQuery struct {
	Email string `query:"email" validate:"required"`
}

// Lookup handles GET /v1/users/lookup?email=.
func (h *UserHandler) Lookup(c echo.Context) error {
	var q lookupUserQuery
	if ok, err := bindAndValidate(c, &q); !ok {
		return err
	}
	u, err := h.users.Lookup(c.Request().Context(), strings.TrimSpace(q.Email))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
