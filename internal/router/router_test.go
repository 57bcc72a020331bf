package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/handler"
)

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }

func TestRoutes(t *testing.T) {
	e := echo.New()
	log := zap.NewNop()
	RegisterRoutes(e)
	RegisterDonations(e, handler.NewDonationHandler(nil, log))
	RegisterHolds(e, handler.NewHoldHandler(nil, log), handler.NewHistoryHandler(nil, log), noop)
	RegisterUsers(e, handler.NewUserHandler(nil, log), noop, noop)

	var got []string
	for _, r := range e.Routes() {
		got = append(got, r.Method+" "+r.Path)
	}
	sort.Strings(got)
	assert.Equal(t, []string{
		"DELETE /v1/holds/:id",
		"GET /healthz",
		"GET /metrics",
		"GET /v1/donations",
		"GET /v1/history",
		"GET /v1/holds",
		"GET /v1/holds/:id",
		"GET /v1/users/lookup",
		"POST /v1/holds",
		"POST /v1/holds/:id/pickup",
		"POST /v1/users",
	}, got)
}

func TestMetricsEndpoint(t *testing.T) {
	e := echo.New()
	RegisterRoutes(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
