package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/donation-holds/internal/model"
)

func TestHTTPClient(t *testing.T) {
	t.Parallel()

	item := model.CatalogItem{ID: "DON-9", Description: "bread", Address: "1 Main St"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/donations":
			assert.Equal(t, "50", r.URL.Query().Get("radius"))
			_ = json.NewEncoder(w).Encode([]model.CatalogItem{item})
		case "/donations/DON-9":
			_ = json.NewEncoder(w).Encode(item)
		case "/donations/BROKEN":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewHTTPClient(srv.URL+"/", time.Second)
	ctx := context.Background()

	items, err := c.ListItems(ctx, model.Area{RadiusMiles: 50})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "DON-9", items[0].ID)

	got, err := c.GetItem(ctx, "DON-9")
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", got.Address)

	_, err = c.GetItem(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetItem(ctx, "BROKEN")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
