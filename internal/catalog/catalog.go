// Package catalog is the read-only source of donation records.  The hold
// engine treats it as an external collaborator: it may be an in-memory
// fixture or a remote service, and any call may fail.
package catalog

//go:generate mockgen -source=catalog.go -destination=mocks/mock_catalog.go -package=mocks

import (
	"context"
	"errors"

	"github.com/iliyamo/donation-holds/internal/model"
)

// ErrNotFound is returned by GetItem when the catalog has no such ID.
var ErrNotFound = errors.New("catalog item not found")

// Catalog is the contract consumed by the availability projector and the
// reservation orchestrator.
type Catalog interface {
	// ListItems returns every item in the given area.
	ListItems(ctx context.Context, area model.Area) ([]model.CatalogItem, error)
	// GetItem returns a single item or ErrNotFound.
	GetItem(ctx context.Context, id string) (model.CatalogItem, error)
}
