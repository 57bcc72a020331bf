package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/donation-holds/internal/catalog"
	"github.com/iliyamo/donation-holds/internal/metrics"
	"github.com/iliyamo/donation-holds/internal/model"
)

// Listing is a catalog item decorated with whether it can be claimed.
type Listing struct {
	model.CatalogItem
	IsHeld bool `json:"is_held"`
}

// UnavailableSource reports which items are blocked right now.
type UnavailableSource interface {
	UnavailableItemIDs(ctx context.Context) (map[string]struct{}, error)
}

// AvailabilityService merges catalog results with hold state.  Results are
// computed on every call and never cached.
type AvailabilityService struct {
	catalog catalog.Catalog
	holds   UnavailableSource
	log     *zap.Logger
}

func NewAvailabilityService(c catalog.Catalog, holds UnavailableSource, log *zap.Logger) *AvailabilityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AvailabilityService{catalog: c, holds: holds, log: log}
}

// ListAvailable returns the catalog items in area that are neither held nor
// picked up, in catalog order.
func (s *AvailabilityService) ListAvailable(ctx context.Context, area model.Area) ([]Listing, error) {
	items, blocked, err := s.fetch(ctx, area)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(items))
	for _, it := range items {
		if _, ok := blocked[it.ID]; ok {
			continue
		}
		out = append(out, Listing{CatalogItem: it})
	}
	return out, nil
}

// ListAll returns every catalog item in area with IsHeld set for blocked
// ones.
func (s *AvailabilityService) ListAll(ctx context.Context, area model.Area) ([]Listing, error) {
	items, blocked, err := s.fetch(ctx, area)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(items))
	for _, it := range items {
		_, held := blocked[it.ID]
		out = append(out, Listing{CatalogItem: it, IsHeld: held})
	}
	return out, nil
}

// fetch loads the catalog page and the blocked set concurrently.
func (s *AvailabilityService) fetch(ctx context.Context, area model.Area) ([]model.CatalogItem, map[string]struct{}, error) {
	var (
		items   []model.CatalogItem
		blocked map[string]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.catalog.ListItems(gctx, area)
		if err != nil {
			metrics.CatalogErrorsTotal.WithLabelValues("list").Inc()
			s.log.Error("catalog list failed", zap.Error(err))
		}
		return err
	})
	g.Go(func() error {
		var err error
		blocked, err = s.holds.UnavailableItemIDs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return items, blocked, nil
}
