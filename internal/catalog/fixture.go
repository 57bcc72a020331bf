package catalog

import (
	"context"

	"github.com/iliyamo/donation-holds/internal/model"
)

// Fixture is an in-memory catalog used for local development and tests
// when no remote catalog is configured.  It does no geographic filtering.
type Fixture struct {
	items []model.CatalogItem
}

// NewFixture returns a catalog backed by the given items, or the built-in
// sample donations when items is empty.
func NewFixture(items ...model.CatalogItem) *Fixture {
	if len(items) == 0 {
		items = sampleDonations
	}
	cp := make([]model.CatalogItem, len(items))
	copy(cp, items)
	return &Fixture{items: cp}
}

func (f *Fixture) ListItems(_ context.Context, _ model.Area) ([]model.CatalogItem, error) {
	out := make([]model.CatalogItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *Fixture) GetItem(_ context.Context, id string) (model.CatalogItem, error) {
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return model.CatalogItem{}, ErrNotFound
}

var sampleDonations = []model.CatalogItem{
	{
		ID:           "DON-001",
		Description:  "Assorted fresh vegetables (carrots, broccoli, peppers)",
		Category:     "Produce",
		Quantity:     "~20 lbs",
		DonorName:    "Pittsburgh Fresh Market",
		DonorContact: "412-555-0101",
		Latitude:     40.4406,
		Longitude:    -79.9959,
		Address:      "100 Market Square, Pittsburgh, PA 15222",
		ExpiresAt:    "2026-02-15T18:00:00Z",
	},
	{
		ID:           "DON-002",
		Description:  "Leftover catered sandwiches and wraps",
		Category:     "Prepared Food",
		Quantity:     "30 servings",
		DonorName:    "CMU Cohon Center",
		DonorContact: "412-555-0202",
		Latitude:     40.4433,
		Longitude:    -79.9423,
		Address:      "5032 Forbes Ave, Pittsburgh, PA 15213",
		ExpiresAt:    "2026-02-12T20:00:00Z",
	},
	{
		ID:           "DON-003",
		Description:  "Canned soups and pasta (assorted, near sell-by date)",
		Category:     "Canned Goods",
		Quantity:     "2 cases",
		DonorName:    "Giant Eagle - Squirrel Hill",
		DonorContact: "412-555-0303",
		Latitude:     40.4381,
		Longitude:    -79.9226,
		Address:      "5550 Forward Ave, Pittsburgh, PA 15217",
		ExpiresAt:    "2026-03-01T23:59:00Z",
	},
	{
		ID:           "DON-004",
		Description:  "Bakery items: bread loaves, rolls, and muffins",
		Category:     "Bakery",
		Quantity:     "~15 items",
		DonorName:    "Allegro Hearth Bakery",
		DonorContact: "412-555-0404",
		Latitude:     40.4385,
		Longitude:    -79.9245,
		Address:      "5719 Bartlett St, Pittsburgh, PA 15217",
		ExpiresAt:    "2026-02-12T17:00:00Z",
	},
	{
		ID:           "DON-005",
		Description:  "Dairy products: milk, yogurt, cheese (refrigerated)",
		Category:     "Dairy",
		Quantity:     "~10 lbs",
		DonorName:    "Trader Joe's - East Liberty",
		DonorContact: "412-555-0505",
		Latitude:     40.4615,
		Longitude:    -79.9246,
		Address:      "6343 Penn Ave, Pittsburgh, PA 15206",
		ExpiresAt:    "2026-02-14T12:00:00Z",
	},
}
