package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/catalog"
	"github.com/iliyamo/donation-holds/internal/catalog/mocks"
	"github.com/iliyamo/donation-holds/internal/clock"
	"github.com/iliyamo/donation-holds/internal/model"
)

func TestAvailabilityService(t *testing.T) {
	ctx := context.Background()
	area := model.Area{Latitude: 40.44, Longitude: -79.99, RadiusMiles: 5}
	items := []model.CatalogItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	repo := newFakeHoldRepo(
		model.Hold{ID: 1, ItemID: "b", Status: model.HoldStatusActive, CreatedAt: t0, ExpiresAt: t0.Add(time.Hour)},
	)
	holds := newTestHoldService(repo, clock.NewFixed(t0))

	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	cat.EXPECT().ListItems(gomock.Any(), area).Return(items, nil).Times(2)

	svc := NewAvailabilityService(cat, holds, zap.NewNop())

	available, err := svc.ListAvailable(ctx, area)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "a", available[0].ID)
	assert.Equal(t, "c", available[1].ID)
	assert.False(t, available[0].IsHeld)

	all, err := svc.ListAll(ctx, area)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []bool{false, true, false}, []bool{all[0].IsHeld, all[1].IsHeld, all[2].IsHeld})
}

func TestAvailabilityService_CatalogFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	boom := errors.New("catalog down")
	cat.EXPECT().ListItems(gomock.Any(), gomock.Any()).Return(nil, boom)

	holds := newTestHoldService(newFakeHoldRepo(), clock.NewFixed(t0))
	svc := NewAvailabilityService(cat, holds, nil)

	_, err := svc.ListAvailable(context.Background(), model.Area{})
	assert.ErrorIs(t, err, boom)
}

func TestAvailabilityService_PickedUpNeverReturns(t *testing.T) {
	repo := newFakeHoldRepo(
		model.Hold{ID: 1, ItemID: "DON-001", Status: model.HoldStatusCompleted, CreatedAt: t0, ExpiresAt: t0.Add(time.Hour)},
	)
	clk := clock.NewManual(t0)
	svc := NewAvailabilityService(catalog.NewFixture(), newTestHoldService(repo, clk), nil)

	for _, d := range []time.Duration{0, 3 * time.Hour, 72 * time.Hour} {
		clk.Advance(d)
		got, err := svc.ListAvailable(context.Background(), model.Area{})
		require.NoError(t, err)
		assert.Len(t, got, 4)
		for _, l := range got {
			assert.NotEqual(t, "DON-001", l.ID)
		}
	}
}
