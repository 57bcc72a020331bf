package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/catalog"
	"github.com/iliyamo/donation-holds/internal/clock"
	"github.com/iliyamo/donation-holds/internal/model"
	"github.com/iliyamo/donation-holds/internal/repository"
	"github.com/iliyamo/donation-holds/internal/testutil"
)

// runConcurrently starts every call at once and returns the errors in
// call order.
func runConcurrently(n int, call func(i int) error) []error {
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = call(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestHoldService_MySQLConcurrentCreate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := repository.NewHoldRepo(db)

	countActive := func(t *testing.T, itemID string) int {
		t.Helper()
		var n int
		require.NoError(t, db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM holds WHERE item_id = ? AND status = 'ACTIVE'", itemID).Scan(&n))
		return n
	}

	t.Run("distinct items do not block each other", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		svc := NewHoldService(repo, clock.NewSystem(), zap.NewNop())
		// every fresh item below sorts before this one, so all their
		// lookups land in the same index gap
		_, err := svc.CreateHold(ctx, 1, "zz-existing")
		require.NoError(t, err)

		const n = 24
		errs := runConcurrently(n, func(i int) error {
			_, err := svc.CreateHold(ctx, uint64(i+2), fmt.Sprintf("item-%02d", i))
			return err
		})
		for i, err := range errs {
			assert.NoError(t, err, "item-%02d", i)
		}
		for i := 0; i < n; i++ {
			assert.Equal(t, 1, countActive(t, fmt.Sprintf("item-%02d", i)))
		}
	})

	t.Run("one item has one winner across processes", func(t *testing.T) {
		testutil.TruncateAll(t, db)
		// separate services have separate in-process locks, like separate
		// server instances sharing the database
		services := make([]*HoldService, 4)
		for i := range services {
			services[i] = NewHoldService(repo, clock.NewSystem(), zap.NewNop())
		}

		const n = 32
		errs := runConcurrently(n, func(i int) error {
			_, err := services[i%len(services)].CreateHold(ctx, uint64(i+1), "DON-003")
			return err
		})
		wins, conflicts := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrAlreadyHeld):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, n-1, conflicts)
		assert.Equal(t, 1, countActive(t, "DON-003"))
	})
}

type failingPickupRepo struct{ err error }

func (r failingPickupRepo) Create(context.Context, *model.PickupRecord) error { return r.err }

func (r failingPickupRepo) ListByUser(context.Context, uint64) ([]model.PickupRecord, error) {
	return nil, nil
}

func TestReservationService_MySQLLedgerFailureRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.TruncateAll(t, db)
	ctx := context.Background()
	repo := repository.NewHoldRepo(db)
	cat := catalog.NewFixture()
	log := zap.NewNop()
	engine := NewHoldService(repo, clock.NewSystem(), log)

	svc := NewReservationService(engine, NewAvailabilityService(cat, engine, log), cat,
		NewPickupLedger(failingPickupRepo{err: errors.New("pickup_records unavailable")}), nil, log)

	hold, _, err := svc.RequestHold(ctx, 1, "DON-001")
	require.NoError(t, err)

	_, err = svc.ConfirmPickup(ctx, hold.ID)
	require.Error(t, err)

	stored, err := repo.GetByID(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, model.HoldStatusActive, stored.Status)
	assert.Nil(t, stored.CompletedAt)

	svc = NewReservationService(engine, NewAvailabilityService(cat, engine, log), cat,
		NewPickupLedger(repository.NewPickupRepo(db)), nil, log)
	rec, err := svc.ConfirmPickup(ctx, hold.ID)
	require.NoError(t, err)
	assert.NotZero(t, rec.ID)
}
