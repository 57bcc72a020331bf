package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/clock"
	"github.com/iliyamo/donation-holds/internal/metrics"
	"github.com/iliyamo/donation-holds/internal/model"
	"github.com/iliyamo/donation-holds/internal/repository"
)

// HoldRepository is the persistence contract of the hold engine.  It is
// satisfied by *repository.HoldRepo.
type HoldRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, h *model.Hold) error
	GetByID(ctx context.Context, id uint64) (model.Hold, error)
	ListBlockingByItem(ctx context.Context, itemID string) ([]model.Hold, error)
	ListActiveByUser(ctx context.Context, userID uint64) ([]model.Hold, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Hold, error)
	ListBlocking(ctx context.Context) ([]model.Hold, error)
	MarkExpired(ctx context.Context, ids []uint64) (int64, error)
	Close(ctx context.Context, id uint64, to model.HoldStatus, at time.Time) (bool, error)
}

// HoldService owns the hold state machine.  There is no background
// expiry job: every path that looks at ACTIVE holds runs them through
// observe first, which flips and persists stale ones before the caller
// sees them.
type HoldService struct {
	repo    HoldRepository
	clock   clock.Clock
	holdTTL time.Duration
	locks   *itemLocks
	log     *zap.Logger
}

func NewHoldService(repo HoldRepository, clk clock.Clock, log *zap.Logger, opts ...HoldServiceOption) *HoldService {
	if log == nil {
		log = zap.NewNop()
	}
	svc := &HoldService{
		repo:    repo,
		clock:   clk,
		holdTTL: model.DefaultHoldDuration,
		locks:   newItemLocks(),
		log:     log,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type HoldServiceOption func(*HoldService)

// WithHoldTTL overrides the default duration of new holds.
func WithHoldTTL(d time.Duration) HoldServiceOption {
	return func(s *HoldService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// CreateHold places a hold on itemID for userID.  It fails with
// ErrAlreadyHeld when a live hold exists or the item was already picked
// up.  The read-check-write sequence runs under a per-item lock and a
// transaction; the unique index on active holds backs it up at the
// database.
func (s *HoldService) CreateHold(ctx context.Context, userID uint64, itemID string) (model.Hold, error) {
	unlock := s.locks.lock(itemID)
	defer unlock()

	now := s.clock.Now()
	var (
		created  model.Hold
		conflict bool
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.ListBlockingByItem(txCtx, itemID)
		if err != nil {
			return err
		}
		existing, err = s.observe(txCtx, existing, now)
		if err != nil {
			return err
		}
		for _, h := range existing {
			if h.Status == model.HoldStatusCompleted || h.IsActiveAt(now) {
				// keep the stale flips; only the insert is skipped
				conflict = true
				return nil
			}
		}

		hold := model.Hold{
			UserID:    userID,
			ItemID:    itemID,
			Status:    model.HoldStatusActive,
			CreatedAt: now,
			ExpiresAt: now.Add(s.holdTTL),
		}
		if err := s.repo.Create(txCtx, &hold); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				conflict = true
				return nil
			}
			return err
		}
		created = hold
		return nil
	})
	if err != nil {
		return model.Hold{}, err
	}
	if conflict {
		metrics.HoldConflictsTotal.Inc()
		s.log.Info("hold rejected, item already held",
			zap.String("item_id", itemID), zap.Uint64("user_id", userID))
		return model.Hold{}, ErrAlreadyHeld
	}

	metrics.HoldsCreatedTotal.Inc()
	s.log.Info("hold created",
		zap.Uint64("hold_id", created.ID),
		zap.String("item_id", itemID),
		zap.Uint64("user_id", userID),
		zap.Time("expires_at", created.ExpiresAt))
	return created, nil
}

// GetHold returns a hold in its current state.  A stale ACTIVE hold is
// expired and persisted first, so the result never shows ACTIVE past its
// window.
func (s *HoldService) GetHold(ctx context.Context, id uint64) (model.Hold, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Hold{}, ErrHoldNotFound
		}
		return model.Hold{}, err
	}
	observed, err := s.observe(ctx, []model.Hold{h}, s.clock.Now())
	if err != nil {
		return model.Hold{}, err
	}
	return observed[0], nil
}

// CancelHold moves a live hold to CANCELLED, releasing its item.
func (s *HoldService) CancelHold(ctx context.Context, id uint64) (model.Hold, error) {
	h, err := s.close(ctx, id, model.HoldStatusCancelled, nil)
	if err != nil {
		return model.Hold{}, err
	}
	metrics.HoldsCancelledTotal.Inc()
	s.log.Info("hold cancelled", zap.Uint64("hold_id", id), zap.String("item_id", h.ItemID))
	return h, nil
}

// CompleteHold moves a live hold to COMPLETED.  The item never becomes
// available again.
func (s *HoldService) CompleteHold(ctx context.Context, id uint64) (model.Hold, error) {
	return s.CompleteHoldWith(ctx, id, nil)
}

// CompleteHoldWith is CompleteHold with a step that runs in the same
// transaction, after the transition.  If then fails the hold stays ACTIVE
// and its error is returned.
func (s *HoldService) CompleteHoldWith(ctx context.Context, id uint64, then func(ctx context.Context, h model.Hold) error) (model.Hold, error) {
	h, err := s.close(ctx, id, model.HoldStatusCompleted, then)
	if err != nil {
		return model.Hold{}, err
	}
	s.log.Info("hold completed", zap.Uint64("hold_id", id), zap.String("item_id", h.ItemID))
	return h, nil
}

// close performs a terminal transition.  A hold that is missing, already
// terminal, or found stale (which is persisted as EXPIRED) yields
// ErrHoldNotFound.  then, if set, sees the closed hold inside the
// transaction.
func (s *HoldService) close(ctx context.Context, id uint64, to model.HoldStatus, then func(ctx context.Context, h model.Hold) error) (model.Hold, error) {
	now := s.clock.Now()
	var (
		result model.Hold
		gone   bool
	)
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		h, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				gone = true
				return nil
			}
			return err
		}
		observed, err := s.observe(txCtx, []model.Hold{h}, now)
		if err != nil {
			return err
		}
		h = observed[0]
		if !h.IsActiveAt(now) {
			gone = true
			return nil
		}

		ok, err := s.repo.Close(txCtx, id, to, now)
		if err != nil {
			return err
		}
		if !ok {
			gone = true
			return nil
		}
		h.Status = to
		at := now
		switch to {
		case model.HoldStatusCompleted:
			h.CompletedAt = &at
		case model.HoldStatusCancelled:
			h.CancelledAt = &at
		}
		if then != nil {
			if err := then(txCtx, h); err != nil {
				return err
			}
		}
		result = h
		return nil
	})
	if err != nil {
		return model.Hold{}, err
	}
	if gone {
		return model.Hold{}, ErrHoldNotFound
	}
	return result, nil
}

// ListHolds returns every hold for a user, newest first.  Nothing is
// written; a hold still stored as ACTIVE past its window is reported as
// EXPIRED so this view agrees with the active-only one.
func (s *HoldService) ListHolds(ctx context.Context, userID uint64) ([]model.Hold, error) {
	holds, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range holds {
		if holds[i].IsStaleAt(now) {
			holds[i].Status = model.HoldStatusExpired
		}
	}
	return holds, nil
}

// ListActiveHolds returns a user's live holds, expiring stale ones on the
// way.
func (s *HoldService) ListActiveHolds(ctx context.Context, userID uint64) ([]model.Hold, error) {
	holds, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	holds, err = s.observe(ctx, holds, now)
	if err != nil {
		return nil, err
	}
	active := make([]model.Hold, 0, len(holds))
	for _, h := range holds {
		if h.IsActiveAt(now) {
			active = append(active, h)
		}
	}
	return active, nil
}

// UnavailableItemIDs returns the IDs that must not be offered: items with
// a live hold plus items that were picked up.  Stale holds are expired on
// the way, through the same path as every other read.
func (s *HoldService) UnavailableItemIDs(ctx context.Context) (map[string]struct{}, error) {
	holds, err := s.repo.ListBlocking(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	holds, err = s.observe(ctx, holds, now)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(holds))
	for _, h := range holds {
		if h.Status == model.HoldStatusCompleted || h.IsActiveAt(now) {
			ids[h.ItemID] = struct{}{}
		}
	}
	return ids, nil
}

// observe is the single lazy-expiration path.  Every hold that is still
// ACTIVE but whose window has closed at now is flipped to EXPIRED in the
// returned slice and in storage.
func (s *HoldService) observe(ctx context.Context, holds []model.Hold, now time.Time) ([]model.Hold, error) {
	var stale []uint64
	for i := range holds {
		if holds[i].IsStaleAt(now) {
			holds[i].Status = model.HoldStatusExpired
			stale = append(stale, holds[i].ID)
		}
	}
	if len(stale) == 0 {
		return holds, nil
	}
	n, err := s.repo.MarkExpired(ctx, stale)
	if err != nil {
		return nil, err
	}
	metrics.HoldsExpiredTotal.Add(float64(n))
	s.log.Debug("expired stale holds", zap.Uint64s("hold_ids", stale), zap.Int64("updated", n))
	return holds, nil
}
