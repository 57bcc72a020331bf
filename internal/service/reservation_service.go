package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/donation-holds/internal/catalog"
	"github.com/iliyamo/donation-holds/internal/metrics"
	"github.com/iliyamo/donation-holds/internal/model"
	"github.com/iliyamo/donation-holds/internal/queue"
)

// EventPublisher announces completed pickups.  It is optional.
type EventPublisher interface {
	PublishPickupCompleted(ctx context.Context, ev queue.PickupCompletedEvent) error
}

// ReservationService is the single entry point the HTTP layer talks to.
// It coordinates the hold engine, the availability projection, the
// catalog and the pickup ledger.
type ReservationService struct {
	holds        *HoldService
	availability *AvailabilityService
	catalog      catalog.Catalog
	ledger       *PickupLedger
	events       EventPublisher
	log          *zap.Logger
}

func NewReservationService(
	holds *HoldService,
	availability *AvailabilityService,
	c catalog.Catalog,
	ledger *PickupLedger,
	events EventPublisher,
	log *zap.Logger,
) *ReservationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationService{
		holds:        holds,
		availability: availability,
		catalog:      c,
		ledger:       ledger,
		events:       events,
		log:          log,
	}
}

// ListDonations returns available items, or every item with its held flag
// when showAll is set.
func (s *ReservationService) ListDonations(ctx context.Context, area model.Area, showAll bool) ([]Listing, error) {
	if showAll {
		return s.availability.ListAll(ctx, area)
	}
	return s.availability.ListAvailable(ctx, area)
}

// RequestHold checks the item exists and places a hold on it.
func (s *ReservationService) RequestHold(ctx context.Context, userID uint64, itemID string) (model.Hold, model.CatalogItem, error) {
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return model.Hold{}, model.CatalogItem{}, ErrItemNotFound
		}
		metrics.CatalogErrorsTotal.WithLabelValues("get").Inc()
		return model.Hold{}, model.CatalogItem{}, err
	}
	hold, err := s.holds.CreateHold(ctx, userID, itemID)
	if err != nil {
		return model.Hold{}, model.CatalogItem{}, err
	}
	return hold, item, nil
}

// ConfirmPickup completes a live hold and records it in the ledger, both
// in one transaction: a failed ledger write leaves the hold ACTIVE.  A
// catalog failure does not block the pickup; the record is written
// without the item snapshot.  The broker event is best effort and sent
// after commit.
func (s *ReservationService) ConfirmPickup(ctx context.Context, holdID uint64) (model.PickupRecord, error) {
	hold, err := s.holds.GetHold(ctx, holdID)
	if err != nil {
		return model.PickupRecord{}, err
	}
	if hold.Status != model.HoldStatusActive {
		return model.PickupRecord{}, ErrHoldNotFound
	}

	var item *model.CatalogItem
	if it, err := s.catalog.GetItem(ctx, hold.ItemID); err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("get").Inc()
		s.log.Warn("catalog lookup failed during pickup, recording without snapshot",
			zap.String("item_id", hold.ItemID), zap.Error(err))
	} else {
		item = &it
	}

	var rec model.PickupRecord
	hold, err = s.holds.CompleteHoldWith(ctx, holdID, func(txCtx context.Context, h model.Hold) error {
		r, err := s.ledger.Record(txCtx, h, item)
		if err != nil {
			s.log.Error("pickup ledger write failed, hold left active",
				zap.Uint64("hold_id", holdID), zap.Error(err))
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return model.PickupRecord{}, err
	}
	metrics.PickupsCompletedTotal.Inc()
	s.log.Info("pickup recorded",
		zap.Uint64("pickup_id", rec.ID),
		zap.Uint64("hold_id", holdID),
		zap.String("item_id", rec.ItemID))

	s.publish(ctx, hold, rec)
	return rec, nil
}

func (s *ReservationService) publish(ctx context.Context, hold model.Hold, rec model.PickupRecord) {
	if s.events == nil {
		return
	}
	ev := queue.PickupCompletedEvent{
		PickupID:       rec.ID,
		HoldID:         hold.ID,
		UserID:         rec.UserID,
		ItemID:         rec.ItemID,
		Description:    rec.Description,
		DonorContact:   rec.DonorContact,
		PickupLocation: rec.PickupLocation,
		CompletedAt:    rec.CompletedAt.UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishPickupCompleted(ctx, ev); err != nil {
		s.log.Warn("pickup event not published", zap.Uint64("pickup_id", rec.ID), zap.Error(err))
	}
}

// CancelHold releases a live hold.
func (s *ReservationService) CancelHold(ctx context.Context, holdID uint64) (model.Hold, error) {
	return s.holds.CancelHold(ctx, holdID)
}

// GetHold returns a single hold in its current state.
func (s *ReservationService) GetHold(ctx context.Context, holdID uint64) (model.Hold, error) {
	return s.holds.GetHold(ctx, holdID)
}

// ListHolds returns the user's live holds, or every hold when activeOnly is
// false.
func (s *ReservationService) ListHolds(ctx context.Context, userID uint64, activeOnly bool) ([]model.Hold, error) {
	if activeOnly {
		return s.holds.ListActiveHolds(ctx, userID)
	}
	return s.holds.ListHolds(ctx, userID)
}

// History returns the user's pickup ledger, newest first.
func (s *ReservationService) History(ctx context.Context, userID uint64) ([]model.PickupRecord, error) {
	return s.ledger.History(ctx, userID)
}
