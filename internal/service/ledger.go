package service

import (
	"context"

	"github.com/iliyamo/donation-holds/internal/model"
)

// PickupRepository stores the append-only pickup history.
type PickupRepository interface {
	Create(ctx context.Context, rec *model.PickupRecord) error
	ListByUser(ctx context.Context, userID uint64) ([]model.PickupRecord, error)
}

// PickupLedger writes and reads pickup records.
type PickupLedger struct {
	repo PickupRepository
}

func NewPickupLedger(repo PickupRepository) *PickupLedger {
	return &PickupLedger{repo: repo}
}

// Record appends an entry for a completed hold.  item may be nil when the
// catalog lookup failed; the snapshot fields are then left empty.
func (l *PickupLedger) Record(ctx context.Context, hold model.Hold, item *model.CatalogItem) (model.PickupRecord, error) {
	rec := model.PickupRecord{
		UserID: hold.UserID,
		ItemID: hold.ItemID,
	}
	if hold.CompletedAt != nil {
		rec.CompletedAt = *hold.CompletedAt
	}
	if item != nil {
		rec.Description = &item.Description
		rec.DonorContact = &item.DonorContact
		rec.PickupLocation = &item.Address
	}
	if err := l.repo.Create(ctx, &rec); err != nil {
		return model.PickupRecord{}, err
	}
	return rec, nil
}

// History returns a user's pickups, newest first.
func (l *PickupLedger) History(ctx context.Context, userID uint64) ([]model.PickupRecord, error) {
	return l.repo.ListByUser(ctx, userID)
}
