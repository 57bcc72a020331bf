package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/donation-holds/internal/model"
)

// PickupRepo is the append-only store behind the pickup ledger.  It has no
// update or delete operations.
type PickupRepo struct {
	db *sql.DB
}

// NewPickupRepo returns a new PickupRepo bound to the given database.
func NewPickupRepo(db *sql.DB) *PickupRepo { return &PickupRepo{db: db} }

// Create inserts a pickup record and populates its generated ID.
func (r *PickupRepo) Create(ctx context.Context, rec *model.PickupRecord) error {
	const q = `INSERT INTO pickup_records (user_id, item_id, description, donor_contact, pickup_location, completed_at)
               VALUES (?, ?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		rec.UserID, rec.ItemID,
		nullString(rec.Description), nullString(rec.DonorContact), nullString(rec.PickupLocation),
		rec.CompletedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create pickup record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create pickup record: last insert id: %w", err)
	}
	rec.ID = uint64(id)
	return nil
}

// ListByUser returns a user's pickup records, newest first.  When no
// records exist it returns an empty slice.
func (r *PickupRepo) ListByUser(ctx context.Context, userID uint64) ([]model.PickupRecord, error) {
	const q = `SELECT id, user_id, item_id, description, donor_contact, pickup_location, completed_at
               FROM pickup_records
               WHERE user_id = ?
               ORDER BY completed_at DESC, id DESC`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list pickup records: %w", err)
	}
	defer rows.Close()

	out := make([]model.PickupRecord, 0)
	for rows.Next() {
		var (
			rec                     model.PickupRecord
			desc, contact, location sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ItemID, &desc, &contact, &location, &rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("list pickup records: scan: %w", err)
		}
		rec.Description = stringPtr(desc)
		rec.DonorContact = stringPtr(contact)
		rec.PickupLocation = stringPtr(location)
		rec.CompletedAt = rec.CompletedAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pickup records: %w", err)
	}
	return out, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
