package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/donation-holds/internal/model"
)

// HoldRepo provides data access to the holds table.  Rows are never
// deleted; status transitions are conditional updates guarded on the row
// still being ACTIVE so a lost race changes nothing.  All timestamps are
// stored and compared in UTC.
type HoldRepo struct {
	db *sql.DB
}

// NewHoldRepo returns a new HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

const holdColumns = `id, user_id, item_id, status, created_at, expires_at, completed_at, cancelled_at`

// WithTx runs fn in a transaction shared by every HoldRepo call made with
// the context it receives.
func (r *HoldRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

// Create inserts a new hold and populates its generated ID.  A second
// ACTIVE hold for the same item trips the uq_holds_active_item index and
// is reported as ErrDuplicate.
func (r *HoldRepo) Create(ctx context.Context, h *model.Hold) error {
	const q = `INSERT INTO holds (user_id, item_id, status, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, h.UserID, h.ItemID, h.Status, h.CreatedAt.UTC(), h.ExpiresAt.UTC())
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create hold: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create hold: last insert id: %w", err)
	}
	h.ID = uint64(id)
	return nil
}

// GetByID fetches a hold by primary key or returns ErrNotFound.
func (r *HoldRepo) GetByID(ctx context.Context, id uint64) (model.Hold, error) {
	q := `SELECT ` + holdColumns + ` FROM holds WHERE id = ?`
	h, err := scanHold(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Hold{}, ErrNotFound
		}
		return model.Hold{}, fmt.Errorf("get hold %d: %w", id, err)
	}
	return h, nil
}

// ListBlockingByItem returns the ACTIVE and COMPLETED holds for an item.
// Inside a transaction the matching rows are locked, so a concurrent
// cancel or expiry of the same hold waits for the caller to commit.
func (r *HoldRepo) ListBlockingByItem(ctx context.Context, itemID string) ([]model.Hold, error) {
	q := `SELECT ` + holdColumns + ` FROM holds WHERE item_id = ? AND status IN ('ACTIVE','COMPLETED')`
	if txFromContext(ctx) != nil {
		q += ` FOR UPDATE`
	}
	return r.list(ctx, "list holds by item", q, itemID)
}

// ListActiveByUser returns holds still marked ACTIVE for a user, including
// ones whose window may already have closed.
func (r *HoldRepo) ListActiveByUser(ctx context.Context, userID uint64) ([]model.Hold, error) {
	q := `SELECT ` + holdColumns + ` FROM holds WHERE user_id = ? AND status = 'ACTIVE' ORDER BY created_at DESC, id DESC`
	return r.list(ctx, "list active holds by user", q, userID)
}

// ListByUser returns every hold for a user, newest first.
func (r *HoldRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Hold, error) {
	q := `SELECT ` + holdColumns + ` FROM holds WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, "list holds by user", q, userID)
}

// ListBlocking returns every ACTIVE or COMPLETED hold across all items.
func (r *HoldRepo) ListBlocking(ctx context.Context) ([]model.Hold, error) {
	q := `SELECT ` + holdColumns + ` FROM holds WHERE status IN ('ACTIVE','COMPLETED')`
	return r.list(ctx, "list blocking holds", q)
}

// MarkExpired flips the given holds from ACTIVE to EXPIRED.  Rows that
// already left ACTIVE are skipped.  It returns the number of rows changed.
func (r *HoldRepo) MarkExpired(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := `UPDATE holds SET status = 'EXPIRED' WHERE status = 'ACTIVE' AND id IN (` + placeholders + `)`
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("mark holds expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark holds expired: rows affected: %w", err)
	}
	return n, nil
}

// Close moves an ACTIVE hold into a terminal state and stamps the matching
// timestamp column.  It reports false when the hold was not ACTIVE any
// more.  Only COMPLETED and CANCELLED are accepted.
func (r *HoldRepo) Close(ctx context.Context, id uint64, to model.HoldStatus, at time.Time) (bool, error) {
	var col string
	switch to {
	case model.HoldStatusCompleted:
		col = "completed_at"
	case model.HoldStatusCancelled:
		col = "cancelled_at"
	default:
		return false, fmt.Errorf("close hold %d: unsupported status %q", id, to)
	}
	q := `UPDATE holds SET status = ?, ` + col + ` = ? WHERE id = ? AND status = 'ACTIVE'`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, to, at.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("close hold %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close hold %d: rows affected: %w", id, err)
	}
	return n == 1, nil
}

func (r *HoldRepo) list(ctx context.Context, op, q string, args ...any) ([]model.Hold, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	holds := make([]model.Hold, 0)
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return holds, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHold(s rowScanner) (model.Hold, error) {
	var (
		h         model.Hold
		completed sql.NullTime
		cancelled sql.NullTime
	)
	if err := s.Scan(&h.ID, &h.UserID, &h.ItemID, &h.Status, &h.CreatedAt, &h.ExpiresAt, &completed, &cancelled); err != nil {
		return model.Hold{}, err
	}
	if completed.Valid {
		t := completed.Time.UTC()
		h.CompletedAt = &t
	}
	if cancelled.Valid {
		t := cancelled.Time.UTC()
		h.CancelledAt = &t
	}
	h.CreatedAt = h.CreatedAt.UTC()
	h.ExpiresAt = h.ExpiresAt.UTC()
	return h, nil
}
