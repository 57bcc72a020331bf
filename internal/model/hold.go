package model

import "time"

// HoldStatus enumerates the lifecycle states of a Hold.  ACTIVE is the only
// non-terminal state; EXPIRED, CANCELLED and COMPLETED are never left once
// entered.
type HoldStatus string

const (
	HoldStatusActive    HoldStatus = "ACTIVE"
	HoldStatusCompleted HoldStatus = "COMPLETED"
	HoldStatusExpired   HoldStatus = "EXPIRED"
	HoldStatusCancelled HoldStatus = "CANCELLED"
)

// DefaultHoldDuration is how long a new hold stays claimable before it
// lapses back into the pool.
const DefaultHoldDuration = 2 * time.Hour

// Hold represents a time-boxed claim on a single donated item by a single
// user.  Holds are never deleted; terminal rows are kept as history.
//
// Fields:
//  ID          – primary key identifier, assigned on insert.
//  UserID      – user who owns the claim.
//  ItemID      – opaque catalog item identifier.
//  Status      – current lifecycle state.
//  CreatedAt   – when the hold was created.
//  ExpiresAt   – CreatedAt plus the hold duration; never recomputed.
//  CompletedAt – set when the pickup is confirmed.
//  CancelledAt – set when the user cancels.
type Hold struct {
	ID          uint64     // holds.id
	UserID      uint64     // holds.user_id
	ItemID      string     // holds.item_id
	Status      HoldStatus // holds.status
	CreatedAt   time.Time  // holds.created_at
	ExpiresAt   time.Time  // holds.expires_at
	CompletedAt *time.Time // holds.completed_at (nullable)
	CancelledAt *time.Time // holds.cancelled_at (nullable)
}

// IsActiveAt reports whether the hold still blocks its item at the given
// instant: the status must be ACTIVE and now must be strictly before
// ExpiresAt.
func (h Hold) IsActiveAt(now time.Time) bool {
	return h.Status == HoldStatusActive && now.Before(h.ExpiresAt)
}

// IsStaleAt reports whether the hold is still marked ACTIVE but its window
// has already closed.  Such holds must be flipped to EXPIRED when observed.
func (h Hold) IsStaleAt(now time.Time) bool {
	return h.Status == HoldStatusActive && !now.Before(h.ExpiresAt)
}
