package model

import "time"

// PickupRecord is an append-only audit entry written once when a hold is
// completed.  The item snapshot fields are nil when the catalog could not
// be reached at pickup time.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user who collected the item.
//  ItemID         – catalog item that was collected.
//  Description    – item description at the time of pickup.
//  DonorContact   – donor contact details at the time of pickup.
//  PickupLocation – pickup address at the time of pickup.
//  CompletedAt    – when the pickup was confirmed.
type PickupRecord struct {
	ID             uint64    // pickup_records.id
	UserID         uint64    // pickup_records.user_id
	ItemID         string    // pickup_records.item_id
	Description    *string   // pickup_records.description (nullable)
	DonorContact   *string   // pickup_records.donor_contact (nullable)
	PickupLocation *string   // pickup_records.pickup_location (nullable)
	CompletedAt    time.Time // pickup_records.completed_at
}
