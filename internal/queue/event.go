// Package queue defines message payloads exchanged over the message broker
// together with the publisher and consumer that move them.
package queue

// PickupCompletedQueue is the durable queue pickup events are routed to.
const PickupCompletedQueue = "pickup.completed"

// PickupCompletedEvent is published after a pickup has been confirmed and
// written to the ledger.  It carries enough of the item snapshot for
// downstream consumers to log or notify without querying the database.
type PickupCompletedEvent struct {
	PickupID       uint64  `json:"pickup_id"`
	HoldID         uint64  `json:"hold_id"`
	UserID         uint64  `json:"user_id"`
	ItemID         string  `json:"item_id"`
	Description    *string `json:"description"`
	DonorContact   *string `json:"donor_contact"`
	PickupLocation *string `json:"pickup_location"`
	CompletedAt    string  `json:"completed_at"`
}
