package model

import "time"

// User represents a donation recipient as stored in the `users` table.
// There is no authentication; a user is identified by email alone and is
// referenced from holds and pickup records by ID only.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Email     – unique, normalised email address.
//  Name      – display name.
//  CreatedAt – timestamp of creation.
type User struct {
	ID        uint64    // users.id
	Email     string    // users.email
	Name      string    // users.name
	CreatedAt time.Time // users.created_at
}
