// Package models defines server-side data models persisted in the database
// plus the read-side projections served to clients.
package models

import "time"

// User is the slice of the identity collaborator's account data this
// subsystem reads: just enough to resolve owners and render projections.
type User struct {
	ID        int64
	Email     string
	Nickname  string
	CreatedAt time.Time
}
