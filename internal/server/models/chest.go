package models

import (
	"time"

	"github.com/melly/timerocket/internal/server/slots"
)

// Chest is one storage record in a user's received chest: a slot-addressed
// reference to a rocket, with optional display (showcase) membership.
//
// Invariants maintained by the placement service:
//   - Location is unique per (owner, category) among non-deleted records.
//   - IsPublic implies PublicAt and DisplayLocation are set; at most
//     slots.MaxDisplaySlots records per owner are public.
//   - IsDeleted implies Location, IsPublic, PublicAt and DisplayLocation
//     are all cleared.
type Chest struct {
	ID              int64
	RocketID        int64
	OwnerUserID     int64
	Category        slots.Category
	Location        *string
	IsPublic        bool
	PublicAt        *time.Time
	DisplayLocation *int64
	IsDeleted       bool
	DeletedAt       *time.Time
}

// ChestListItem is a row of the received-chest list: chest placement fields
// joined with the referenced rocket and the identities on both ends.
type ChestListItem struct {
	ChestID          int64
	RocketID         int64
	RocketName       string
	DesignURL        string
	SenderEmail      string
	ReceiverNickname string
	ReceiverEmail    string
	Content          string
	LockExpiredAt    time.Time
	IsPublic         bool
	PublicAt         *time.Time
	Location         *string
}

// ChestPage is one page of the received-chest list plus pagination echo and
// the per-context totals shown on the chest tabs.
type ChestPage struct {
	Chests        []ChestListItem
	CurrentPage   int
	PageSize      int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
	SortBy        string
	SortDirection string
	ReceivedCount int64
	SentCount     int64
}

// ChestDetail is the single-record view. For a locked rocket only the
// summary fields are populated; Content and Files stay empty until the
// rocket is unlocked.
type ChestDetail struct {
	RocketID      int64
	RocketName    string
	DesignURL     string
	SenderEmail   string
	SentAt        *time.Time
	LockExpiredAt *time.Time
	IsLocked      bool
	Content       string
	Files         []RocketFileView
}
