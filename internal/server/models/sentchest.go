package models

import "time"

// SentChest is the sender-side record of a launched rocket. It has no
// placement or display dimension, only the soft-delete lifecycle.
type SentChest struct {
	ID          int64
	RocketID    int64
	OwnerUserID int64
	IsDeleted   bool
	DeletedAt   *time.Time
}

// SentChestListItem is a row of the sent-chest list.
type SentChestListItem struct {
	SentChestID   int64
	RocketID      int64
	RocketName    string
	DesignURL     string
	ReceiverEmail string
	Content       string
}

// SentChestPage is one page of the sent-chest list.
type SentChestPage struct {
	SentChests    []SentChestListItem
	CurrentPage   int
	PageSize      int
	TotalElements int64
	TotalPages    int
	First         bool
	Last          bool
	SortBy        string
	SortDirection string
	SentCount     int64
}

// SentChestDetail is the sender's single-record view. Senders always see
// the content they wrote; lock state only gates the receiver.
type SentChestDetail struct {
	RocketID      int64
	RocketName    string
	DesignURL     string
	ReceiverEmail string
	SentAt        *time.Time
	LockExpiredAt *time.Time
	Content       string
	Files         []RocketFileView
}
