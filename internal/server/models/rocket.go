package models

import (
	"time"

	"github.com/melly/timerocket/internal/server/slots"
)

// Rocket is the time-locked capsule entity. A rocket is created locked and
// stays locked until its expiry passes and the receiver explicitly unlocks
// it.
type Rocket struct {
	ID             int64
	SenderUserID   int64
	ReceiverUserID int64
	Name           string
	Design         string
	Content        string
	ReceiverType   slots.Category
	IsLock         bool
	LockExpiredAt  time.Time
	IsTemp         bool
	TempCreatedAt  *time.Time
	SentAt         *time.Time
}

// RocketDraft carries the fields a sender fills in before launch. It backs
// both sending and the single per-user temp save.
type RocketDraft struct {
	Name          string
	Design        string
	Content       string
	ReceiverType  slots.Category
	ReceiverEmail string
	LockExpiredAt time.Time
}
