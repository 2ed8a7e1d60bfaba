package domain

import (
	"time"
)

// ReaderMode records whether a user is browsing in reader mode, a safe mode
// in which public-facing write actions are blocked. Exactly one record exists
// per user, created alongside the user.
type ReaderMode struct {
	ID int `json:"id"`
	UserID int `json:"user_id" gorm:"notNull;uniqueIndex"`
	InReaderMode bool `json:"in_reader_mode"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReaderModeService is a set of methods to manipulate and work with the
// ReaderMode model. Enter and Exit are idempotent; re-entering an active
// reader mode rewrites the row without changing its meaning.
type ReaderModeService interface {
	ByUserID(userId int) (*ReaderMode, error)
	Create(userId int) (*ReaderMode, error)
	Enter(userId int) (*ReaderMode, error)
	Exit(userId int) (*ReaderMode, error)
	DeleteAllByUser(userId int) error
}
