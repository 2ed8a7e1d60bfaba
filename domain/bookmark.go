package domain

import (
	"time"
)

// Bookmark represents a many-to-many relationship between a User and a Freet.
// At most one Bookmark exists per (user, freet) pair, independently of any
// Like for the same pair.
type Bookmark struct {
	ID      int `json:"id"`
	UserID  int `json:"user_id" gorm:"notNull;index;uniqueIndex:idx_bookmark_user_freet"`
	FreetID int `json:"freet_id" gorm:"notNull;uniqueIndex:idx_bookmark_user_freet"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookmarkService is a set of methods to manipulate and work with the Bookmark model.
type BookmarkService interface {
	ByID(id int) (*Bookmark, error)
	All() ([]Bookmark, error)
	ByUsername(username string) ([]Bookmark, error)
	Create(bookmark *Bookmark) error
	Delete(id int) error
	DeleteAllByUser(userId int) error
	DeleteAllByFreet(freetId int) error
}
