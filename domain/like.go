package domain

import (
	"time"
)

// Like represents a many-to-many relationship between a User and a Freet.
// A Like is created when a user decides to like a freet. It's destroyed when
// a user decides to unlike a previously liked freet, or cascaded away when
// the freet or the user gets deleted. The composite unique index is the
// backstop against two racing inserts for the same pair.
type Like struct {
	ID      int `json:"id"`
	UserID  int `json:"user_id" gorm:"notNull;index;uniqueIndex:idx_like_user_freet"`
	FreetID int `json:"freet_id" gorm:"notNull;uniqueIndex:idx_like_user_freet"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	ByID(id int) (*Like, error)
	All() ([]Like, error)
	ByUsername(username string) ([]Like, error)
	Create(like *Like) error
	Delete(id int) error
	DeleteAllByUser(userId int) error
	DeleteAllByFreet(freetId int) error
	CountByFreet(freetId int) (int, error)
	CountByFreets(freetIds []int) (map[int]int, error)
}
