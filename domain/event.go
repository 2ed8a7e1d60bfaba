package domain

import (
	"time"
)

// EventAnnouncement wraps a Freet with scheduling metadata. The author and
// description of an event live in the underlying Freet, which is created
// together with the event and must not be edited or deleted independently
// while the event exists.
//
// Events are never modified or hard-deleted once created, only cancelled.
// Cancellation is terminal: no operation leaves the cancelled state, and no
// field other than Cancelled and DateModified changes on cancellation.
type EventAnnouncement struct {
	ID int `json:"id"`
	DateModified time.Time `json:"date_modified"`
	EventDate time.Time `json:"event_date"`
	EventSubject string `json:"event_subject"`
	EventLocation string `json:"event_location"`
	Cancelled bool `json:"cancelled"`
	// FreetID references the associated Freet. The unique index keeps a
	// freet from backing more than one event.
	FreetID int `json:"freet_id" gorm:"notNull;uniqueIndex"`
	AuthorID int `json:"author_id" gorm:"notNull;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventService is a set of methods to manipulate and work with the
// EventAnnouncement model. There is deliberately no per-event delete:
// DeleteAllByAuthor exists only for the account-deletion cascade.
type EventService interface {
	ByID(id int) (*EventAnnouncement, error)
	// ByFreetID returns the event backed by the given freet, or nil if the
	// freet is not associated with any event.
	ByFreetID(freetId int) (*EventAnnouncement, error)
	All() ([]EventAnnouncement, error)
	ByUsername(username string) ([]EventAnnouncement, error)
	CreateEvent(event *EventAnnouncement, description string) error
	CancelEvent(id int) (*EventAnnouncement, error)
	CancelAllByAuthor(authorId int) error
	DeleteAllByAuthor(authorId int) error
}
