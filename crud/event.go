package crud

import (
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"fritter/domain"
	"fritter/errs"
)

// EventService manages EventAnnouncements.
// It implements the domain.EventService interface.
//
// Events compose a base Freet with scheduling metadata: the event's author
// and description live in an underlying Freet created together with the
// event. Once created, an event is never modified or deleted, only cancelled.
type EventService struct {
	eventValidator
}

// eventValidator runs validations on incoming EventAnnouncement data.
// On success, it passes the data on to eventGorm.
// Otherwise, it returns the error of the validation that has failed.
type eventValidator struct {
	eventGorm
}

// eventGorm runs CRUD operations on the database using incoming
// EventAnnouncement data. It assumes that data has been validated.
type eventGorm struct {
	db *gorm.DB
}

// NewEventService returns an instance of EventService.
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{
		eventValidator{
			eventGorm{
				db: db,
			},
		},
	}
}

// Ensure the EventService struct properly implements the domain.EventService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.EventService = &EventService{}

// CreateEvent runs validations needed for creating new EventAnnouncement
// database records, then creates the underlying Freet (with the description
// as its content) and the event record in one transaction.
func (ev *eventValidator) CreateEvent(event *domain.EventAnnouncement, description string) error {
	err := runEventValFns(event,
		ev.authorIdValid,
		ev.subjectValid,
		ev.locationValid,
		ev.dateValid)
	if err != nil {
		return err
	}
	if err := ev.descriptionValid(description); err != nil {
		return err
	}
	return ev.eventGorm.CreateEvent(event, description)
}

// CancelEvent validates the event ID, then lets eventGorm flip the event
// into its terminal cancelled state.
func (ev *eventValidator) CancelEvent(id int) (*domain.EventAnnouncement, error) {
	if id <= 0 {
		return nil, errs.Errorf(errs.EINVALID, "Event ID is invalid.")
	}
	return ev.eventGorm.CancelEvent(id)
}

// runEventValFns runs any number of functions of type eventValFn on the passed in event object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runEventValFns(event *domain.EventAnnouncement, fns ...eventValFn) error {
	for _, fn := range fns {
		if err := fn(event); err != nil {
			return err
		}
	}
	return nil
}

// An eventValFn is any function that takes in a pointer to a domain.EventAnnouncement object and returns an error.
type eventValFn func(event *domain.EventAnnouncement) error

// authorIdValid ensures that the author id is not empty.
func (ev *eventValidator) authorIdValid(event *domain.EventAnnouncement) error {
	if event.AuthorID <= 0 {
		return errs.Errorf(errs.EINVALID, "Author ID is required.")
	}
	return nil
}

// subjectValid makes sure the event subject is not blank and not over 70 characters.
func (ev *eventValidator) subjectValid(event *domain.EventAnnouncement) error {
	if strings.TrimSpace(event.EventSubject) == "" {
		return errs.Errorf(errs.EINVALID, "Event subject must be at least one character long.")
	}
	if utf8.RuneCountInString(event.EventSubject) > 70 {
		return errs.Errorf(errs.EINVALID, "Event subject must be no more than 70 characters.")
	}
	return nil
}

// locationValid makes sure the event location is not blank and not over 70 characters.
func (ev *eventValidator) locationValid(event *domain.EventAnnouncement) error {
	if strings.TrimSpace(event.EventLocation) == "" {
		return errs.Errorf(errs.EINVALID, "Event location must be at least one character long.")
	}
	if utf8.RuneCountInString(event.EventLocation) > 70 {
		return errs.Errorf(errs.EINVALID, "Event location must be no more than 70 characters.")
	}
	return nil
}

// dateValid makes sure the event date is present and not in the past.
func (ev *eventValidator) dateValid(event *domain.EventAnnouncement) error {
	if event.EventDate.IsZero() {
		return errs.Errorf(errs.EINVALID, "You must provide a date and time for an event.")
	}
	if event.EventDate.Before(time.Now()) {
		return errs.Errorf(errs.EINVALID, "The date for an event cannot be in the past.")
	}
	return nil
}

// descriptionValid makes sure the event description is not blank and not over
// 140 characters. The description becomes the content of the underlying
// Freet, so the limits match the freet content rules.
func (ev *eventValidator) descriptionValid(description string) error {
	if strings.TrimSpace(description) == "" {
		return errs.Errorf(errs.EINVALID, "Event description must be at least one character long.")
	}
	if utf8.RuneCountInString(description) > 140 {
		return errs.Errorf(errs.EINVALID, "Event description must be no more than 140 characters.")
	}
	return nil
}

// ByID retrieves a single event by ID.
func (eg *eventGorm) ByID(id int) (*domain.EventAnnouncement, error) {
	var event domain.EventAnnouncement
	err := eg.db.First(&event, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Event with event ID %d does not exist.", id)
		} else {
			return nil, err
		}
	}
	return &event, nil
}

// ByFreetID retrieves the event backed by the given freet, or nil if the
// freet is not associated with any event. The guard blocking direct edits
// and deletes of event-backed freets calls this.
func (eg *eventGorm) ByFreetID(freetId int) (*domain.EventAnnouncement, error) {
	var event domain.EventAnnouncement
	err := eg.db.First(&event, "freet_id = ?", freetId).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// All retrieves all events, sorted from most to least recently modified.
// Cancelling counts as a modification, so a freshly cancelled event moves
// to the top of the listing.
func (eg *eventGorm) All() ([]domain.EventAnnouncement, error) {
	var events []domain.EventAnnouncement
	err := eg.db.Order("date_modified desc").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ByUsername retrieves all events authored by the user with the given
// username. The username is resolved against the user table first, so an
// unknown username reads as ENOTFOUND rather than an empty list.
func (eg *eventGorm) ByUsername(username string) ([]domain.EventAnnouncement, error) {
	var author domain.User
	err := eg.db.First(&author, "username = ?", username).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "A user with username %s does not exist.", username)
		} else {
			return nil, err
		}
	}
	var events []domain.EventAnnouncement
	err = eg.db.Where("author_id = ?", author.ID).Order("date_modified desc").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// CreateEvent creates the underlying Freet and the event record referencing
// it in one transaction, so a fault in either step leaves no orphan freet.
func (eg *eventGorm) CreateEvent(event *domain.EventAnnouncement, description string) error {
	return eg.db.Transaction(func(tx *gorm.DB) error {
		freet := domain.Freet{
			AuthorID: event.AuthorID,
			Content:  description,
		}
		if err := tx.Create(&freet).Error; err != nil {
			return err
		}
		event.FreetID = freet.ID
		event.Cancelled = false
		event.DateModified = time.Now()
		return tx.Create(event).Error
	})
}

// CancelEvent sets the event's cancelled flag and refreshes its modification
// date. Cancelling an already cancelled event rewrites the row and succeeds;
// no other field is touched either way.
func (eg *eventGorm) CancelEvent(id int) (*domain.EventAnnouncement, error) {
	event, err := eg.ByID(id)
	if err != nil {
		return nil, err
	}
	event.Cancelled = true
	event.DateModified = time.Now()
	err = eg.db.Model(event).
		Select("cancelled", "date_modified").
		Updates(map[string]interface{}{
			"cancelled":     event.Cancelled,
			"date_modified": event.DateModified,
		}).Error
	if err != nil {
		return nil, err
	}
	return event, nil
}

// CancelAllByAuthor cancels every event of an author, one event at a time.
// A fault partway through leaves the remaining events active; re-invoking
// completes the rest, since per-event cancellation is idempotent.
func (eg *eventGorm) CancelAllByAuthor(authorId int) error {
	var ids []int
	err := eg.db.Model(&domain.EventAnnouncement{}).Where("author_id = ?", authorId).Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := eg.CancelEvent(id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllByAuthor deletes all events of an author. This is the only way an
// event row ever leaves the database, and only the account-deletion cascade
// uses it.
func (eg *eventGorm) DeleteAllByAuthor(authorId int) error {
	return deleteEventsByAuthor(eg.db, authorId)
}

// deleteEventsByAuthor runs on a handle that may be a transaction, so the
// account-deletion cascade shares it with DeleteAllByAuthor.
func deleteEventsByAuthor(db *gorm.DB, authorId int) error {
	return db.Delete(&domain.EventAnnouncement{}, "author_id = ?", authorId).Error
}
