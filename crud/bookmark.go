package crud

import (
	"errors"

	"gorm.io/gorm"

	"fritter/domain"
	"fritter/errs"
)

// BookmarkService manages Bookmarks.
// It implements the domain.BookmarkService interface.
type BookmarkService struct {
	bookmarkValidator
}

// bookmarkValidator runs validations on incoming Bookmark data.
// On success, it passes the data on to bookmarkGorm.
// Otherwise, it returns the error of the validation that has failed.
type bookmarkValidator struct {
	bookmarkGorm
}

// bookmarkGorm runs CRUD operations on the database using incoming Bookmark data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type bookmarkGorm struct {
	db *gorm.DB
}

// NewBookmarkService returns an instance of BookmarkService.
func NewBookmarkService(db *gorm.DB) *BookmarkService {
	return &BookmarkService{
		bookmarkValidator{
			bookmarkGorm{
				db: db,
			},
		},
	}
}

// Ensure the BookmarkService struct properly implements the domain.BookmarkService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.BookmarkService = &BookmarkService{}

// Create runs validations needed for creating new Bookmark database records.
// The duplicate pre-check returns a typed conflict error; the composite
// unique index catches the remaining race window.
func (bv *bookmarkValidator) Create(bookmark *domain.Bookmark) error {
	err := runBookmarkValFns(bookmark,
		bv.userIdValid,
		bv.bookmarkedFreetExists,
		bv.notAlreadyBookmarked)
	if err != nil {
		return err
	}
	return bv.bookmarkGorm.Create(bookmark)
}

// runBookmarkValFns runs any number of functions of type bookmarkValFn on the passed in Bookmark object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runBookmarkValFns(bookmark *domain.Bookmark, fns ...bookmarkValFn) error {
	for _, fn := range fns {
		if err := fn(bookmark); err != nil {
			return err
		}
	}
	return nil
}

// A bookmarkValFn is any function that takes in a pointer to a domain.Bookmark object and returns an error.
type bookmarkValFn func(bookmark *domain.Bookmark) error

// bookmarkedFreetExists makes sure that the freet to be bookmarked actually exists.
func (bv *bookmarkValidator) bookmarkedFreetExists(bookmark *domain.Bookmark) error {
	err := bv.db.First(&domain.Freet{}, "id = ?", bookmark.FreetID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "Freet with freet ID %d does not exist.", bookmark.FreetID)
		} else {
			return err
		}
	}
	return nil
}

// notAlreadyBookmarked makes sure that the user doesn't already bookmark the freet.
func (bv *bookmarkValidator) notAlreadyBookmarked(bookmark *domain.Bookmark) error {
	var existing domain.Bookmark
	err := bv.db.First(&existing, "user_id = ? AND freet_id = ?", bookmark.UserID, bookmark.FreetID).Error
	if err == nil {
		return errs.Errorf(errs.ECONFLICT, "You already bookmarked that freet.")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	return nil
}

// userIdValid ensures that the userId is not empty.
func (bv *bookmarkValidator) userIdValid(bookmark *domain.Bookmark) error {
	if bookmark.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "User ID is required.")
	}
	return nil
}

// ByID retrieves a single Bookmark by ID.
func (bg *bookmarkGorm) ByID(id int) (*domain.Bookmark, error) {
	var bookmark domain.Bookmark
	err := bg.db.First(&bookmark, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Bookmark with bookmark ID %d does not exist.", id)
		} else {
			return nil, err
		}
	}
	return &bookmark, nil
}

// All retrieves all bookmarks, in no particular order.
func (bg *bookmarkGorm) All() ([]domain.Bookmark, error) {
	var bookmarks []domain.Bookmark
	err := bg.db.Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// ByUsername retrieves all bookmarks of the user with the given username.
// The username is resolved against the user table first, so an unknown
// username reads as ENOTFOUND rather than an empty list.
func (bg *bookmarkGorm) ByUsername(username string) ([]domain.Bookmark, error) {
	var owner domain.User
	err := bg.db.First(&owner, "username = ?", username).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "A user with username %s does not exist.", username)
		} else {
			return nil, err
		}
	}
	var bookmarks []domain.Bookmark
	err = bg.db.Where("user_id = ?", owner.ID).Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// Create stores the data from the Bookmark object in a new database record.
// A duplicate insert slipping past the validator's pre-check is rejected by
// the unique index and reported as the same conflict error.
func (bg *bookmarkGorm) Create(bookmark *domain.Bookmark) error {
	err := bg.db.Create(bookmark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Errorf(errs.ECONFLICT, "You already bookmarked that freet.")
		}
		return err
	}
	return nil
}

// Delete permanently deletes the bookmark record with the given ID.
// It reports success even if no record matched; callers that care about
// existence must check beforehand.
func (bg *bookmarkGorm) Delete(id int) error {
	return bg.db.Delete(&domain.Bookmark{}, "id = ?", id).Error
}

// DeleteAllByUser deletes all bookmarks of a user.
// Used by the account-deletion cascade.
func (bg *bookmarkGorm) DeleteAllByUser(userId int) error {
	return deleteBookmarksByUser(bg.db, userId)
}

// DeleteAllByFreet deletes all bookmarks referencing a freet.
// Used by the freet-deletion cascade.
func (bg *bookmarkGorm) DeleteAllByFreet(freetId int) error {
	return deleteBookmarksByFreet(bg.db, freetId)
}

// The bulk deletes are plain functions over a handle that may be a
// transaction, so the user and freet deletion cascades run the exact same
// statements as the service methods.

func deleteBookmarksByUser(db *gorm.DB, userId int) error {
	return db.Delete(&domain.Bookmark{}, "user_id = ?", userId).Error
}

func deleteBookmarksByFreet(db *gorm.DB, freetId int) error {
	return db.Delete(&domain.Bookmark{}, "freet_id = ?", freetId).Error
}

func deleteBookmarksByFreets(db *gorm.DB, freetIds []int) error {
	if len(freetIds) == 0 {
		return nil
	}
	return db.Delete(&domain.Bookmark{}, "freet_id IN ?", freetIds).Error
}
