package crud

import (
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"fritter/domain"
	"fritter/errs"
)

// FreetService manages Freets.
// It implements the domain.FreetService interface.
type FreetService struct {
	freetValidator
}

// freetValidator runs validations on incoming Freet data.
// On success, it passes the data on to freetGorm.
// Otherwise, it returns the error of the validation that has failed.
type freetValidator struct {
	freetGorm
}

// freetGorm runs CRUD operations on the database using incoming Freet data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type freetGorm struct {
	db *gorm.DB
}

// NewFreetService returns an instance of FreetService.
func NewFreetService(db *gorm.DB) *FreetService {
	return &FreetService{
		freetValidator{
			freetGorm{
				db: db,
			},
		},
	}
}

// Ensure the FreetService struct properly implements the domain.FreetService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.FreetService = &FreetService{}

// CreateFreet runs validations needed for creating new Freet database records.
func (fv *freetValidator) CreateFreet(freet *domain.Freet) error {
	err := runFreetValFns(freet,
		fv.authorIdValid,
		fv.contentMinLength,
		fv.contentMaxLength)
	if err != nil {
		return err
	}
	return fv.freetGorm.CreateFreet(freet)
}

// UpdateFreet runs validations needed for updating existing Freet database records.
// Only the content of a freet can change.
func (fv *freetValidator) UpdateFreet(freet *domain.Freet) error {
	err := runFreetValFns(freet,
		fv.idValid,
		fv.contentMinLength,
		fv.contentMaxLength)
	if err != nil {
		return err
	}
	return fv.freetGorm.UpdateFreet(freet)
}

// DeleteFreet runs validations needed for deleting existing Freet database records.
func (fv *freetValidator) DeleteFreet(freet *domain.Freet) error {
	err := runFreetValFns(freet, fv.idValid)
	if err != nil {
		return err
	}
	return fv.freetGorm.DeleteFreet(freet)
}

// runFreetValFns runs any number of functions of type freetValFn on the passed in Freet object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runFreetValFns(freet *domain.Freet, fns ...freetValFn) error {
	for _, fn := range fns {
		if err := fn(freet); err != nil {
			return err
		}
	}
	return nil
}

// A freetValFn is any function that takes in a pointer to a domain.Freet object and returns an error.
type freetValFn = func(freet *domain.Freet) error

// contentMinLength makes sure that the Freet's content is not blank.
func (fv *freetValidator) contentMinLength(freet *domain.Freet) error {
	if strings.TrimSpace(freet.Content) == "" {
		return errs.Errorf(errs.EINVALID, "Freet content must be at least one character long.")
	}
	return nil
}

// contentMaxLength makes sure that the Freet's content does not exceed the maximum content length.
func (fv *freetValidator) contentMaxLength(freet *domain.Freet) error {
	if utf8.RuneCountInString(freet.Content) > 140 {
		return errs.Errorf(errs.EINVALID, "Freet content must be no more than 140 characters.")
	}
	return nil
}

// idValid makes sure that the passed in ID of a Freet is greater than 0.
func (fv *freetValidator) idValid(freet *domain.Freet) error {
	if freet.ID <= 0 {
		return errs.Errorf(errs.EINVALID, "Freet ID is invalid.")
	}
	return nil
}

// authorIdValid ensures that the author id is not empty.
func (fv *freetValidator) authorIdValid(freet *domain.Freet) error {
	if freet.AuthorID <= 0 {
		return errs.Errorf(errs.EINVALID, "Author ID is required.")
	}
	return nil
}

// ByID retrieves a single Freet by ID.
// If the record doesn't exist, it returns errs.ENOTFOUND.
func (fg *freetGorm) ByID(id int) (*domain.Freet, error) {
	var freet domain.Freet
	err := fg.db.First(&freet, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Freet with freet ID %d does not exist.", id)
		} else {
			return nil, err
		}
	}
	return &freet, nil
}

// All retrieves all freets, newest first.
func (fg *freetGorm) All() ([]domain.Freet, error) {
	var freets []domain.Freet
	err := fg.db.Order("created_at desc").Find(&freets).Error
	if err != nil {
		return nil, err
	}
	return freets, nil
}

// ByUsername retrieves all freets authored by the user with the given
// username, newest first. The username is resolved against the user table
// first, so an unknown username reads as ENOTFOUND rather than an empty list.
func (fg *freetGorm) ByUsername(username string) ([]domain.Freet, error) {
	var author domain.User
	err := fg.db.First(&author, "username = ?", username).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "A user with username %s does not exist.", username)
		} else {
			return nil, err
		}
	}
	var freets []domain.Freet
	err = fg.db.Where("author_id = ?", author.ID).Order("created_at desc").Find(&freets).Error
	if err != nil {
		return nil, err
	}
	return freets, nil
}

// CreateFreet stores the data from the Freet object in a new database record.
func (fg *freetGorm) CreateFreet(freet *domain.Freet) error {
	if err := fg.db.Create(freet).Error; err != nil {
		return err
	}
	return nil
}

// UpdateFreet saves the Freet's new content.
func (fg *freetGorm) UpdateFreet(freet *domain.Freet) error {
	return fg.db.Save(freet).Error
}

// DeleteFreet deletes a Freet record from the database, along with all
// bookmarks and likes referencing it, in one transaction.
func (fg *freetGorm) DeleteFreet(freet *domain.Freet) error {
	return fg.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteBookmarksByFreet(tx, freet.ID); err != nil {
			return err
		}
		if err := deleteLikesByFreet(tx, freet.ID); err != nil {
			return err
		}
		return tx.Delete(freet, "id = ?", freet.ID).Error
	})
}
