package crud

import (
	"gorm.io/gorm"

	"fritter/domain"
	"fritter/errs"
)

// ReaderModeService manages ReaderMode records.
// It implements the domain.ReaderModeService interface.
type ReaderModeService struct {
	readerModeGorm
}

// readerModeGorm runs CRUD operations on the database using incoming
// ReaderMode data. There is no validator layer: the only inputs are user ids
// the http layer has already resolved from a session.
type readerModeGorm struct {
	db *gorm.DB
}

// NewReaderModeService returns an instance of ReaderModeService.
func NewReaderModeService(db *gorm.DB) *ReaderModeService {
	return &ReaderModeService{
		readerModeGorm{
			db: db,
		},
	}
}

// Ensure the ReaderModeService struct properly implements the domain.ReaderModeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.ReaderModeService = &ReaderModeService{}

// ByUserID retrieves a user's ReaderMode record. Users created before the
// reader mode subsystem existed may have no record; callers reading the flag
// must treat ENOTFOUND as "not in reader mode".
func (rg *readerModeGorm) ByUserID(userId int) (*domain.ReaderMode, error) {
	var readerMode domain.ReaderMode
	err := rg.db.First(&readerMode, "user_id = ?", userId).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "No reader mode record exists for user ID %d.", userId)
		} else {
			return nil, err
		}
	}
	return &readerMode, nil
}

// Create adds a user's ReaderMode record, off by default.
// The unique index on user_id keeps a user from ever having two.
func (rg *readerModeGorm) Create(userId int) (*domain.ReaderMode, error) {
	return createReaderMode(rg.db, userId)
}

// Enter turns reader mode on for a user. Re-entering an already active
// reader mode rewrites the row and succeeds.
func (rg *readerModeGorm) Enter(userId int) (*domain.ReaderMode, error) {
	return rg.set(userId, true)
}

// Exit turns reader mode off for a user. Exiting an already inactive
// reader mode rewrites the row and succeeds.
func (rg *readerModeGorm) Exit(userId int) (*domain.ReaderMode, error) {
	return rg.set(userId, false)
}

func (rg *readerModeGorm) set(userId int, inReaderMode bool) (*domain.ReaderMode, error) {
	readerMode, err := rg.ByUserID(userId)
	if err != nil {
		return nil, err
	}
	readerMode.InReaderMode = inReaderMode
	if err := rg.db.Save(readerMode).Error; err != nil {
		return nil, err
	}
	return readerMode, nil
}

// DeleteAllByUser deletes a user's ReaderMode record (there is only ever
// one). Used by the account-deletion cascade.
func (rg *readerModeGorm) DeleteAllByUser(userId int) error {
	return deleteReaderModeByUser(rg.db, userId)
}

// createReaderMode and deleteReaderModeByUser run on a handle that may be a
// transaction; the user creation and deletion cascades share them with the
// service methods.

func createReaderMode(db *gorm.DB, userId int) (*domain.ReaderMode, error) {
	readerMode := domain.ReaderMode{
		UserID:       userId,
		InReaderMode: false,
	}
	if err := db.Create(&readerMode).Error; err != nil {
		return nil, err
	}
	return &readerMode, nil
}

func deleteReaderModeByUser(db *gorm.DB, userId int) error {
	return db.Delete(&domain.ReaderMode{}, "user_id = ?", userId).Error
}
