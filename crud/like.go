package crud

import (
	"errors"

	"gorm.io/gorm"

	"fritter/domain"
	"fritter/errs"
)

// LikeService manages Likes.
// It implements the domain.LikeService interface.
type LikeService struct {
	likeValidator
}

// likeValidator runs validations on incoming Like data.
// On success, it passes the data on to likeGorm.
// Otherwise, it returns the error of the validation that has failed.
type likeValidator struct {
	likeGorm
}

// likeGorm runs CRUD operations on the database using incoming Like data.
// It assumes that data has been validated. On success, it returns nil.
// Otherwise, it returns the error of the operation that has failed.
type likeGorm struct {
	db *gorm.DB
}

// NewLikeService returns an instance of LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{
		likeValidator{
			likeGorm{
				db: db,
			},
		},
	}
}

// Ensure the LikeService struct properly implements the domain.LikeService interface.
// If it does not, then this expression becomes invalid and won't compile.
var _ domain.LikeService = &LikeService{}

// Create runs validations needed for creating new Like database records.
// The duplicate pre-check returns a typed conflict error; the composite
// unique index catches the remaining race window. A Bookmark for the same
// (user, freet) pair does not conflict with a Like.
func (lv *likeValidator) Create(like *domain.Like) error {
	err := runLikeValFns(like,
		lv.userIdValid,
		lv.likedFreetExists,
		lv.notAlreadyLiked)
	if err != nil {
		return err
	}
	return lv.likeGorm.Create(like)
}

// runLikeValFns runs any number of functions of type likeValFn on the passed in Like object.
// If none of them returns an error, it returns nil. Otherwise, it returns the respective error.
func runLikeValFns(like *domain.Like, fns ...likeValFn) error {
	for _, fn := range fns {
		if err := fn(like); err != nil {
			return err
		}
	}
	return nil
}

// A likeValFn is any function that takes in a pointer to a domain.Like object and returns an error.
type likeValFn func(like *domain.Like) error

// likedFreetExists makes sure that the freet to be liked actually exists.
func (lv *likeValidator) likedFreetExists(like *domain.Like) error {
	err := lv.db.First(&domain.Freet{}, "id = ?", like.FreetID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errs.Errorf(errs.ENOTFOUND, "Freet with freet ID %d does not exist.", like.FreetID)
		} else {
			return err
		}
	}
	return nil
}

// notAlreadyLiked makes sure that the user doesn't already like the freet.
func (lv *likeValidator) notAlreadyLiked(like *domain.Like) error {
	var existing domain.Like
	err := lv.db.First(&existing, "user_id = ? AND freet_id = ?", like.UserID, like.FreetID).Error
	if err == nil {
		return errs.Errorf(errs.ECONFLICT, "You already like that freet.")
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	return nil
}

// userIdValid ensures that the userId is not empty.
func (lv *likeValidator) userIdValid(like *domain.Like) error {
	if like.UserID <= 0 {
		return errs.Errorf(errs.EINVALID, "User ID is required.")
	}
	return nil
}

// ByID retrieves a single Like by ID.
func (lg *likeGorm) ByID(id int) (*domain.Like, error) {
	var like domain.Like
	err := lg.db.First(&like, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "Like with like ID %d does not exist.", id)
		} else {
			return nil, err
		}
	}
	return &like, nil
}

// All retrieves all likes, in no particular order.
func (lg *likeGorm) All() ([]domain.Like, error) {
	var likes []domain.Like
	err := lg.db.Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// ByUsername retrieves all likes of the user with the given username.
// The username is resolved against the user table first, so an unknown
// username reads as ENOTFOUND rather than an empty list.
func (lg *likeGorm) ByUsername(username string) ([]domain.Like, error) {
	var owner domain.User
	err := lg.db.First(&owner, "username = ?", username).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.Errorf(errs.ENOTFOUND, "A user with username %s does not exist.", username)
		} else {
			return nil, err
		}
	}
	var likes []domain.Like
	err = lg.db.Where("user_id = ?", owner.ID).Find(&likes).Error
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// Create stores the data from the Like object in a new database record.
// A duplicate insert slipping past the validator's pre-check is rejected by
// the unique index and reported as the same conflict error.
func (lg *likeGorm) Create(like *domain.Like) error {
	err := lg.db.Create(like).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.Errorf(errs.ECONFLICT, "You already like that freet.")
		}
		return err
	}
	return nil
}

// Delete permanently deletes the like record with the given ID.
// It reports success even if no record matched; callers that care about
// existence must check beforehand.
func (lg *likeGorm) Delete(id int) error {
	return lg.db.Delete(&domain.Like{}, "id = ?", id).Error
}

// DeleteAllByUser deletes all likes of a user.
// Used by the account-deletion cascade.
func (lg *likeGorm) DeleteAllByUser(userId int) error {
	return deleteLikesByUser(lg.db, userId)
}

// DeleteAllByFreet deletes all likes referencing a freet.
// Used by the freet-deletion cascade.
func (lg *likeGorm) DeleteAllByFreet(freetId int) error {
	return deleteLikesByFreet(lg.db, freetId)
}

// The bulk deletes are plain functions over a handle that may be a
// transaction, shared between the service methods and the cascades.

func deleteLikesByUser(db *gorm.DB, userId int) error {
	return db.Delete(&domain.Like{}, "user_id = ?", userId).Error
}

func deleteLikesByFreet(db *gorm.DB, freetId int) error {
	return db.Delete(&domain.Like{}, "freet_id = ?", freetId).Error
}

func deleteLikesByFreets(db *gorm.DB, freetIds []int) error {
	if len(freetIds) == 0 {
		return nil
	}
	return db.Delete(&domain.Like{}, "freet_id IN ?", freetIds).Error
}

// CountByFreet counts the likes referencing a freet.
func (lg *likeGorm) CountByFreet(freetId int) (int, error) {
	var count int64
	err := lg.db.Model(&domain.Like{}).Where("freet_id = ?", freetId).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountByFreets counts the likes for a whole set of freets in a single query.
// Freets with no likes are reported with a zero count, so the result always
// has one entry per requested id.
func (lg *likeGorm) CountByFreets(freetIds []int) (map[int]int, error) {
	counts := make(map[int]int, len(freetIds))
	for _, id := range freetIds {
		counts[id] = 0
	}
	if len(freetIds) == 0 {
		return counts, nil
	}
	rows := []struct {
		FreetID int
		Count   int
	}{}
	err := lg.db.Model(&domain.Like{}).
		Select("freet_id, count(*) as count").
		Where("freet_id IN ?", freetIds).
		Group("freet_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.FreetID] = row.Count
	}
	return counts, nil
}
