package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fritter/domain"
	"fritter/errs"
)

func TestLikeService_Create_Duplicate(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	user := createTestUser(t, db, "alice")
	freet := createTestFreet(t, db, user.ID, "hello world")

	require.NoError(t, ls.Create(&domain.Like{UserID: user.ID, FreetID: freet.ID}))

	err := ls.Create(&domain.Like{UserID: user.ID, FreetID: freet.ID})
	require.Error(t, err)
	assert.Equal(t, errs.ECONFLICT, errs.ErrorCode(err))
	assert.Equal(t, "You already like that freet.", errs.ErrorMessage(err))
}

func TestLikeService_Create_MissingFreet(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	user := createTestUser(t, db, "alice")

	err := ls.Create(&domain.Like{UserID: user.ID, FreetID: 999})
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestLikeService_CountByFreet(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")
	freet := createTestFreet(t, db, alice.ID, "popular freet")

	count, err := ls.CountByFreet(freet.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, ls.Create(&domain.Like{UserID: bob.ID, FreetID: freet.ID}))
	require.NoError(t, ls.Create(&domain.Like{UserID: carol.ID, FreetID: freet.ID}))

	count, err = ls.CountByFreet(freet.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLikeService_CountByFreets(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	liked := createTestFreet(t, db, alice.ID, "liked")
	unliked := createTestFreet(t, db, alice.ID, "unliked")

	require.NoError(t, ls.Create(&domain.Like{UserID: alice.ID, FreetID: liked.ID}))
	require.NoError(t, ls.Create(&domain.Like{UserID: bob.ID, FreetID: liked.ID}))

	counts, err := ls.CountByFreets([]int{liked.ID, unliked.ID})
	require.NoError(t, err)

	// Every requested freet gets an entry, including the ones with no likes.
	require.Len(t, counts, 2)
	assert.Equal(t, 2, counts[liked.ID])
	assert.Equal(t, 0, counts[unliked.ID])
}

func TestLikeService_CountByFreets_Empty(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)

	counts, err := ls.CountByFreets(nil)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestLikeService_ByUsername(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	freet := createTestFreet(t, db, bob.ID, "bob's freet")

	require.NoError(t, ls.Create(&domain.Like{UserID: alice.ID, FreetID: freet.ID}))

	likes, err := ls.ByUsername("alice")
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, freet.ID, likes[0].FreetID)

	_, err = ls.ByUsername("nobody")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestLikeService_Delete(t *testing.T) {
	db := testDB(t)
	ls := NewLikeService(db)
	user := createTestUser(t, db, "alice")
	freet := createTestFreet(t, db, user.ID, "a freet")

	like := domain.Like{UserID: user.ID, FreetID: freet.ID}
	require.NoError(t, ls.Create(&like))
	require.NoError(t, ls.Delete(like.ID))

	_, err := ls.ByID(like.ID)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	// Unliking the freet again is a successful no-op.
	assert.NoError(t, ls.Delete(like.ID))
}
