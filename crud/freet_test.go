package crud

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fritter/domain"
	"fritter/errs"
)

func TestFreetService_CreateFreet(t *testing.T) {
	db := testDB(t)
	fs := NewFreetService(db)
	user := createTestUser(t, db, "alice")

	freet := domain.Freet{AuthorID: user.ID, Content: "hello world"}
	require.NoError(t, fs.CreateFreet(&freet))
	assert.NotZero(t, freet.ID)
}

func TestFreetService_CreateFreet_ContentRules(t *testing.T) {
	db := testDB(t)
	fs := NewFreetService(db)
	user := createTestUser(t, db, "alice")

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"blank", "   \t  "},
		{"too long", strings.Repeat("a", 141)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fs.CreateFreet(&domain.Freet{AuthorID: user.ID, Content: tt.content})
			require.Error(t, err)
			assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
		})
	}

	// 140 characters is still fine. The limit counts runes, not bytes.
	freet := domain.Freet{AuthorID: user.ID, Content: strings.Repeat("ä", 140)}
	assert.NoError(t, fs.CreateFreet(&freet))
}

func TestFreetService_UpdateFreet(t *testing.T) {
	db := testDB(t)
	fs := NewFreetService(db)
	user := createTestUser(t, db, "alice")
	freet := createTestFreet(t, db, user.ID, "original")

	freet.Content = "edited"
	require.NoError(t, fs.UpdateFreet(freet))

	found, err := fs.ByID(freet.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", found.Content)

	freet.Content = ""
	err = fs.UpdateFreet(freet)
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
}

func TestFreetService_ByID_NotFound(t *testing.T) {
	db := testDB(t)
	fs := NewFreetService(db)

	_, err := fs.ByID(999)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestFreetService_ByUsername(t *testing.T) {
	db := testDB(t)
	fs := NewFreetService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	createTestFreet(t, db, alice.ID, "alice's freet")
	createTestFreet(t, db, bob.ID, "bob's freet")

	freets, err := fs.ByUsername("alice")
	require.NoError(t, err)
	require.Len(t, freets, 1)
	assert.Equal(t, "alice's freet", freets[0].Content)

	_, err = fs.ByUsername("nobody")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

// Deleting a freet takes every bookmark and like referencing it along, while
// relations on other freets survive.
func TestFreetService_DeleteFreet_CascadesRelations(t *testing.T) {
	db := testDB(t)
	fs := NewFreetService(db)
	bs := NewBookmarkService(db)
	ls := NewLikeService(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	doomed := createTestFreet(t, db, alice.ID, "doomed")
	survivor := createTestFreet(t, db, alice.ID, "survivor")

	require.NoError(t, bs.Create(&domain.Bookmark{UserID: bob.ID, FreetID: doomed.ID}))
	require.NoError(t, ls.Create(&domain.Like{UserID: bob.ID, FreetID: doomed.ID}))
	require.NoError(t, bs.Create(&domain.Bookmark{UserID: bob.ID, FreetID: survivor.ID}))

	require.NoError(t, fs.DeleteFreet(doomed))

	_, err := fs.ByID(doomed.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	bookmarks, err := bs.All()
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, survivor.ID, bookmarks[0].FreetID)

	likes, err := ls.All()
	require.NoError(t, err)
	assert.Empty(t, likes)
}
