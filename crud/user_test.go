package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fritter/domain"
	"fritter/errs"
)

func TestUserService_CreateUser(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	rms := NewReaderModeService(db)
	ctx := context.Background()

	user := domain.User{Username: "alice", Password: "secretpassword"}
	require.NoError(t, us.CreateUser(ctx, &user))

	// The plaintext password is cleared, only the bcrypt hash persists.
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEmpty(t, user.RememberHash)

	// Every new user gets a reader mode record, off by default.
	readerMode, err := rms.ByUserID(user.ID)
	require.NoError(t, err)
	assert.False(t, readerMode.InReaderMode)
}

func TestUserService_CreateUser_Validations(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ctx := context.Background()

	require.NoError(t, us.CreateUser(ctx, &domain.User{Username: "alice", Password: "secretpassword"}))

	tests := []struct {
		name string
		user domain.User
		code string
	}{
		{"taken username", domain.User{Username: "alice", Password: "secretpassword"}, errs.ECONFLICT},
		{"empty username", domain.User{Username: "   ", Password: "secretpassword"}, errs.EINVALID},
		{"bad username format", domain.User{Username: "al ice!", Password: "secretpassword"}, errs.EINVALID},
		{"missing password", domain.User{Username: "bob"}, errs.EINVALID},
		{"short password", domain.User{Username: "bob", Password: "short"}, errs.EINVALID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			err := us.CreateUser(ctx, &user)
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.ErrorCode(err))
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ctx := context.Background()

	require.NoError(t, us.CreateUser(ctx, &domain.User{Username: "alice", Password: "secretpassword"}))

	user, err := us.Authenticate("alice", "secretpassword")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = us.Authenticate("alice", "wrongpassword")
	require.Error(t, err)
	assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))

	_, err = us.Authenticate("nobody", "secretpassword")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestUserService_ByRemember(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	ctx := context.Background()

	user := domain.User{Username: "alice", Password: "secretpassword"}
	require.NoError(t, us.CreateUser(ctx, &user))

	// ByRemember takes the raw token and hashes it internally.
	found, err := us.ByRemember(user.Remember)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = us.ByRemember("bogus-token")
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

// Deleting an account takes everything the user owns with it, including the
// relations other users attached to the deleted freets. Records owned by
// other users stay untouched.
func TestUserService_DeleteUser_Cascade(t *testing.T) {
	db := testDB(t)
	us := NewUserService(db, "test-pepper", "test-hmac-key")
	fs := NewFreetService(db)
	bs := NewBookmarkService(db)
	ls := NewLikeService(db)
	es := NewEventService(db)
	rms := NewReaderModeService(db)
	ctx := context.Background()

	alice := domain.User{Username: "alice", Password: "secretpassword"}
	require.NoError(t, us.CreateUser(ctx, &alice))
	bob := domain.User{Username: "bob", Password: "secretpassword"}
	require.NoError(t, us.CreateUser(ctx, &bob))

	aliceFreet := createTestFreet(t, db, alice.ID, "alice's freet")
	bobFreet := createTestFreet(t, db, bob.ID, "bob's freet")
	aliceEvent := newTestEvent(alice.ID)
	require.NoError(t, es.CreateEvent(&aliceEvent, "alice's event"))

	// Bob interacts with alice's freet, alice interacts with bob's.
	require.NoError(t, bs.Create(&domain.Bookmark{UserID: bob.ID, FreetID: aliceFreet.ID}))
	require.NoError(t, ls.Create(&domain.Like{UserID: bob.ID, FreetID: aliceFreet.ID}))
	require.NoError(t, bs.Create(&domain.Bookmark{UserID: alice.ID, FreetID: bobFreet.ID}))
	require.NoError(t, ls.Create(&domain.Like{UserID: alice.ID, FreetID: bobFreet.ID}))

	require.NoError(t, us.DeleteUser(ctx, alice.ID))

	_, err := us.ByID(alice.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = fs.ByID(aliceFreet.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = es.ByID(aliceEvent.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
	_, err = rms.ByUserID(alice.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))

	// Nothing of alice's remains in the relation tables, not even bob's
	// bookmark and like on her freet.
	bookmarks, err := bs.All()
	require.NoError(t, err)
	assert.Empty(t, bookmarks)
	likes, err := ls.All()
	require.NoError(t, err)
	assert.Empty(t, likes)

	// Bob and his freet survive.
	_, err = us.ByID(bob.ID)
	assert.NoError(t, err)
	_, err = fs.ByID(bobFreet.ID)
	assert.NoError(t, err)
}
