package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fritter/errs"
)

func TestReaderModeService_EnterExit(t *testing.T) {
	db := testDB(t)
	rms := NewReaderModeService(db)
	user := createTestUser(t, db, "alice")

	created, err := rms.Create(user.ID)
	require.NoError(t, err)
	assert.False(t, created.InReaderMode)

	entered, err := rms.Enter(user.ID)
	require.NoError(t, err)
	assert.True(t, entered.InReaderMode)

	// Entering twice in a row is fine.
	entered, err = rms.Enter(user.ID)
	require.NoError(t, err)
	assert.True(t, entered.InReaderMode)

	exited, err := rms.Exit(user.ID)
	require.NoError(t, err)
	assert.False(t, exited.InReaderMode)

	// So is exiting twice.
	exited, err = rms.Exit(user.ID)
	require.NoError(t, err)
	assert.False(t, exited.InReaderMode)
}

func TestReaderModeService_ByUserID_Missing(t *testing.T) {
	db := testDB(t)
	rms := NewReaderModeService(db)

	_, err := rms.ByUserID(999)
	require.Error(t, err)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}

func TestReaderModeService_DeleteAllByUser(t *testing.T) {
	db := testDB(t)
	rms := NewReaderModeService(db)
	user := createTestUser(t, db, "alice")

	_, err := rms.Create(user.ID)
	require.NoError(t, err)

	require.NoError(t, rms.DeleteAllByUser(user.ID))

	_, err = rms.ByUserID(user.ID)
	assert.Equal(t, errs.ENOTFOUND, errs.ErrorCode(err))
}
