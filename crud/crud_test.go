package crud

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fritter/domain"
)

// testDB opens a fresh in-memory database named after the test, so every test
// gets its own isolated schema. TranslateError lets the gorm layers match on
// gorm.ErrDuplicatedKey the same way they do against postgres.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Freet{},
		&domain.Bookmark{},
		&domain.Like{},
		&domain.EventAnnouncement{},
		&domain.ReaderMode{}))
	return db
}

// createTestUser inserts a user record directly, bypassing the validator
// chain. Tests that exercise CreateUser itself call the service instead.
func createTestUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := domain.User{
		Username:     username,
		PasswordHash: "not-a-real-hash",
		RememberHash: "remember-" + username,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// createTestFreet inserts a freet record directly.
func createTestFreet(t *testing.T, db *gorm.DB, authorId int, content string) *domain.Freet {
	t.Helper()
	freet := domain.Freet{
		AuthorID: authorId,
		Content:  content,
	}
	require.NoError(t, db.Create(&freet).Error)
	return &freet
}
