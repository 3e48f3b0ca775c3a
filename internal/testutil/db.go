package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"santara.dev/chirpnet/internal/model"
)

// NewTestDB opens an isolated in-memory database migrated to the full
// schema. Each test gets its own named database so parallel tests do not
// share state.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Follow{},
		&model.Post{},
		&model.Comment{},
		&model.PostLike{},
		&model.PostSave{},
		&model.Notification{},
	))

	return db
}

// NewUser inserts a user with a bcrypt hash of the given password.
func NewUser(t *testing.T, db *gorm.DB, username, password string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username:     username,
		FullName:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
