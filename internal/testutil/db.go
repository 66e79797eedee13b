// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"testing"

	"golang-stock-circle/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens an isolated in-memory SQLite database with every model migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(entity.Models()...))
	return db
}

// CreateUser inserts a user with the given name and admin flag.
func CreateUser(t *testing.T, db *gorm.DB, username string, admin bool) *entity.User {
	t.Helper()
	user := &entity.User{Username: username, PasswordHash: "x", IsAdmin: admin}
	require.NoError(t, db.Create(user).Error)
	return user
}

// Follow inserts a follow edge.
func Follow(t *testing.T, db *gorm.DB, followerID, followingID uint) {
	t.Helper()
	require.NoError(t, db.Create(&entity.Follow{FollowerID: followerID, FollowingID: followingID}).Error)
}
