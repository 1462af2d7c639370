package services

import (
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"player-moderation-system/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Player{},
		&models.GiftCode{},
		&models.PlayerNote{},
		&models.PlayerReport{},
		&models.PlayerAPIKey{},
		&models.ModerationLogEntry{},
	))
	return db
}

func newTestServices(t *testing.T) (*gorm.DB, *PlayerService, *RoleService, *GiftCodeService) {
	t.Helper()
	db := openTestDB(t)
	modlog := NewModLog(db, LogNotifier{})
	return db, NewPlayerService(db, modlog), NewRoleService(db, modlog), NewGiftCodeService(db, modlog)
}

func seedPlayer(t *testing.T, db *gorm.DB, playerUUID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Player{
		UUID:     playerUUID,
		Username: "Steve",
		Roles:    []models.RoleGrant{},
	}).Error)
}

func requireCategory(t *testing.T, err error, want goerrors.Category) {
	t.Helper()
	require.Error(t, err)
	var gerr *goerrors.Error
	require.True(t, goerrors.As(err, &gerr), "expected a categorized error, got %v", err)
	require.Equal(t, want, gerr.Category, "wrong error category: %v", err)
}
