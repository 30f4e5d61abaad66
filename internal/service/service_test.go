package service

import (
	"testing"

	"bank_cards/internal/domain"
	"bank_cards/internal/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory store with the real schema. A single
// connection keeps every query on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Card{}))
	return db
}

func newTestCardService(t *testing.T, db *gorm.DB) *CardService {
	t.Helper()
	cipher, err := utils.NewCardCipher([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	return NewCardService(db, cipher)
}

// seedUser inserts a user directly, bypassing bcrypt for speed.
func seedUser(t *testing.T, db *gorm.DB, username, role string) *domain.User {
	t.Helper()
	u := domain.User{Username: username, Password: "x", Role: role}
	require.NoError(t, db.Create(&u).Error)
	return &u
}
