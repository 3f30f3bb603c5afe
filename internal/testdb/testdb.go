// Package testdb opens migrated in-memory databases for tests.
package testdb

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/db"
)

const memoryDSN = ":memory:?_pragma=foreign_keys(1)"

func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := db.Config()
	cfg.Logger = logger.Discard
	gdb, err := gorm.Open(sqlite.Open(memoryDSN), cfg)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.AutoMigrate(gdb))
	return gdb
}

// User inserts a user together with its cart.
func User(t testing.TB, gdb *gorm.DB) (models.User, models.Cart) {
	t.Helper()
	u := models.User{
		Username:     gofakeit.Username() + gofakeit.DigitN(6),
		Email:        gofakeit.Email(),
		PasswordHash: "x",
	}
	require.NoError(t, gdb.Create(&u).Error)
	c := models.Cart{UserID: u.ID}
	require.NoError(t, gdb.Omit("User", "Items").Create(&c).Error)
	return u, c
}

func Category(t testing.TB, gdb *gorm.DB, name, slug string) models.Category {
	t.Helper()
	c := models.Category{Name: name, Slug: slug}
	require.NoError(t, gdb.Create(&c).Error)
	return c
}

func Item(t testing.TB, gdb *gorm.DB, title, price string, category *models.Category) models.Item {
	t.Helper()
	it := models.Item{
		Title:       title,
		Description: gofakeit.ProductDescription(),
		Price:       decimal.RequireFromString(price),
	}
	if category != nil {
		it.CategoryID = &category.ID
	}
	require.NoError(t, gdb.Omit("Category").Create(&it).Error)
	return it
}
