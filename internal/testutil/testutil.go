// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/divinecoid/sabkabazaar/internal/db"
	"github.com/divinecoid/sabkabazaar/internal/model"
	"github.com/divinecoid/sabkabazaar/pkg/config/keys"
)

// NewDB returns a migrated SQLite database in the test's temp dir. A single
// connection keeps SQLite from reporting the file as locked.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_foreign_keys=on&_busy_timeout=5000"
	gdb, err := db.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(context.Background(), gdb))
	return gdb
}

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func CreateUser(t testing.TB, gdb *gorm.DB, email string, admin bool) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Test " + email, IsAdmin: admin}
	require.NoError(t, gdb.Create(user).Error)
	return user
}

func CreateProduct(t testing.TB, gdb *gorm.DB, name string, price int64, stock int) *model.Product {
	t.Helper()
	product := &model.Product{Name: name, Price: price, Stock: stock, Category: "general", Images: model.StringSlice{}}
	require.NoError(t, gdb.Create(product).Error)
	return product
}

// Stock reads a product's current stock.
func Stock(t testing.TB, gdb *gorm.DB, productID string) int {
	t.Helper()
	var product model.Product
	require.NoError(t, gdb.First(&product, "id = ?", productID).Error)
	return product.Stock
}

func Count(t testing.TB, gdb *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(m).Count(&n).Error)
	return n
}

// KeyManager returns a dev key manager with a fresh current key and, when
// withPrevious is set, a previous key as well.
func KeyManager(t testing.TB, withPrevious bool) *keys.KeyManager {
	t.Helper()
	current, err := keys.GenerateKey("dev", "v2")
	require.NoError(t, err)

	previous := ""
	if withPrevious {
		prev, err := keys.GenerateKey("dev", "v1")
		require.NoError(t, err)
		previous = prev.String()
	}

	km, err := keys.NewKeyManager("dev", current.String(), previous)
	require.NoError(t, err)
	return km
}

func Email(i int) string {
	return fmt.Sprintf("user%d@example.com", i)
}
