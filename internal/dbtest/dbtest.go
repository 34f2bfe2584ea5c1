// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/role_gate/internal/models"
	"github.com/Skotchmaster/role_gate/pkg/db"
)

func New(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
