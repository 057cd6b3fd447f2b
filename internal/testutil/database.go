// Package testutil provides shared test helpers: an isolated in-memory
// database and the canonical basket fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/market-basket/internal/model"
	"github.com/Veraticus/market-basket/internal/service"
	"github.com/Veraticus/market-basket/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database, migrated and closed
// automatically when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	db.Seed("groceries", testutil.Groceries())
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// Seed stores transactions under dataset or fails the test.
func (db *TestDB) Seed(dataset string, transactions []model.Transaction) {
	db.t.Helper()
	if _, err := db.Storage.SaveTransactions(context.Background(), dataset, "fixture", transactions); err != nil {
		db.t.Fatalf("failed to seed dataset %q: %v", dataset, err)
	}
}
