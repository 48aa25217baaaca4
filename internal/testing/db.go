// Package testing provides testing utilities shared across packages.
package testing

import (
	"testing"

	"github.com/aristath/frontier/internal/database"
)

// NewTestDB creates an isolated in-memory SQLite database for a test.
// The database is closed automatically when the test finishes.
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	profile := database.ProfileStandard
	if name == "cache" {
		profile = database.ProfileCache
	}

	db, err := database.New(database.Config{
		Path:    "file:test_" + name + "_" + t.Name() + "?mode=memory&cache=shared",
		Name:    name,
		Profile: profile,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}
