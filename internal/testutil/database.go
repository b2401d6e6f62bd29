// Package testutil provides test helpers shared across packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// SetupTestDB creates a migrated in-memory database that is closed when the test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
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

	return store
}

// SeedUser stores a user with the given password, hashed at minimum cost.
func SeedUser(t *testing.T, store *storage.SQLiteStorage, username, password string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &model.User{Username: username, PasswordHash: string(hash)}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to seed user %q: %v", username, err)
	}
	return user
}

// SamplePlan returns a valid plan with the given name.
func SamplePlan(name string) model.RetirementPlan {
	plan := model.DefaultRetirementPlan()
	plan.Name = name
	return plan
}

// SampleExport is a small P&L export with header metadata.
const SampleExport = `Profit and Loss,,,
,Property:,Maple Court Duplex,
,Date:,01/01/2024 - 12/31/2024,
,,Income,""
,,Rent,"$18,000.00"
,,Late Fees,"$150.00"
,,Total Income,"$18,150.00"
,,Expense,""
,,Repairs,"$2,250.00"
,,Property Tax,"$3,100.00"
,,Total Expenses,"$5,350.00"
`
