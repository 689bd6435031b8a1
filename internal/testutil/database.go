// Package testutil provides shared test helpers for the paperwork packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/Veraticus/paperwork-flow/internal/storage"
)

// DefaultStoreID is the store used by seeded fixtures.
const DefaultStoreID = 1

// TestDB represents a migrated in-memory database and the fixture ids seeded into it.
type TestDB struct {
	Storage   *storage.SQLiteStorage
	t         *testing.T
	Materials map[string]int
	Dishes    map[string]int
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	Materials      []model.Material
	Dishes         []model.Dish
	SkipMigrations bool
}

// SetupTestDB creates a new in-memory test database.
// It automatically handles migrations and cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions creates a test database with custom options.
//
// Example:
//
//	db := testutil.SetupTestDBWithOptions(t, testutil.TestDBOptions{
//		Materials: []model.Material{{StoreID: 1, Number: "1500680", Name: "Beef"}},
//		Dishes:    []model.Dish{{StoreID: 1, Code: "90001", Name: "Hot pot"}},
//	})
//	beef := db.MustMaterialID("1500680")
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	db := &TestDB{
		Storage:   store,
		t:         t,
		Materials: map[string]int{},
		Dishes:    map[string]int{},
	}

	if len(opts.Materials) > 0 {
		if err := store.UpsertMaterials(ctx, opts.Materials); err != nil {
			t.Fatalf("failed to seed materials: %v", err)
		}
		if db.Materials, err = store.MaterialIDs(ctx, DefaultStoreID); err != nil {
			t.Fatalf("failed to load material ids: %v", err)
		}
	}

	if len(opts.Dishes) > 0 {
		if err := store.UpsertDishes(ctx, opts.Dishes); err != nil {
			t.Fatalf("failed to seed dishes: %v", err)
		}
		if db.Dishes, err = store.DishIDs(ctx, DefaultStoreID); err != nil {
			t.Fatalf("failed to load dish ids: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// MustMaterialID returns the id of a seeded material or fails the test.
func (db *TestDB) MustMaterialID(number string) int {
	db.t.Helper()
	id, ok := db.Materials[number]
	if !ok {
		db.t.Fatalf("material %q was not seeded", number)
	}
	return id
}

// MustDishID returns the id of a seeded dish or fails the test.
func (db *TestDB) MustDishID(code string) int {
	db.t.Helper()
	id, ok := db.Dishes[code]
	if !ok {
		db.t.Fatalf("dish %q was not seeded", code)
	}
	return id
}
