package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Bank records and classifications",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS bank_records (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					serial_number TEXT NOT NULL,
					bank TEXT NOT NULL,
					account TEXT NOT NULL DEFAULT '',
					date DATETIME NOT NULL,
					short_description TEXT NOT NULL DEFAULT '',
					full_description TEXT NOT NULL DEFAULT '',
					customer_reference TEXT NOT NULL DEFAULT '',
					bank_reference TEXT NOT NULL DEFAULT '',
					debit TEXT NOT NULL DEFAULT '0',
					credit TEXT NOT NULL DEFAULT '0',
					category TEXT NOT NULL,
					payment_detail TEXT NOT NULL DEFAULT '',
					needs_document_number BOOLEAN NOT NULL DEFAULT 0,
					needs_attachment BOOLEAN NOT NULL DEFAULT 0,
					register_offline_payment BOOLEAN NOT NULL DEFAULT 0,
					register_check_usage BOOLEAN NOT NULL DEFAULT 0,
					import_id TEXT NOT NULL DEFAULT '',
					classified_at DATETIME NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(serial_number, date)
				)`,
				`CREATE INDEX idx_bank_records_date ON bank_records(date)`,
				`CREATE INDEX idx_bank_records_category ON bank_records(category)`,
				`CREATE INDEX idx_bank_records_import ON bank_records(import_id)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Materials, dishes, recipes, sales and monthly usage",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS materials (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					store_id INTEGER NOT NULL,
					number TEXT NOT NULL,
					name TEXT NOT NULL DEFAULT '',
					unit TEXT NOT NULL DEFAULT '',
					UNIQUE(store_id, number)
				)`,
				`CREATE TABLE IF NOT EXISTS dishes (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					store_id INTEGER NOT NULL,
					code TEXT NOT NULL,
					name TEXT NOT NULL DEFAULT '',
					UNIQUE(store_id, code)
				)`,
				`CREATE TABLE IF NOT EXISTS dish_materials (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					dish_id INTEGER NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
					size TEXT NOT NULL DEFAULT '',
					store_id INTEGER NOT NULL,
					material_id INTEGER NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
					standard_quantity REAL NOT NULL,
					loss_rate REAL,
					unit_conversion_rate REAL,
					is_combo BOOLEAN NOT NULL DEFAULT 0,
					UNIQUE(dish_id, size, store_id, material_id, is_combo)
				)`,
				`CREATE INDEX idx_dish_materials_store ON dish_materials(store_id)`,
				// sales_mode is part of the key: dine-in and takeout rows for the same
				// dish must not overwrite each other.
				`CREATE TABLE IF NOT EXISTS dish_monthly_sales (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					dish_id INTEGER NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
					size TEXT NOT NULL DEFAULT '',
					store_id INTEGER NOT NULL,
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					sales_mode TEXT NOT NULL DEFAULT '',
					sale_amount REAL NOT NULL DEFAULT 0,
					return_amount REAL NOT NULL DEFAULT 0,
					is_combo BOOLEAN NOT NULL DEFAULT 0,
					UNIQUE(dish_id, size, store_id, year, month, sales_mode, is_combo)
				)`,
				`CREATE INDEX idx_dish_sales_period ON dish_monthly_sales(store_id, year, month)`,
				`CREATE TABLE IF NOT EXISTS material_monthly_usage (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					material_id INTEGER NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
					store_id INTEGER NOT NULL,
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					material_used REAL NOT NULL,
					UNIQUE(material_id, store_id, year, month)
				)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Inventory movements",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS inventory_movements (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					material_id INTEGER NOT NULL REFERENCES materials(id) ON DELETE CASCADE,
					store_id INTEGER NOT NULL,
					year INTEGER NOT NULL,
					month INTEGER NOT NULL,
					beginning REAL NOT NULL DEFAULT 0,
					purchases REAL NOT NULL DEFAULT 0,
					transfers_in REAL NOT NULL DEFAULT 0,
					ending REAL NOT NULL DEFAULT 0,
					transfers_out REAL NOT NULL DEFAULT 0,
					UNIQUE(material_id, store_id, year, month)
				)`,
			})
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
