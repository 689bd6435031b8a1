package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// UpsertMonthlyUsage stores directly recorded monthly material usage.
func (s *SQLiteStorage) UpsertMonthlyUsage(ctx context.Context, usage []model.MonthlyUsageRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(usage) == 0 {
		return fmt.Errorf("%w: usage", ErrEmptySlice)
	}
	for _, u := range usage {
		if err := validateUsage(u); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO material_monthly_usage (material_id, store_id, year, month, material_used)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(material_id, store_id, year, month) DO UPDATE SET
				material_used = excluded.material_used
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, u := range usage {
			if _, err := stmt.ExecContext(ctx, u.MaterialID, u.StoreID, u.Year, u.Month, u.MaterialUsed); err != nil {
				return fmt.Errorf("failed to upsert usage for material %d: %w", u.MaterialID, err)
			}
		}
		return nil
	})
}

// UpsertInventoryMovements stores monthly stock counts and transfers.
func (s *SQLiteStorage) UpsertInventoryMovements(ctx context.Context, movements []model.InventoryMovement) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(movements) == 0 {
		return fmt.Errorf("%w: inventory movements", ErrEmptySlice)
	}
	for _, m := range movements {
		if err := validateMovement(m); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO inventory_movements (
				material_id, store_id, year, month,
				beginning, purchases, transfers_in, ending, transfers_out
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(material_id, store_id, year, month) DO UPDATE SET
				beginning = excluded.beginning,
				purchases = excluded.purchases,
				transfers_in = excluded.transfers_in,
				ending = excluded.ending,
				transfers_out = excluded.transfers_out
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, m := range movements {
			_, err := stmt.ExecContext(ctx, m.MaterialID, m.StoreID, m.Year, m.Month,
				m.Beginning, m.Purchases, m.TransfersIn, m.Ending, m.TransfersOut)
			if err != nil {
				return fmt.Errorf("failed to upsert inventory movement for material %d: %w", m.MaterialID, err)
			}
		}
		return nil
	})
}

// ActualUsage returns the actual usage of each material for a store and month.
// A directly recorded figure takes precedence; otherwise usage is derived from
// the month's inventory movement.
func (s *SQLiteStorage) ActualUsage(ctx context.Context, storeID, year, month int) ([]model.MonthlyUsageRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT material_id, material_used
		FROM material_monthly_usage
		WHERE store_id = ? AND year = ? AND month = ?
		ORDER BY material_id
	`, storeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var usage []model.MonthlyUsageRecord
	for rows.Next() {
		u := model.MonthlyUsageRecord{StoreID: storeID, Year: year, Month: month}
		if err := rows.Scan(&u.MaterialID, &u.MaterialUsed); err != nil {
			return nil, fmt.Errorf("failed to scan monthly usage: %w", err)
		}
		usage = append(usage, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	derived, err := s.derivedUsage(ctx, storeID, year, month)
	if err != nil {
		return nil, err
	}

	return append(usage, derived...), nil
}

func (s *SQLiteStorage) derivedUsage(ctx context.Context, storeID, year, month int) ([]model.MonthlyUsageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT im.material_id, im.beginning, im.purchases, im.transfers_in, im.ending, im.transfers_out
		FROM inventory_movements im
		WHERE im.store_id = ? AND im.year = ? AND im.month = ?
			AND NOT EXISTS (
				SELECT 1 FROM material_monthly_usage mu
				WHERE mu.material_id = im.material_id
					AND mu.store_id = im.store_id
					AND mu.year = im.year
					AND mu.month = im.month
			)
		ORDER BY im.material_id
	`, storeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory movements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var usage []model.MonthlyUsageRecord
	for rows.Next() {
		m := model.InventoryMovement{StoreID: storeID, Year: year, Month: month}
		if err := rows.Scan(&m.MaterialID, &m.Beginning, &m.Purchases, &m.TransfersIn, &m.Ending, &m.TransfersOut); err != nil {
			return nil, fmt.Errorf("failed to scan inventory movement: %w", err)
		}
		usage = append(usage, m.UsageRecord())
	}
	return usage, rows.Err()
}
