package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// UpsertDishSales stores monthly dish sales, one row per dish, size, sales mode and combo flag.
func (s *SQLiteStorage) UpsertDishSales(ctx context.Context, sales []model.DishSale) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(sales) == 0 {
		return fmt.Errorf("%w: sales", ErrEmptySlice)
	}
	for _, sale := range sales {
		if err := validateSale(sale); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO dish_monthly_sales (
				dish_id, size, store_id, year, month, sales_mode,
				sale_amount, return_amount, is_combo
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(dish_id, size, store_id, year, month, sales_mode, is_combo) DO UPDATE SET
				sale_amount = excluded.sale_amount,
				return_amount = excluded.return_amount
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, sale := range sales {
			_, err := stmt.ExecContext(ctx,
				sale.DishID, sale.Size, sale.StoreID, sale.Year, sale.Month, sale.SalesMode,
				sale.SaleAmount, sale.ReturnAmount, sale.IsCombo)
			if err != nil {
				return fmt.Errorf("failed to upsert sales for dish %d: %w", sale.DishID, err)
			}
		}
		return nil
	})
}

// DishSales returns the sales rows of a store and month across every sales mode.
func (s *SQLiteStorage) DishSales(ctx context.Context, storeID, year, month int) ([]model.DishSale, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT dish_id, size, store_id, year, month, sales_mode,
			COALESCE(sale_amount, 0), COALESCE(return_amount, 0), is_combo
		FROM dish_monthly_sales
		WHERE store_id = ? AND year = ? AND month = ?
		ORDER BY dish_id, size, sales_mode
	`, storeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query dish sales: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sales []model.DishSale
	for rows.Next() {
		var sale model.DishSale
		if err := rows.Scan(&sale.DishID, &sale.Size, &sale.StoreID, &sale.Year, &sale.Month,
			&sale.SalesMode, &sale.SaleAmount, &sale.ReturnAmount, &sale.IsCombo); err != nil {
			return nil, fmt.Errorf("failed to scan dish sale: %w", err)
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}
