package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// UpsertMaterials inserts materials or updates their name and unit, keyed by store and number.
func (s *SQLiteStorage) UpsertMaterials(ctx context.Context, materials []model.Material) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(materials) == 0 {
		return fmt.Errorf("%w: materials", ErrEmptySlice)
	}
	for _, m := range materials {
		if err := validateMaterial(m); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO materials (store_id, number, name, unit) VALUES (?, ?, ?, ?)
			ON CONFLICT(store_id, number) DO UPDATE SET name = excluded.name, unit = excluded.unit
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, m := range materials {
			if _, err := stmt.ExecContext(ctx, m.StoreID, m.Number, m.Name, m.Unit); err != nil {
				return fmt.Errorf("failed to upsert material %s: %w", m.Number, err)
			}
		}
		return nil
	})
}

// Materials returns the materials of a store ordered by number.
func (s *SQLiteStorage) Materials(ctx context.Context, storeID int) ([]model.Material, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, store_id, number, name, unit FROM materials WHERE store_id = ? ORDER BY number",
		storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var materials []model.Material
	for rows.Next() {
		var m model.Material
		if err := rows.Scan(&m.ID, &m.StoreID, &m.Number, &m.Name, &m.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// MaterialIDs maps material numbers to ids for a store.
func (s *SQLiteStorage) MaterialIDs(ctx context.Context, storeID int) (map[string]int, error) {
	materials, err := s.Materials(ctx, storeID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]int, len(materials))
	for _, m := range materials {
		ids[m.Number] = m.ID
	}
	return ids, nil
}

// UpsertDishes inserts dishes or updates their name, keyed by store and code.
func (s *SQLiteStorage) UpsertDishes(ctx context.Context, dishes []model.Dish) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(dishes) == 0 {
		return fmt.Errorf("%w: dishes", ErrEmptySlice)
	}
	for _, d := range dishes {
		if err := validateDish(d); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO dishes (store_id, code, name) VALUES (?, ?, ?)
			ON CONFLICT(store_id, code) DO UPDATE SET name = excluded.name
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, d := range dishes {
			if _, err := stmt.ExecContext(ctx, d.StoreID, d.Code, d.Name); err != nil {
				return fmt.Errorf("failed to upsert dish %s: %w", d.Code, err)
			}
		}
		return nil
	})
}

// DishIDs maps dish codes to ids for a store.
func (s *SQLiteStorage) DishIDs(ctx context.Context, storeID int) (map[string]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, code FROM dishes WHERE store_id = ?", storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dishes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]int)
	for rows.Next() {
		var id int
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, fmt.Errorf("failed to scan dish: %w", err)
		}
		ids[code] = id
	}
	return ids, rows.Err()
}

// UpsertDishMaterials inserts recipe lines or updates their quantities and rates.
func (s *SQLiteStorage) UpsertDishMaterials(ctx context.Context, mappings []model.DishMaterialMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(mappings) == 0 {
		return fmt.Errorf("%w: recipe lines", ErrEmptySlice)
	}
	for _, m := range mappings {
		if err := validateMapping(m); err != nil {
			return err
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO dish_materials (
				dish_id, size, store_id, material_id, standard_quantity,
				loss_rate, unit_conversion_rate, is_combo
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(dish_id, size, store_id, material_id, is_combo) DO UPDATE SET
				standard_quantity = excluded.standard_quantity,
				loss_rate = excluded.loss_rate,
				unit_conversion_rate = excluded.unit_conversion_rate
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, m := range mappings {
			_, err := stmt.ExecContext(ctx,
				m.DishID, m.Size, m.StoreID, m.MaterialID, m.StandardQuantity,
				nullFloat(m.LossRate), nullFloat(m.UnitConversionRate), m.Combo)
			if err != nil {
				return fmt.Errorf("failed to upsert recipe line for dish %d: %w", m.DishID, err)
			}
		}
		return nil
	})
}

// RecipeMappings returns every recipe line of a store.
func (s *SQLiteStorage) RecipeMappings(ctx context.Context, storeID int) ([]model.DishMaterialMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT dish_id, size, store_id, material_id, standard_quantity,
			loss_rate, unit_conversion_rate, is_combo
		FROM dish_materials
		WHERE store_id = ?
		ORDER BY dish_id, size, material_id
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe lines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.DishMaterialMapping
	for rows.Next() {
		var m model.DishMaterialMapping
		var loss, conversion sql.NullFloat64
		if err := rows.Scan(&m.DishID, &m.Size, &m.StoreID, &m.MaterialID, &m.StandardQuantity,
			&loss, &conversion, &m.Combo); err != nil {
			return nil, fmt.Errorf("failed to scan recipe line: %w", err)
		}
		m.LossRate = floatPtr(loss)
		m.UnitConversionRate = floatPtr(conversion)
		mappings = append(mappings, m)
	}
	return mappings, rows.Err()
}
