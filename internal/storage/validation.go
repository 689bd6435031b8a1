// Package storage provides the data persistence layer for the paperwork application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrEmptySlice       = errors.New("slice cannot be empty")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidRecord    = errors.New("invalid record")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateDateRange(start, end time.Time) error {
	if !start.Before(end) {
		return ErrInvalidDateRange
	}
	return nil
}

func validatePeriod(year, month int) error {
	return model.Period{Year: year, Month: month}.Validate()
}

func validateClassifiedRecords(records []model.ClassifiedRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}

	for i, r := range records {
		switch {
		case strings.TrimSpace(r.Record.SerialNumber) == "":
			return fmt.Errorf("%w: record %d: missing serial number", ErrInvalidRecord, i)
		case r.Record.Date.IsZero():
			return fmt.Errorf("%w: record %d: missing date", ErrInvalidRecord, i)
		case strings.TrimSpace(r.Record.Bank) == "":
			return fmt.Errorf("%w: record %d: missing bank", ErrInvalidRecord, i)
		case strings.TrimSpace(r.Result.Category) == "":
			return fmt.Errorf("%w: record %d: missing category", ErrInvalidRecord, i)
		}
	}
	return nil
}

func validateMaterial(m model.Material) error {
	if m.StoreID <= 0 {
		return fmt.Errorf("%w: material %q: missing store", ErrInvalidRecord, m.Number)
	}
	return validateString(m.Number, "material number")
}

func validateDish(d model.Dish) error {
	if d.StoreID <= 0 {
		return fmt.Errorf("%w: dish %q: missing store", ErrInvalidRecord, d.Code)
	}
	return validateString(d.Code, "dish code")
}

func validateMapping(m model.DishMaterialMapping) error {
	if m.DishID <= 0 || m.MaterialID <= 0 || m.StoreID <= 0 {
		return fmt.Errorf("%w: recipe line needs dish, material and store", ErrInvalidRecord)
	}
	return nil
}

func validateSale(s model.DishSale) error {
	if s.DishID <= 0 || s.StoreID <= 0 {
		return fmt.Errorf("%w: sale needs dish and store", ErrInvalidRecord)
	}
	return validatePeriod(s.Year, s.Month)
}

func validateUsage(u model.MonthlyUsageRecord) error {
	if u.MaterialID <= 0 || u.StoreID <= 0 {
		return fmt.Errorf("%w: usage needs material and store", ErrInvalidRecord)
	}
	return validatePeriod(u.Year, u.Month)
}

func validateMovement(m model.InventoryMovement) error {
	if m.MaterialID <= 0 || m.StoreID <= 0 {
		return fmt.Errorf("%w: inventory movement needs material and store", ErrInvalidRecord)
	}
	return validatePeriod(m.Year, m.Month)
}
