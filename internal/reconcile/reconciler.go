package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// Source supplies the sales, recipe and usage data for reconciliation.
type Source interface {
	DishSales(ctx context.Context, storeID, year, month int) ([]model.DishSale, error)
	RecipeMappings(ctx context.Context, storeID int) ([]model.DishMaterialMapping, error)
	ActualUsage(ctx context.Context, storeID, year, month int) ([]model.MonthlyUsageRecord, error)
	Materials(ctx context.Context, storeID int) ([]model.Material, error)
}

// Reconciler computes material usage variance from a Source.
type Reconciler struct {
	source Source
}

// NewReconciler creates a reconciler reading from source.
func NewReconciler(source Source) *Reconciler {
	return &Reconciler{source: source}
}

// ComputeVariance returns the variance rows for a store and month.
func (r *Reconciler) ComputeVariance(ctx context.Context, storeID, year, month int) ([]model.VarianceResult, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}
	if err := (model.Period{Year: year, Month: month}).Validate(); err != nil {
		return nil, err
	}

	sales, err := r.source.DishSales(ctx, storeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load dish sales: %w", err)
	}

	mappings, err := r.source.RecipeMappings(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipe mappings: %w", err)
	}

	usage, err := r.source.ActualUsage(ctx, storeID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load actual usage: %w", err)
	}

	materials, err := r.source.Materials(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}

	results := Compute(Input{
		StoreID:   storeID,
		Year:      year,
		Month:     month,
		Sales:     sales,
		Mappings:  mappings,
		Usage:     usage,
		Materials: materials,
	})

	slog.Info("Computed material variance",
		"store", storeID,
		"period", fmt.Sprintf("%04d-%02d", year, month),
		"sales_rows", len(sales),
		"recipe_lines", len(mappings),
		"materials", len(results))

	return results, nil
}
