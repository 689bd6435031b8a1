// Package pipeline wires statement extraction, classification, storage and
// reconciliation into the operations exposed by the command line.
package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/Veraticus/paperwork-flow/internal/classification"
	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/Veraticus/paperwork-flow/internal/reconcile"
)

// Store is the persistence the pipeline reads from and writes to.
type Store interface {
	reconcile.Source

	UpsertClassifiedRecords(ctx context.Context, records []model.ClassifiedRecord) error

	UpsertMaterials(ctx context.Context, materials []model.Material) error
	MaterialIDs(ctx context.Context, storeID int) (map[string]int, error)
	UpsertDishes(ctx context.Context, dishes []model.Dish) error
	DishIDs(ctx context.Context, storeID int) (map[string]int, error)
	UpsertDishMaterials(ctx context.Context, mappings []model.DishMaterialMapping) error
	UpsertDishSales(ctx context.Context, sales []model.DishSale) error
	UpsertMonthlyUsage(ctx context.Context, usage []model.MonthlyUsageRecord) error
	UpsertInventoryMovements(ctx context.Context, movements []model.InventoryMovement) error
}

// Pipeline runs imports and reconciliations against a rule set and a store.
type Pipeline struct {
	now        func() time.Time
	rules      *classification.RuleSet
	store      Store
	reconciler *reconcile.Reconciler
	retry      common.RetryOptions
	workers    int
}

// New creates a pipeline classifying with rules and persisting to store.
func New(rules *classification.RuleSet, store Store) *Pipeline {
	return &Pipeline{
		now:        time.Now,
		rules:      rules,
		store:      store,
		reconciler: reconcile.NewReconciler(store),
		retry: common.RetryOptions{
			MaxAttempts:  5,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
		},
		workers: runtime.NumCPU(),
	}
}

// SetWorkers sets how many goroutines classify records. Values below one mean one.
func (p *Pipeline) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	p.workers = n
}

// Reconcile computes the material usage variance of a store for a month.
func (p *Pipeline) Reconcile(ctx context.Context, storeID int, period model.Period) ([]model.VarianceResult, error) {
	return p.reconciler.ComputeVariance(ctx, storeID, period.Year, period.Month)
}
