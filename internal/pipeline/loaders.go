package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/Veraticus/paperwork-flow/internal/statement"
)

// SheetKind names a kind of master-data or monthly sheet.
type SheetKind string

// Supported sheet kinds.
const (
	SheetMaterials SheetKind = "materials"
	SheetDishes    SheetKind = "dishes"
	SheetRecipes   SheetKind = "recipes"
	SheetSales     SheetKind = "sales"
	SheetUsage     SheetKind = "usage"
	SheetInventory SheetKind = "inventory"
)

// SheetKinds lists every loadable sheet kind.
func SheetKinds() []SheetKind {
	return []SheetKind{SheetMaterials, SheetDishes, SheetRecipes, SheetSales, SheetUsage, SheetInventory}
}

// Monthly reports whether the sheet holds figures for a single month.
func (k SheetKind) Monthly() bool {
	return k == SheetSales || k == SheetUsage || k == SheetInventory
}

// Target is the store, and for monthly sheets the month, a sheet belongs to.
type Target struct {
	Period  model.Period
	StoreID int
}

// LoadSummary counts the rows of a loaded sheet.
type LoadSummary struct {
	Kind    SheetKind
	Rows    int
	Loaded  int
	Skipped int
}

// LoadSheet reads a spreadsheet and loads it as kind.
func (p *Pipeline) LoadSheet(ctx context.Context, kind SheetKind, path string, target Target) (*LoadSummary, error) {
	rows, err := statement.ReadRows(path)
	if err != nil {
		return nil, err
	}

	summary, err := p.LoadRows(ctx, kind, rows, target)
	if err != nil {
		return summary, err
	}

	slog.Info("Loaded sheet",
		"file", path,
		"kind", kind,
		"store", target.StoreID,
		"loaded", summary.Loaded,
		"skipped", summary.Skipped)

	return summary, nil
}

// LoadRows loads already-read sheet rows as kind.
func (p *Pipeline) LoadRows(ctx context.Context, kind SheetKind, rows [][]string, target Target) (*LoadSummary, error) {
	if target.StoreID <= 0 {
		return nil, fmt.Errorf("%w: store id must be positive", common.ErrInvalidConfig)
	}
	if kind.Monthly() {
		if err := target.Period.Validate(); err != nil {
			return nil, err
		}
	}

	switch kind {
	case SheetMaterials:
		return p.loadMaterials(ctx, rows, target)
	case SheetDishes:
		return p.loadDishes(ctx, rows, target)
	case SheetRecipes:
		return p.loadRecipes(ctx, rows, target)
	case SheetSales:
		return p.loadSales(ctx, rows, target)
	case SheetUsage:
		return p.loadUsage(ctx, rows, target)
	case SheetInventory:
		return p.loadInventory(ctx, rows, target)
	default:
		return nil, fmt.Errorf("%w: unknown sheet kind %q", common.ErrUnsupportedFile, kind)
	}
}

func (p *Pipeline) upsert(ctx context.Context, summary *LoadSummary, write func() error) (*LoadSummary, error) {
	if summary.Loaded == 0 {
		return summary, fmt.Errorf("%w: %s sheet", common.ErrNoRecords, summary.Kind)
	}
	if err := common.WithRetry(ctx, write, p.retry); err != nil {
		return summary, fmt.Errorf("failed to save %s: %w", summary.Kind, err)
	}
	return summary, nil
}

func skip(summary *LoadSummary, t *table, i int, reason string, args ...any) {
	summary.Skipped++
	slog.Warn("Skipping sheet row",
		append([]any{"kind", summary.Kind, "row", t.first + i, "reason", reason}, args...)...)
}

func (p *Pipeline) loadMaterials(ctx context.Context, rows [][]string, target Target) (*LoadSummary, error) {
	t, err := newTable(rows, colMaterialNumber)
	if err != nil {
		return nil, err
	}

	summary := &LoadSummary{Kind: SheetMaterials}
	byNumber := make(map[string]model.Material)
	for _, row := range t.rows {
		number := code(t.text(row, colMaterialNumber))
		if number == "" {
			continue
		}
		summary.Rows++
		byNumber[number] = model.Material{
			StoreID: target.StoreID,
			Number:  number,
			Name:    t.text(row, colMaterialName),
			Unit:    t.text(row, colUnit),
		}
	}

	materials := make([]model.Material, 0, len(byNumber))
	for _, m := range byNumber {
		materials = append(materials, m)
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i].Number < materials[j].Number })
	summary.Loaded = len(materials)

	return p.upsert(ctx, summary, func() error {
		return p.store.UpsertMaterials(ctx, materials)
	})
}

func (p *Pipeline) loadDishes(ctx context.Context, rows [][]string, target Target) (*LoadSummary, error) {
	t, err := newTable(rows, colDishCode)
	if err != nil {
		return nil, err
	}

	summary := &LoadSummary{Kind: SheetDishes}
	byCode := make(map[string]model.Dish)
	for _, row := range t.rows {
		dishCode := code(t.text(row, colDishCode))
		if dishCode == "" {
			continue
		}
		summary.Rows++
		byCode[dishCode] = model.Dish{
			StoreID: target.StoreID,
			Code:    dishCode,
			Name:    t.text(row, colDishName),
		}
	}

	dishes := make([]model.Dish, 0, len(byCode))
	for _, d := range byCode {
		dishes = append(dishes, d)
	}
	sort.Slice(dishes, func(i, j int) bool { return dishes[i].Code < dishes[j].Code })
	summary.Loaded = len(dishes)

	return p.upsert(ctx, summary, func() error {
		return p.store.UpsertDishes(ctx, dishes)
	})
}

func (p *Pipeline) catalog(ctx context.Context, storeID int) (dishes, materials map[string]int, err error) {
	if dishes, err = p.store.DishIDs(ctx, storeID); err != nil {
		return nil, nil, fmt.Errorf("failed to load dishes: %w", err)
	}
	if materials, err = p.store.MaterialIDs(ctx, storeID); err != nil {
		return nil, nil, fmt.Errorf("failed to load materials: %w", err)
	}
	return dishes, materials, nil
}

func (p *Pipeline) loadRecipes(ctx context.Context, rows [][]string, target Target) (*LoadSummary, error) {
	t, err := newTable(rows, colDishCode, colMaterialNumber, colQuantity)
	if err != nil {
		return nil, err
	}
	dishes, materials, err := p.catalog(ctx, target.StoreID)
	if err != nil {
		return nil, err
	}

	summary := &LoadSummary{Kind: SheetRecipes}
	var mappings []model.DishMaterialMapping
	for i, row := range t.rows {
		dishCode := code(t.text(row, colDishCode))
		number := code(t.text(row, colMaterialNumber))
		if dishCode == "" || number == "" {
			continue
		}
		summary.Rows++

		dishID, ok := dishes[dishCode]
		if !ok {
			skip(summary, t, i, "unknown dish", "dish", dishCode)
			continue
		}
		materialID, ok := materials[number]
		if !ok {
			skip(summary, t, i, "unknown material", "material", number)
			continue
		}

		quantity, err := t.number(row, colQuantity)
		if err != nil {
			skip(summary, t, i, err.Error())
			continue
		}
		loss, err := t.optional(row, colLossRate)
		if err != nil {
			skip(summary, t, i, err.Error())
			continue
		}
		conversion, err := t.optional(row, colConversion)
		if err != nil {
			skip(summary, t, i, err.Error())
			continue
		}

		mappings = append(mappings, model.DishMaterialMapping{
			DishID:             dishID,
			MaterialID:         materialID,
			StoreID:            target.StoreID,
			Size:               t.text(row, colSize),
			StandardQuantity:   quantity,
			LossRate:           loss,
			UnitConversionRate: conversion,
			Combo:              t.flag(row, colCombo),
		})
	}
	summary.Loaded = len(mappings)

	return p.upsert(ctx, summary, func() error {
		return p.store.UpsertDishMaterials(ctx, mappings)
	})
}

type saleKey struct {
	size   string
	mode   string
	dishID int
	combo  bool
}

// loadSales sums rows sharing dish, size, sales mode and combo flag, since POS
// exports split a month's sales across several lines.
func (p *Pipeline) loadSales(ctx context.Context, rows [][]string, target Target) (*LoadSummary, error) {
	t, err := newTable(rows, colDishCode, colSaleAmount)
	if err != nil {
		return nil, err
	}
	dishes, err := p.store.DishIDs(ctx, target.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dishes: %w", err)
	}

	summary := &LoadSummary{Kind: SheetSales}
	totals := make(map[saleKey]*model.DishSale)
	var order []saleKey
	for i, row := range t.rows {
		dishCode := code(t.text(row, colDishCode))
		if dishCode == "" {
			continue
		}
		summary.Rows++

		dishID, ok := dishes[dishCode]
		if !ok {
			skip(summary, t, i, "unknown dish", "dish", dishCode)
			continue
		}
		sold, err := t.number(row, colSaleAmount)
		if err != nil {
			skip(summary, t, i, err.Error())
			continue
		}
		returned, err := t.number(row, colReturnAmount)
		if err != nil {
			skip(summary, t, i, err.Error())
			continue
		}

		key := saleKey{
			dishID: dishID,
			size:   t.text(row, colSize),
			mode:   t.text(row, colSalesMode),
			combo:  t.flag(row, colCombo),
		}
		sale, ok := totals[key]
		if !ok {
			sale = &model.DishSale{
				DishID:    dishID,
				StoreID:   target.StoreID,
				Year:      target.Period.Year,
				Month:     target.Period.Month,
				Size:      key.size,
				SalesMode: key.mode,
				IsCombo:   key.combo,
			}
			totals[key] = sale
			order = append(order, key)
		}
		sale.SaleAmount += sold
		sale.ReturnAmount += returned
	}

	sales := make([]model.DishSale, 0, len(order))
	for _, key := range order {
		sales = append(sales, *totals[key])
	}
	summary.Loaded = len(sales)

	return p.upsert(ctx, summary, func() error {
		return p.store.UpsertDishSales(ctx, sales)
	})
}

func (p *Pipeline) loadUsage(ctx context.Context, rows [][]string, target Target) (*LoadSummary, error) {
	t, err := newTable(rows, colMaterialNumber, colMaterialUsed)
	if err != nil {
		return nil, err
	}
	materials, err := p.store.MaterialIDs(ctx, target.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}

	summary := &LoadSummary{Kind: SheetUsage}
	used := make(map[int]float64)
	var order []int
	for i, row := range t.rows {
		number := code(t.text(row, colMaterialNumber))
		if number == "" {
			continue
		}
		summary.Rows++

		materialID, ok := materials[number]
		if !ok {
			skip(summary, t, i, "unknown material", "material", number)
			continue
		}
		amount, err := t.number(row, colMaterialUsed)
		if err != nil {
			skip(summary, t, i, err.Error())
			continue
		}
		if _, seen := used[materialID]; !seen {
			order = append(order, materialID)
		}
		used[materialID] += amount
	}

	usage := make([]model.MonthlyUsageRecord, 0, len(order))
	for _, id := range order {
		usage = append(usage, model.MonthlyUsageRecord{
			MaterialID:   id,
			StoreID:      target.StoreID,
			Year:         target.Period.Year,
			Month:        target.Period.Month,
			MaterialUsed: used[id],
		})
	}
	summary.Loaded = len(usage)

	return p.upsert(ctx, summary, func() error {
		return p.store.UpsertMonthlyUsage(ctx, usage)
	})
}

func (p *Pipeline) loadInventory(ctx context.Context, rows [][]string, target Target) (*LoadSummary, error) {
	t, err := newTable(rows, colMaterialNumber, colBeginning, colEnding)
	if err != nil {
		return nil, err
	}
	materials, err := p.store.MaterialIDs(ctx, target.StoreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}

	summary := &LoadSummary{Kind: SheetInventory}
	var movements []model.InventoryMovement
	for i, row := range t.rows {
		number := code(t.text(row, colMaterialNumber))
		if number == "" {
			continue
		}
		summary.Rows++

		materialID, ok := materials[number]
		if !ok {
			skip(summary, t, i, "unknown material", "material", number)
			continue
		}

		m := model.InventoryMovement{
			MaterialID: materialID,
			StoreID:    target.StoreID,
			Year:       target.Period.Year,
			Month:      target.Period.Month,
		}
		fields := []struct {
			dst *float64
			col column
		}{
			{&m.Beginning, colBeginning},
			{&m.Purchases, colPurchases},
			{&m.TransfersIn, colTransfersIn},
			{&m.Ending, colEnding},
			{&m.TransfersOut, colTransfersOut},
		}
		var bad error
		for _, f := range fields {
			if *f.dst, bad = t.number(row, f.col); bad != nil {
				break
			}
		}
		if bad != nil {
			skip(summary, t, i, bad.Error())
			continue
		}
		movements = append(movements, m)
	}
	summary.Loaded = len(movements)

	return p.upsert(ctx, summary, func() error {
		return p.store.UpsertInventoryMovements(ctx, movements)
	})
}
