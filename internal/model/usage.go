package model

import (
	"fmt"
	"math"
)

// MonthlyUsageRecord is the actual quantity of a material consumed at a store in a month.
type MonthlyUsageRecord struct {
	MaterialUsed float64
	MaterialID   int
	StoreID      int
	Year         int
	Month        int
}

// InventoryMovement is a monthly stock count and transfer summary for a material.
type InventoryMovement struct {
	Beginning    float64
	Purchases    float64
	TransfersIn  float64
	Ending       float64
	TransfersOut float64
	MaterialID   int
	StoreID      int
	Year         int
	Month        int
}

// ActualUsage derives consumption from stock conservation.
func (m InventoryMovement) ActualUsage() float64 {
	return m.Beginning + m.Purchases + m.TransfersIn - m.Ending - m.TransfersOut
}

// UsageRecord converts the movement into a monthly usage record.
func (m InventoryMovement) UsageRecord() MonthlyUsageRecord {
	return MonthlyUsageRecord{
		MaterialID:   m.MaterialID,
		StoreID:      m.StoreID,
		Year:         m.Year,
		Month:        m.Month,
		MaterialUsed: m.ActualUsage(),
	}
}

// UsageDetail is the theoretical consumption contributed by one dish and size.
type UsageDetail struct {
	Size        string
	NetQuantity float64
	Usage       float64
	DishID      int
	IsCombo     bool
}

// Key identifies the contributing dish, with a suffix for combo sales.
func (d UsageDetail) Key() string {
	key := fmt.Sprintf("%d", d.DishID)
	if d.Size != "" {
		key += "/" + d.Size
	}
	if d.IsCombo {
		key += "-combo"
	}
	return key
}

// VarianceResult compares theoretical and actual usage of a material for a store and month.
type VarianceResult struct {
	VariancePercentage *float64
	MaterialNumber     string
	MaterialName       string
	Unit               string
	Details            []UsageDetail
	TheoreticalUsage   float64
	ActualUsage        float64
	Variance           float64
	MaterialID         int
	StoreID            int
	Year               int
	Month              int
}

// PercentageLabel renders the variance percentage, or "N/A" when theoretical usage is zero.
func (v VarianceResult) PercentageLabel() string {
	if v.VariancePercentage == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *v.VariancePercentage)
}

// Exceeds reports whether the variance is larger than threshold as a fraction of
// theoretical usage. Undefined percentages never exceed.
func (v VarianceResult) Exceeds(threshold float64) bool {
	if v.VariancePercentage == nil {
		return false
	}
	return math.Abs(*v.VariancePercentage) > threshold*100
}
