package model

// Material is an inventory item consumed by dishes.
type Material struct {
	Number  string
	Name    string
	Unit    string
	ID      int
	StoreID int
}

// Dish is a menu item identified by its code within a store.
type Dish struct {
	Code    string
	Name    string
	ID      int
	StoreID int
}

// DishMaterialMapping is one recipe line: the quantity of a material consumed per
// unit of a dish sold at a store. An empty Size is the sizeless recipe. Combo lines
// apply only to dishes sold as part of a combo.
type DishMaterialMapping struct {
	LossRate           *float64
	UnitConversionRate *float64
	Size               string
	StandardQuantity   float64
	DishID             int
	StoreID            int
	MaterialID         int
	Combo              bool
}

// EffectiveLossRate returns the loss multiplier, treating a missing rate as 1.0.
func (m DishMaterialMapping) EffectiveLossRate() float64 {
	if m.LossRate == nil {
		return 1.0
	}
	return *m.LossRate
}

// EffectiveConversionRate returns the unit conversion divisor, treating a missing
// or zero rate as 1.0.
func (m DishMaterialMapping) EffectiveConversionRate() float64 {
	if m.UnitConversionRate == nil || *m.UnitConversionRate == 0 {
		return 1.0
	}
	return *m.UnitConversionRate
}

// UsagePerUnit returns the material consumed per net unit sold.
func (m DishMaterialMapping) UsagePerUnit() float64 {
	return m.StandardQuantity * m.EffectiveLossRate() / m.EffectiveConversionRate()
}

// DishSale is the monthly sales figure for one dish, size and sales mode at a store.
type DishSale struct {
	Size         string
	SalesMode    string
	SaleAmount   float64
	ReturnAmount float64
	DishID       int
	StoreID      int
	Year         int
	Month        int
	IsCombo      bool
}

// NetQuantity is sales minus returns. It may be negative when returns exceed sales.
func (s DishSale) NetQuantity() float64 {
	return s.SaleAmount - s.ReturnAmount
}
