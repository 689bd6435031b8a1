package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/paperwork-flow/internal/common"
)

// column lists the header names accepted for one field. POS exports use the
// Chinese headers; hand-made sheets usually use the English ones.
type column []string

var (
	colMaterialNumber = column{"material_number", "Material Number", "物料号", "物料编码", "物料"}
	colMaterialName   = column{"material_name", "Material Name", "物料描述", "物料名称"}
	colUnit           = column{"unit", "Unit", "单位"}
	colDishCode       = column{"dish_code", "Dish Code", "菜品编码", "菜品代码"}
	colDishName       = column{"dish_name", "Dish Name", "菜品名称"}
	colSize           = column{"size", "Size", "规格"}
	colCombo          = column{"combo", "is_combo", "Combo", "套餐"}
	colQuantity       = column{"standard_quantity", "Standard Quantity", "标准用量", "出品分量(kg)", "出品分量"}
	colLossRate       = column{"loss_rate", "Loss Rate", "损耗", "损耗率"}
	colConversion     = column{"unit_conversion_rate", "Unit Conversion Rate", "物料单位"}
	colSalesMode      = column{"sales_mode", "Sales Mode", "销售方式", "堂食/外卖"}
	colSaleAmount     = column{"sale_amount", "Sale Amount", "销售数量", "销售量", "实收数量"}
	colReturnAmount   = column{"return_amount", "Return Amount", "退菜数量", "退货数量"}
	colMaterialUsed   = column{"material_used", "Material Used", "系统数量", "消耗数量"}
	colBeginning      = column{"beginning", "Beginning", "期初库存"}
	colPurchases      = column{"purchases", "Purchases", "采购入库", "本期入库"}
	colTransfersIn    = column{"transfers_in", "Transfers In", "调拨入库"}
	colEnding         = column{"ending", "Ending", "期末库存"}
	colTransfersOut   = column{"transfers_out", "Transfers Out", "调拨出库"}
)

func (c column) String() string {
	return c[0]
}

// table is a sheet with its header row resolved.
type table struct {
	index map[string]int
	rows  [][]string
	// first is the sheet row number of rows[0], for messages.
	first int
}

// newTable locates the first row naming every required column and treats the
// rows below it as data.
func newTable(rows [][]string, required ...column) (*table, error) {
	for i, row := range rows {
		index := make(map[string]int, len(row))
		for j, name := range row {
			name = strings.TrimSpace(name)
			if _, seen := index[name]; name != "" && !seen {
				index[name] = j
			}
		}

		t := &table{index: index, rows: rows[i+1:], first: i + 2}
		if len(t.missing(required...)) == 0 {
			return t, nil
		}
	}

	var names []string
	for _, c := range required {
		names = append(names, c.String())
	}
	return nil, fmt.Errorf("%w: need %s", common.ErrMissingColumn, strings.Join(names, ", "))
}

func (t *table) missing(cols ...column) []column {
	var out []column
	for _, c := range cols {
		if _, ok := t.lookup(c); !ok {
			out = append(out, c)
		}
	}
	return out
}

func (t *table) lookup(c column) (int, bool) {
	for _, name := range c {
		if i, ok := t.index[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func (t *table) text(row []string, c column) string {
	i, ok := t.lookup(c)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// number parses a numeric cell. Blank cells are zero.
func (t *table) number(row []string, c column) (float64, error) {
	v, err := t.optional(row, c)
	if err != nil || v == nil {
		return 0, err
	}
	return *v, nil
}

// optional parses a numeric cell, returning nil for a blank cell.
func (t *table) optional(row []string, c column) (*float64, error) {
	s := strings.ReplaceAll(t.text(row, c), ",", "")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %q is not a number", c, s)
	}
	return &v, nil
}

func (t *table) flag(row []string, c column) bool {
	switch strings.ToLower(t.text(row, c)) {
	case "1", "y", "yes", "true", "是", "套餐":
		return true
	default:
		return false
	}
}

// code normalizes identifiers that spreadsheets render as floats ("1500680.0").
func code(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ".0") {
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return strings.TrimSuffix(s, ".0")
		}
	}
	return s
}
