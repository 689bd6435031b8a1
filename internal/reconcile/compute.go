// Package reconcile compares the theoretical material usage implied by dish
// sales and recipes with the usage actually recorded for a store and month.
package reconcile

import (
	"sort"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// Input is the data for one store and month. Rows for other stores or months
// are ignored.
type Input struct {
	Sales     []model.DishSale
	Mappings  []model.DishMaterialMapping
	Usage     []model.MonthlyUsageRecord
	Materials []model.Material
	StoreID   int
	Year      int
	Month     int
}

type saleKey struct {
	size   string
	dishID int
	combo  bool
}

type recipeKey struct {
	size   string
	dishID int
	combo  bool
}

// Compute returns one variance row per material that has theoretical usage from
// a recipe line or recorded actual usage, ordered by material id.
func Compute(in Input) []model.VarianceResult {
	theoretical, details := theoreticalUsage(in)
	actual := actualUsage(in)

	ids := make(map[int]struct{}, len(theoretical)+len(actual))
	for id := range theoretical {
		ids[id] = struct{}{}
	}
	for id := range actual {
		ids[id] = struct{}{}
	}

	materials := make(map[int]model.Material, len(in.Materials))
	for _, m := range in.Materials {
		if m.StoreID == 0 || m.StoreID == in.StoreID {
			materials[m.ID] = m
		}
	}

	results := make([]model.VarianceResult, 0, len(ids))
	for id := range ids {
		th := theoretical[id]
		act := actual[id]
		r := model.VarianceResult{
			MaterialID:       id,
			StoreID:          in.StoreID,
			Year:             in.Year,
			Month:            in.Month,
			TheoreticalUsage: th,
			ActualUsage:      act,
			Variance:         act - th,
			Details:          details[id],
		}
		if th != 0 {
			pct := r.Variance / th * 100
			r.VariancePercentage = &pct
		}
		if m, ok := materials[id]; ok {
			r.MaterialNumber = m.Number
			r.MaterialName = m.Name
			r.Unit = m.Unit
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].MaterialID < results[j].MaterialID })
	return results
}

// theoreticalUsage sums net sales across sales modes per dish, size and combo
// flag, then multiplies through the matching recipe lines.
func theoreticalUsage(in Input) (map[int]float64, map[int][]model.UsageDetail) {
	net := make(map[saleKey]float64)
	var keys []saleKey
	for _, s := range in.Sales {
		if s.StoreID != in.StoreID || s.Year != in.Year || s.Month != in.Month {
			continue
		}
		k := saleKey{dishID: s.DishID, size: s.Size, combo: s.IsCombo}
		if _, seen := net[k]; !seen {
			keys = append(keys, k)
		}
		net[k] += s.NetQuantity()
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].dishID != keys[j].dishID {
			return keys[i].dishID < keys[j].dishID
		}
		if keys[i].size != keys[j].size {
			return keys[i].size < keys[j].size
		}
		return !keys[i].combo && keys[j].combo
	})

	recipes := make(map[recipeKey][]model.DishMaterialMapping)
	for _, m := range in.Mappings {
		if m.StoreID != in.StoreID {
			continue
		}
		k := recipeKey{dishID: m.DishID, size: m.Size, combo: m.Combo}
		recipes[k] = append(recipes[k], m)
	}

	theoretical := make(map[int]float64)
	details := make(map[int][]model.UsageDetail)
	for _, k := range keys {
		qty := net[k]
		for _, line := range recipeLines(recipes, k) {
			usage := qty * line.UsagePerUnit()
			theoretical[line.MaterialID] += usage
			details[line.MaterialID] = append(details[line.MaterialID], model.UsageDetail{
				DishID:      k.dishID,
				Size:        k.size,
				IsCombo:     k.combo,
				NetQuantity: qty,
				Usage:       usage,
			})
		}
	}

	return theoretical, details
}

// recipeLines picks the recipe for a sale. A sized recipe always beats a
// sizeless one; at each size, combo sales prefer combo-specific lines.
func recipeLines(recipes map[recipeKey][]model.DishMaterialMapping, k saleKey) []model.DishMaterialMapping {
	var candidates []recipeKey
	for _, size := range []string{k.size, ""} {
		if k.combo {
			candidates = append(candidates, recipeKey{dishID: k.dishID, size: size, combo: true})
		}
		candidates = append(candidates, recipeKey{dishID: k.dishID, size: size})
	}

	for _, c := range candidates {
		if lines := recipes[c]; len(lines) > 0 {
			return lines
		}
	}
	return nil
}

func actualUsage(in Input) map[int]float64 {
	actual := make(map[int]float64)
	for _, u := range in.Usage {
		if u.StoreID != in.StoreID || u.Year != in.Year || u.Month != in.Month {
			continue
		}
		actual[u.MaterialID] += u.MaterialUsed
	}
	return actual
}
