package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func ptr(f float64) *float64 { return &f }

func testResults() []model.VarianceResult {
	return []model.VarianceResult{
		{
			MaterialNumber:     "1500680",
			MaterialName:       "Beef",
			Unit:               "kg",
			TheoreticalUsage:   40,
			ActualUsage:        50,
			Variance:           10,
			VariancePercentage: ptr(25),
			Details: []model.UsageDetail{
				{DishID: 90001, Size: "L", Usage: 30},
				{DishID: 90002, IsCombo: true, Usage: 10},
			},
		},
		{
			MaterialNumber:     "1500681",
			MaterialName:       "Tomato",
			Unit:               "kg",
			TheoreticalUsage:   20,
			ActualUsage:        21,
			Variance:           1,
			VariancePercentage: ptr(5),
		},
		{
			MaterialNumber: "1500682",
			MaterialName:   "Salt",
			Unit:           "g",
			ActualUsage:    3,
			Variance:       3,
		},
	}
}

func TestWriteVarianceSheet(t *testing.T) {
	w, err := NewWorkbook()
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, w.WriteVarianceSheet("Variance", 1, model.Period{Year: 2025, Month: 8}, testResults(), 0.2))
	assert.Equal(t, []string{"Variance"}, w.Sheets())

	rows, err := w.file.GetRows("Variance")
	require.NoError(t, err)
	require.Len(t, rows, varianceTableStart+3)

	assert.Equal(t, []string{"Material Variance Report", "Store 1", "2025-08"}, rows[0])
	assert.Equal(t, []string{"Materials", "3"}, rows[2])
	assert.Equal(t, "1", rows[3][1])
	assert.Equal(t, []string{"Without theoretical usage", "1"}, rows[4])
	assert.Equal(t, "Material Number", rows[varianceTableStart-1][0])

	beef := rows[varianceTableStart]
	assert.Equal(t, "1500680", beef[0])
	assert.Equal(t, "90001/L: 30.00; 90002-combo: 10.00", beef[3])
	assert.Equal(t, "25.0%", beef[7])
	assert.Equal(t, "over-used", beef[8])

	salt := rows[varianceTableStart+2]
	assert.Equal(t, "N/A", salt[7])
	assert.Equal(t, "used without recipe", salt[8])

	flagged, err := w.file.GetCellStyle("Variance", "A8")
	require.NoError(t, err)
	assert.Equal(t, w.styles.flagged, flagged)

	normal, err := w.file.GetCellStyle("Variance", "A9")
	require.NoError(t, err)
	assert.NotEqual(t, w.styles.flagged, normal)
}

func TestWriteBankSheet(t *testing.T) {
	w, err := NewWorkbook()
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	date := time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC)
	records := []model.ClassifiedRecord{
		{
			Record: model.BankRecord{
				Date:            date,
				Bank:            "CIBC",
				SerialNumber:    "CIBC5678_0",
				FullDescription: "ENBRIDGE GAS",
				Debit:           decimal.RequireFromString("120.50"),
			},
			Result: model.ClassificationResult{
				Category:            model.CategoryGas,
				PaymentDetail:       "Utilities",
				NeedsDocumentNumber: true,
				NeedsAttachment:     true,
			},
		},
		{
			Record: model.BankRecord{
				Date:             date,
				Bank:             "CIBC",
				SerialNumber:     "CIBC5678_1",
				ShortDescription: "MYSTERY",
				Credit:           decimal.RequireFromString("10"),
			},
			Result: model.Uncategorized(),
		},
	}

	require.NoError(t, w.WriteBankSheet("Bank", records))

	rows, err := w.file.GetRows("Bank")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Check Usage", rows[0][11])
	assert.Equal(t, []string{"2025-08-04", "CIBC", "CIBC5678_0", "ENBRIDGE GAS", "120.5", "", model.CategoryGas, "Utilities", "Y", "Y"}, rows[1])
	assert.Equal(t, "MYSTERY", rows[2][3])
	assert.Equal(t, "10", rows[2][5])
	assert.Equal(t, model.CategoryUncategorized, rows[2][6])

	review, err := w.file.GetCellStyle("Bank", "A3")
	require.NoError(t, err)
	assert.Equal(t, w.styles.review, review)
}

func TestWorkbookSheets(t *testing.T) {
	w, err := NewWorkbook()
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	assert.Nil(t, w.Sheets())
	assert.Error(t, w.SaveAs(filepath.Join(t.TempDir(), "empty.xlsx")))

	period := model.Period{Year: 2025, Month: 8}
	require.NoError(t, w.WriteVarianceSheet("Store 1", 1, period, testResults(), 0.2))
	require.NoError(t, w.WriteVarianceSheet("Store 2", 2, period, nil, 0.2))
	assert.Error(t, w.WriteVarianceSheet("Store 1", 1, period, nil, 0.2))
	assert.Equal(t, []string{"Store 1", "Store 2"}, w.Sheets())
}

func TestSaveAs(t *testing.T) {
	w, err := NewWorkbook()
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, w.WriteVarianceSheet("Variance", 1, model.Period{Year: 2025, Month: 8}, testResults(), 0.2))

	path := filepath.Join(t.TempDir(), "reports", "variance.xlsx")
	require.NoError(t, w.SaveAs(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Variance")
	require.NoError(t, err)
	assert.Equal(t, "Tomato", rows[varianceTableStart+1][1])
}
