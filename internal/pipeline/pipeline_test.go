package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/paperwork-flow/internal/classification"
	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/Veraticus/paperwork-flow/internal/testutil"
)

var august = model.Period{Year: 2025, Month: 8}

func newTestPipeline(t *testing.T) (*Pipeline, *testutil.TestDB) {
	t.Helper()
	rules, err := classification.NewDefaultRuleSet()
	require.NoError(t, err)

	db := testutil.SetupTestDB(t)
	p := New(rules, db.Storage)
	p.SetWorkers(4)
	return p, db
}

const cibcExport = `BANK_NAME,Account number,Currency,Ledger date,Transaction type,Description,ADDITIONAL DETAILS,Value date,Amount,Bank reference,Client reference
CIBC,00012345678,CAD,8/4/2025,D,Service Charge,,8/4/2025,120.00,B1,
CIBC,00012345678,CAD,8/5/2025,C,MYSTERY TRANSACTION,,8/5/2025,42.00,,
CIBC,00012345678,CAD,8/6/2025,D,ENBRIDGE GAS    BPY/FAC,,8/6/2025,210.55,,
CIBC,00012345678,CAD,7/30/2025,D,OLD ROW,,7/30/2025,5.00,,
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestClassifyRecords_PreservesOrder(t *testing.T) {
	p, _ := newTestPipeline(t)

	descriptions := []string{"Service Charge", "MYSTERY TRANSACTION", "ENBRIDGE GAS", "UBER HOLDINGS", "INTEREST PAID"}
	var records []model.BankRecord
	for i := 0; i < 40; i++ {
		records = append(records, model.BankRecord{
			SerialNumber:     model.SerialNumber("BMO", "3587", i),
			ShortDescription: descriptions[i%len(descriptions)],
			Debit:            decimal.NewFromInt(int64(100 + i)),
		})
	}

	classified := p.ClassifyRecords(records)
	require.Len(t, classified, len(records))
	for i, c := range classified {
		assert.Equal(t, records[i].SerialNumber, c.Record.SerialNumber)
		assert.Equal(t, p.rules.ClassifyRecord(records[i]), c.Result)
	}
	assert.True(t, classified[1].Result.IsUncategorized())

	assert.Empty(t, p.ClassifyRecords(nil))
}

func TestImportStatement(t *testing.T) {
	ctx := context.Background()
	p, db := newTestPipeline(t)
	path := writeFile(t, "TransactionDetail.csv", cibcExport)

	var calls atomic.Int32
	summary, err := p.ImportFile(ctx, path, august, ImportOptions{
		Progress: func(done, total int) {
			calls.Add(1)
			assert.Equal(t, 3, total)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "CIBC", summary.Bank)
	assert.Equal(t, 3, summary.Count())
	assert.Equal(t, 1, summary.Uncategorized)
	assert.Equal(t, 1, summary.Categories[model.CategoryGas])
	assert.Equal(t, int32(3), calls.Load())
	_, err = uuid.Parse(summary.ImportID)
	assert.NoError(t, err)

	stored, err := db.Storage.GetClassifiedRecords(ctx, august.Start(), august.End())
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, r := range stored {
		assert.Equal(t, summary.ImportID, r.ImportID)
	}
	assert.Equal(t, "CIBC5678_0", stored[0].Record.SerialNumber)

	// Re-importing the same file updates rows in place.
	_, err = p.ImportStatement(ctx, path, august, ImportOptions{})
	require.NoError(t, err)
	stored, err = db.Storage.GetClassifiedRecords(ctx, august.Start(), august.End())
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestImportStatement_DryRun(t *testing.T) {
	ctx := context.Background()
	p, db := newTestPipeline(t)
	path := writeFile(t, "TransactionDetail.csv", cibcExport)

	summary, err := p.ImportStatement(ctx, path, august, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, summary.DryRun)
	assert.Equal(t, 3, summary.Count())

	stored, err := db.Storage.GetClassifiedRecords(ctx, august.Start(), august.End())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestImportStatement_Errors(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t)

	t.Run("no rows in month", func(t *testing.T) {
		path := writeFile(t, "TransactionDetail.csv", cibcExport)
		_, err := p.ImportStatement(ctx, path, model.Period{Year: 2024, Month: 1}, ImportOptions{})
		assert.ErrorIs(t, err, common.ErrNoRecords)
	})

	t.Run("unknown bank", func(t *testing.T) {
		path := writeFile(t, "export.csv", "a,b\n1,2\n")
		_, err := p.ImportStatement(ctx, path, august, ImportOptions{})
		assert.ErrorIs(t, err, common.ErrUnknownBank)
	})

	t.Run("invalid period", func(t *testing.T) {
		_, err := p.ImportStatement(ctx, "TransactionDetail.csv", model.Period{Year: 2025}, ImportOptions{})
		assert.ErrorIs(t, err, model.ErrInvalidPeriod)
	})
}

const ofxExport = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250901120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>CAD
<BANKACCTFROM>
<BANKID>000300002
<ACCTID>1000922
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250701120000[0:GMT]
<DTEND>20250831120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250804120000[0:GMT]
<TRNAMT>-120.00
<FITID>F1
<NAME>Service Charge
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250731120000[0:GMT]
<TRNAMT>-9.00
<FITID>F0
<NAME>JULY FEE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20250831120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestImportOFX(t *testing.T) {
	ctx := context.Background()
	p, db := newTestPipeline(t)
	path := writeFile(t, "download.qfx", ofxExport)

	summary, err := p.ImportFile(ctx, path, august, ImportOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Count())
	assert.Equal(t, "OFX", summary.Bank)

	stored, err := db.Storage.GetClassifiedRecords(ctx, august.Start(), august.End())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "OFX0922_F1", stored[0].Record.SerialNumber)
	assert.Equal(t, time.Date(2025, 8, 4, 0, 0, 0, 0, time.UTC), stored[0].Record.Date)
}

func TestLoadSheetsAndReconcile(t *testing.T) {
	ctx := context.Background()
	p, db := newTestPipeline(t)
	target := Target{StoreID: testutil.DefaultStoreID, Period: august}

	load := func(kind SheetKind, rows [][]string) *LoadSummary {
		t.Helper()
		summary, err := p.LoadRows(ctx, kind, rows, target)
		require.NoError(t, err)
		return summary
	}

	materials := load(SheetMaterials, [][]string{
		{"物料号", "物料描述", "单位"},
		{"1500680.0", "Beef tallow base", "kg"},
		{"1500681", "Tomato base", "bag"},
		{"", "合计", ""},
	})
	assert.Equal(t, 2, materials.Loaded)

	load(SheetDishes, [][]string{
		{"Store report"},
		{"dish_code", "dish_name"},
		{"90001", "Spicy hot pot"},
	})

	recipes := load(SheetRecipes, [][]string{
		{"dish_code", "size", "material_number", "standard_quantity", "loss_rate", "unit_conversion_rate"},
		{"90001", "large", "1500680", "0.25", "1.1", ""},
		{"99999", "large", "1500680", "1", "", ""},
	})
	assert.Equal(t, 1, recipes.Loaded)
	assert.Equal(t, 1, recipes.Skipped)

	sales := load(SheetSales, [][]string{
		{"dish_code", "size", "sales_mode", "sale_amount", "return_amount"},
		{"90001", "large", "dine-in", "100", "2"},
		{"90001", "large", "dine-in", "10", ""},
		{"90001", "large", "takeout", "40", "0"},
	})
	assert.Equal(t, 3, sales.Rows)
	assert.Equal(t, 2, sales.Loaded)

	load(SheetUsage, [][]string{
		{"material_number", "material_used"},
		{"1500680", "44.77"},
	})
	load(SheetInventory, [][]string{
		{"material_number", "beginning", "purchases", "ending"},
		{"1500681", "10", "30", "12"},
	})

	results, err := p.Reconcile(ctx, target.StoreID, august)
	require.NoError(t, err)
	require.Len(t, results, 2)

	ids, err := db.Storage.MaterialIDs(ctx, target.StoreID)
	require.NoError(t, err)

	beef := results[0]
	assert.Equal(t, ids["1500680"], beef.MaterialID)
	assert.Equal(t, "Beef tallow base", beef.MaterialName)
	assert.InDelta(t, 40.7, beef.TheoreticalUsage, 1e-9)
	assert.InDelta(t, 44.77, beef.ActualUsage, 1e-9)
	require.NotNil(t, beef.VariancePercentage)
	assert.InDelta(t, 10.0, *beef.VariancePercentage, 1e-9)

	tomato := results[1]
	assert.InDelta(t, 28.0, tomato.ActualUsage, 1e-9)
	assert.Nil(t, tomato.VariancePercentage)
	assert.Equal(t, "N/A", tomato.PercentageLabel())
}

func TestLoadRows_Errors(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t)

	tests := []struct {
		wantErr error
		target  Target
		name    string
		kind    SheetKind
		rows    [][]string
	}{
		{
			name:    "missing store",
			kind:    SheetMaterials,
			rows:    [][]string{{"material_number"}, {"1"}},
			wantErr: common.ErrInvalidConfig,
		},
		{
			name:    "monthly sheet without period",
			kind:    SheetSales,
			target:  Target{StoreID: 1},
			wantErr: model.ErrInvalidPeriod,
		},
		{
			name:    "missing column",
			kind:    SheetUsage,
			target:  Target{StoreID: 1, Period: august},
			rows:    [][]string{{"material_number", "amount"}, {"1", "2"}},
			wantErr: common.ErrMissingColumn,
		},
		{
			name:    "no data rows",
			kind:    SheetDishes,
			target:  Target{StoreID: 1},
			rows:    [][]string{{"dish_code"}},
			wantErr: common.ErrNoRecords,
		},
		{
			name:    "unknown kind",
			kind:    SheetKind("prices"),
			target:  Target{StoreID: 1},
			wantErr: common.ErrUnsupportedFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.LoadRows(ctx, tt.kind, tt.rows, tt.target)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCode(t *testing.T) {
	assert.Equal(t, "1500680", code(" 1500680.0 "))
	assert.Equal(t, "A.0", code("A.0"))
	assert.Equal(t, "90001", code("90001"))
}

func TestSheetKinds(t *testing.T) {
	var monthly []string
	for _, k := range SheetKinds() {
		if k.Monthly() {
			monthly = append(monthly, string(k))
		}
	}
	assert.Equal(t, "sales,usage,inventory", strings.Join(monthly, ","))
}
