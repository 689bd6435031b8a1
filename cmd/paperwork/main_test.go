package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/config"
	"github.com/Veraticus/paperwork-flow/internal/model"
)

const cibcExport = `BANK_NAME,Account number,Currency,Ledger date,Transaction type,Description,ADDITIONAL DETAILS,Value date,Amount,Bank reference,Client reference
CIBC,00012345678,CAD,8/4/2025,D,Service Charge,,8/4/2025,120.00,B1,
CIBC,00012345678,CAD,8/5/2025,C,MYSTERY TRANSACTION,,8/5/2025,42.00,,
`

// setupViper points the global configuration at a temporary database.
func setupViper(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	viper.Set("database.path", filepath.Join(dir, "paperwork.db"))
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadRuleSet(t *testing.T) {
	builtIn, err := loadRuleSet(&config.Config{})
	require.NoError(t, err)

	dir := t.TempDir()
	path := writeFile(t, dir, "rules.yaml", `rules:
  - name: test-vendor
    pattern: "ACME WIDGETS"
    direction: debit
    result:
      category: Material Expense
      payment_detail: Widgets
`)

	rules, err := loadRuleSet(&config.Config{RulesFile: path})
	require.NoError(t, err)
	assert.Equal(t, builtIn.Len()+1, rules.Len())

	debit := model.DirectionDebit
	result := rules.Classify("ACME WIDGETS INV 42", nil, &debit)
	assert.Equal(t, model.CategoryMaterialExpense, result.Category)
	assert.Equal(t, "Widgets", result.PaymentDetail)

	bad := writeFile(t, dir, "bad.yaml", "rules:\n  - pattern: RENT\n    amount: lots\n    result: {category: Rent}\n")
	_, err = loadRuleSet(&config.Config{RulesFile: bad})
	assert.ErrorIs(t, err, common.ErrInvalidRule)

	_, err = loadRuleSet(&config.Config{RulesFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "x")
	b := writeFile(t, dir, "b.csv", "x")

	files, err := expandFiles([]string{filepath.Join(dir, "*.csv")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{a, b}, files)

	files, err = expandFiles([]string{a, filepath.Join(dir, "*.xlsx")})
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)

	_, err = expandFiles([]string{filepath.Join(dir, "*.ofx")})
	assert.Error(t, err)
}

func TestFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("month", "", "")
	cmd.Flags().Int("store", 0, "")

	_, err := monthFlag(cmd)
	assert.Error(t, err)
	_, err = storeFlag(cmd)
	assert.Error(t, err)

	require.NoError(t, cmd.Flags().Set("month", "2025-08"))
	require.NoError(t, cmd.Flags().Set("store", "3"))

	period, err := monthFlag(cmd)
	require.NoError(t, err)
	assert.Equal(t, model.Period{Year: 2025, Month: 8}, period)

	storeID, err := storeFlag(cmd)
	require.NoError(t, err)
	assert.Equal(t, 3, storeID)

	require.NoError(t, cmd.Flags().Set("month", "August"))
	_, err = monthFlag(cmd)
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
}

func TestImportBankAndReport(t *testing.T) {
	dir := setupViper(t)
	statementPath := writeFile(t, dir, "TransactionDetail.csv", cibcExport)

	out, err := execute(t, importCmd(), "bank", statementPath, "--month", "2025-08")
	require.NoError(t, err)
	assert.Contains(t, out, "TransactionDetail.csv")
	assert.Contains(t, out, "1 records need manual classification")

	reportPath := filepath.Join(dir, "out", "bank.xlsx")
	out, err = execute(t, reportCmd(), "bank", "--month", "2025-08", "--output", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 records")

	f, err := excelize.OpenFile(reportPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Bank 2025-08")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "CIBC5678_0", rows[1][2])
}

func TestImportBank_Errors(t *testing.T) {
	dir := setupViper(t)
	statementPath := writeFile(t, dir, "TransactionDetail.csv", cibcExport)

	_, err := execute(t, importCmd(), "bank", statementPath)
	assert.Error(t, err)

	_, err = execute(t, importCmd(), "bank", statementPath, "--month", "2025-08", "--bank", "hsbc")
	assert.ErrorIs(t, err, common.ErrUnknownBank)

	_, err = execute(t, importCmd(), "bank", statementPath, "--month", "2025-07")
	assert.ErrorContains(t, err, "1 of 1 files failed")
}

func TestReconcileCommand(t *testing.T) {
	dir := setupViper(t)

	materials := writeFile(t, dir, "materials.csv", "Material Number,Material Name,Unit\n1500680,Beef,kg\n")
	dishes := writeFile(t, dir, "dishes.csv", "Dish Code,Dish Name\n90001,Beef Noodles\n")
	recipes := writeFile(t, dir, "recipes.csv", "Dish Code,Size,Material Number,Standard Quantity\n90001,,1500680,0.5\n")
	sales := writeFile(t, dir, "sales.csv", "Dish Code,Size,Sales Mode,Sale Amount,Return Amount\n90001,,dine-in,100,0\n")
	usage := writeFile(t, dir, "usage.csv", "Material Number,Material Used\n1500680,60\n")

	for _, step := range []struct {
		path string
		args []string
		kind string
	}{
		{materials, nil, "materials"},
		{dishes, nil, "dishes"},
		{recipes, nil, "recipes"},
		{sales, []string{"--month", "2025-08"}, "sales"},
		{usage, []string{"--month", "2025-08"}, "usage"},
	} {
		args := append([]string{step.kind, step.path, "--store", "1"}, step.args...)
		_, err := execute(t, importCmd(), args...)
		require.NoError(t, err, step.kind)
	}

	reportPath := filepath.Join(dir, "variance.xlsx")
	out, err := execute(t, reconcileCmd(), "--store", "1", "--month", "2025-08", "--output", reportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1500680")
	assert.Contains(t, out, "20.0%")
	assert.Contains(t, out, "1 materials, 0 flagged above 20%")

	_, err = os.Stat(reportPath)
	assert.NoError(t, err)

	out, err = execute(t, reconcileCmd(), "--store", "1", "--month", "2025-08", "--threshold", "0.1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 flagged above 10%")

	_, err = execute(t, reconcileCmd(), "--month", "2025-08")
	assert.Error(t, err)
}

func TestMigrateCommand(t *testing.T) {
	setupViper(t)

	out, err := execute(t, migrateCmd(), "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema version: 0")

	out, err = execute(t, migrateCmd())
	require.NoError(t, err)
	assert.NotContains(t, out, "Schema version: 0")
}
