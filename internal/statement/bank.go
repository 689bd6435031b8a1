package statement

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
)

// Bank identifies the institution that produced a statement export.
type Bank string

// Supported banks.
const (
	BankBMO  Bank = "BMO"
	BankRBC  Bank = "RBC"
	BankCIBC Bank = "CIBC"
)

// ParseBank parses a bank code case-insensitively.
func ParseBank(s string) (Bank, error) {
	switch Bank(strings.ToUpper(strings.TrimSpace(s))) {
	case BankBMO:
		return BankBMO, nil
	case BankRBC:
		return BankRBC, nil
	case BankCIBC:
		return BankCIBC, nil
	default:
		return "", fmt.Errorf("%w: %q", common.ErrUnknownBank, s)
	}
}

// extractFunc turns the rows of one export into records dated inside period.
type extractFunc func(rows [][]string, period model.Period) ([]model.BankRecord, error)

var extractors = map[Bank]extractFunc{
	BankBMO:  extractBMO,
	BankRBC:  extractRBC,
	BankCIBC: extractCIBC,
}

// DetectBank works out which bank produced a file. The export's file name is
// checked first, then its contents.
func DetectBank(path string, rows [][]string) (Bank, error) {
	name := filepath.Base(path)
	switch {
	case strings.HasPrefix(name, "ReconciliationReport"):
		return BankBMO, nil
	case strings.HasPrefix(name, "RBC"):
		return BankRBC, nil
	case strings.HasPrefix(name, "Transaction"):
		return BankCIBC, nil
	}

	for _, row := range rows {
		if isBMOAccountHeader(cell(row, 0)) {
			return BankBMO, nil
		}
		h := newHeader(row)
		switch {
		case h.has("Description 1", "Withdrawals", "Deposits"):
			return BankRBC, nil
		case h.has("Ledger date", "Transaction type"):
			return BankCIBC, nil
		}
	}

	return "", fmt.Errorf("%w: %s", common.ErrUnknownBank, name)
}

// Extract converts statement rows into bank records for the given month.
// Rows outside the month and rows moving no money are dropped.
func Extract(bank Bank, rows [][]string, period model.Period) ([]model.BankRecord, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	extract, ok := extractors[bank]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownBank, bank)
	}

	records, err := extract(rows, period)
	if err != nil {
		return nil, fmt.Errorf("%s statement: %w", bank, err)
	}

	slog.Debug("Extracted bank records",
		"bank", bank,
		"period", period.String(),
		"records", len(records))

	return records, nil
}
