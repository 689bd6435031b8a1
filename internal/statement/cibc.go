package statement

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
)

var cibcRequired = []string{"Ledger date", "Transaction type", "Description", "Amount"}

// extractCIBC reads CIBC transaction detail exports. Newer exports carry a
// BANK_NAME column and an ADDITIONAL DETAILS column appended to the description.
func extractCIBC(rows [][]string, period model.Period) ([]model.BankRecord, error) {
	at := findHeader(rows, cibcRequired...)
	if at < 0 {
		var h header
		if len(rows) > 0 {
			h = newHeader(rows[0])
		}
		return nil, fmt.Errorf("%w: %s", common.ErrMissingColumn, strings.Join(h.missing(cibcRequired...), ", "))
	}
	h := newHeader(rows[at])
	data := rows[at+1:]

	var account string
	if len(data) > 0 {
		account = h.get(data[0], "Account number")
	}

	var records []model.BankRecord
	for idx, row := range data {
		date, err := parseDate(h.get(row, "Ledger date"))
		if err != nil {
			slog.Warn("Skipping CIBC row with unreadable date", "row", idx, "error", err)
			continue
		}
		if !period.Contains(date) {
			continue
		}

		amount, err := parseAmount(h.get(row, "Amount"))
		if err != nil {
			slog.Warn("Skipping CIBC row with unreadable amount", "row", idx, "error", err)
			continue
		}

		description := h.get(row, "Description")
		if extra := h.get(row, "ADDITIONAL DETAILS"); extra != "" {
			description = strings.TrimSpace(description + " " + extra)
		}

		record := model.BankRecord{
			Bank:              string(BankCIBC),
			Account:           account,
			SerialNumber:      model.SerialNumber(string(BankCIBC), account, idx),
			Date:              date,
			ShortDescription:  h.get(row, "Description"),
			FullDescription:   description,
			CustomerReference: h.get(row, "Client reference"),
			BankReference:     h.get(row, "Bank reference"),
		}
		record.Debit, record.Credit = cibcSides(h.get(row, "Transaction type"), amount)
		if record.IsEmpty() {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// cibcSides splits an amount into debit and credit using the transaction type,
// falling back to the amount's sign.
func cibcSides(kind string, amount decimal.Decimal) (debit, credit decimal.Decimal) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	switch {
	case kind == "d" || strings.Contains(kind, "debit"):
		return amount.Abs(), decimal.Zero
	case kind == "c" || strings.Contains(kind, "credit"):
		return decimal.Zero, amount.Abs()
	case amount.IsNegative():
		return amount.Abs(), decimal.Zero
	default:
		return decimal.Zero, amount
	}
}
