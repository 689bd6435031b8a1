package statement

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
)

var rbcRequired = []string{"Date", "Withdrawals", "Deposits"}

// extractRBC reads the RBC business account CSV. Pending transactions come
// first and carry no balance, so rows before the first balance are skipped.
func extractRBC(rows [][]string, period model.Period) ([]model.BankRecord, error) {
	at := findHeader(rows, rbcRequired...)
	if at < 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingColumn, strings.Join(rbcRequired, ", "))
	}
	h := newHeader(rows[at])
	data := rows[at+1:]

	var account string
	if len(data) > 0 {
		account = h.get(data[0], "Account Number")
	}

	var records []model.BankRecord
	started := false
	for idx, row := range data {
		if !started {
			if h.get(row, "Balance") == "" {
				continue
			}
			started = true
		}

		date, err := parseDate(h.get(row, "Date"))
		if err != nil {
			slog.Warn("Skipping RBC row with unreadable date", "row", idx, "error", err)
			continue
		}
		if !period.Contains(date) {
			continue
		}

		debit, err := parseAmount(h.get(row, "Withdrawals"))
		if err != nil {
			slog.Warn("Skipping RBC row with unreadable withdrawal", "row", idx, "error", err)
			continue
		}
		credit, err := parseAmount(h.get(row, "Deposits"))
		if err != nil {
			slog.Warn("Skipping RBC row with unreadable deposit", "row", idx, "error", err)
			continue
		}

		var parts []string
		for n := 1; n <= 5; n++ {
			if part := h.get(row, fmt.Sprintf("Description %d", n)); part != "" {
				parts = append(parts, part)
			}
		}

		record := model.BankRecord{
			Bank:             string(BankRBC),
			Account:          account,
			SerialNumber:     model.SerialNumber(string(BankRBC), account, idx),
			Date:             date,
			ShortDescription: h.get(row, "Description 1"),
			FullDescription:  strings.Join(parts, " | "),
			Debit:            debit.Abs(),
			Credit:           credit.Abs(),
		}
		if ref := h.get(row, "Description 2"); looksLikeReference(ref) {
			record.CustomerReference = ref
		}
		if record.IsEmpty() {
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func looksLikeReference(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit) || strings.Contains(s, "-")
}
