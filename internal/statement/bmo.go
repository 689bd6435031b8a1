package statement

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// BMO reconciliation reports hold one section per account. Each section starts
// with the account name, followed a few rows later by a "Date" header row.
const (
	bmoDate = iota
	_
	bmoDescription
	bmoCustomerRef
	bmoBankRef
	bmoDebit
	bmoCredit
	bmoBalance
	bmoDetails
)

var bmoAccountMarkers = []string{"(BMO - DDA)", "HAI DI LAO"}

var bmoSectionEnd = []string{
	"Generated",
	"End of transactions for the selected date range",
	"Last Balance received",
	"Total Debits:",
	"Total Credits:",
}

const bmoHeaderSearch = 10

func isBMOAccountHeader(s string) bool {
	for _, marker := range bmoAccountMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func isBMOSectionEnd(s string) bool {
	if s == "" || isBMOAccountHeader(s) {
		return true
	}
	for _, marker := range bmoSectionEnd {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// bmoAccountNumber pulls the number out of headers such as
// "COMPANY USD - 00044660798 USD (BMO - DDA)".
func bmoAccountNumber(name string) string {
	_, after, found := strings.Cut(name, " - ")
	if !found {
		return name
	}
	if fields := strings.Fields(after); len(fields) > 0 {
		return fields[0]
	}
	return name
}

func extractBMO(rows [][]string, period model.Period) ([]model.BankRecord, error) {
	var records []model.BankRecord

	for i := 0; i < len(rows); i++ {
		title := cell(rows[i], 0)
		if !isBMOAccountHeader(title) {
			continue
		}
		account := bmoAccountNumber(title)

		start := -1
		for j := i + 1; j < len(rows) && j < i+bmoHeaderSearch; j++ {
			if cell(rows[j], 0) == "Date" {
				start = j + 1
				break
			}
		}
		if start < 0 {
			continue
		}
		if start < len(rows) && strings.Contains(cell(rows[start], 0), "No Data Available") {
			i = start
			continue
		}

		end := start
		for ; end < len(rows); end++ {
			row := rows[end]
			if isBMOSectionEnd(cell(row, 0)) {
				break
			}
			record, ok := bmoRecord(row, account, end, period)
			if ok {
				records = append(records, record)
			}
		}
		i = end - 1
	}

	return records, nil
}

func bmoRecord(row []string, account string, index int, period model.Period) (model.BankRecord, bool) {
	date, err := parseDate(cell(row, bmoDate))
	if err != nil {
		slog.Warn("Skipping BMO row with unreadable date", "row", index, "error", err)
		return model.BankRecord{}, false
	}
	if !period.Contains(date) {
		return model.BankRecord{}, false
	}

	record := model.BankRecord{
		Bank:              string(BankBMO),
		Account:           account,
		SerialNumber:      model.SerialNumber(string(BankBMO), account, index),
		Date:              date,
		ShortDescription:  cell(row, bmoDescription),
		CustomerReference: cell(row, bmoCustomerRef),
		BankReference:     cell(row, bmoBankRef),
	}
	if len(row) > bmoDetails {
		record.FullDescription = cell(row, bmoDetails)
	} else {
		record.FullDescription = record.ShortDescription
	}

	// Some exports shift a reference number into the amount columns.
	record.Debit = bmoAmount(cell(row, bmoDebit), &record)
	record.Credit = bmoAmount(cell(row, bmoCredit), &record)

	if record.IsEmpty() {
		return model.BankRecord{}, false
	}
	return record, true
}

func bmoAmount(s string, record *model.BankRecord) decimal.Decimal {
	amount, err := parseAmount(s)
	if err != nil {
		if record.BankReference == "" && strings.Contains(s, "-") {
			record.BankReference = s
		}
		return decimal.Zero
	}
	return amount
}
