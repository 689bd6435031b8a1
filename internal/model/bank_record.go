package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BankRecord is one normalized line of a bank statement.
type BankRecord struct {
	Date              time.Time
	Debit             decimal.Decimal
	Credit            decimal.Decimal
	Bank              string
	Account           string
	SerialNumber      string
	ShortDescription  string
	FullDescription   string
	CustomerReference string
	BankReference     string
}

// IsEmpty reports whether the record moves no money. Such rows are discarded on import.
func (r BankRecord) IsEmpty() bool {
	return r.Debit.IsZero() && r.Credit.IsZero()
}

// Direction returns credit for deposits, debit for withdrawals and nil for empty records.
func (r BankRecord) Direction() *Direction {
	switch {
	case !r.Credit.IsZero():
		return DirectionCredit.Ptr()
	case !r.Debit.IsZero():
		return DirectionDebit.Ptr()
	default:
		return nil
	}
}

// Amount returns the magnitude of the money moved, or nil for empty records.
func (r BankRecord) Amount() *float64 {
	var d decimal.Decimal
	switch {
	case !r.Credit.IsZero():
		d = r.Credit
	case !r.Debit.IsZero():
		d = r.Debit
	default:
		return nil
	}
	f, _ := d.Abs().Float64()
	return &f
}

// Description returns the text used for classification: the full description when
// the bank supplies one, otherwise the short one.
func (r BankRecord) Description() string {
	if full := strings.TrimSpace(r.FullDescription); full != "" {
		return full
	}
	return strings.TrimSpace(r.ShortDescription)
}

// SerialNumber builds the per-file identifier of a statement row: the bank code,
// the last four digits of the account and the row index.
func SerialNumber(bank, account string, row int) string {
	return fmt.Sprintf("%s_%d", SerialPrefix(bank, account), row)
}

// SerialPrefix is the bank code followed by the last four digits of the account.
func SerialPrefix(bank, account string) string {
	digits := make([]rune, 0, len(account))
	for _, c := range account {
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return strings.ToUpper(bank) + string(digits)
}
