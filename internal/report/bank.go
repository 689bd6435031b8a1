package report

import (
	"github.com/Veraticus/paperwork-flow/internal/model"
)

var bankHeader = []any{
	"Date",
	"Bank",
	"Serial Number",
	"Description",
	"Debit",
	"Credit",
	"Category",
	"Payment Detail",
	"Document Number",
	"Attachment",
	"Offline Payment",
	"Check Usage",
}

// WriteBankSheet adds a sheet listing classified bank records. Records left
// uncategorized are highlighted for manual review.
func (w *Workbook) WriteBankSheet(name string, records []model.ClassifiedRecord) error {
	if err := w.newSheet(name); err != nil {
		return err
	}

	if err := w.writeRows(name, prepareBankRows(records)); err != nil {
		return err
	}
	if err := w.styleRow(name, 1, len(bankHeader), w.styles.header); err != nil {
		return err
	}
	for i, r := range records {
		if r.Result.IsUncategorized() {
			if err := w.styleRow(name, i+2, len(bankHeader), w.styles.review); err != nil {
				return err
			}
		}
	}

	return w.setWidths(name, []float64{12, 8, 16, 48, 12, 12, 24, 28, 10, 10, 10, 10})
}

func prepareBankRows(records []model.ClassifiedRecord) [][]any {
	values := make([][]any, 0, len(records)+1)
	values = append(values, bankHeader)

	for _, r := range records {
		debit, _ := r.Record.Debit.Float64()
		credit, _ := r.Record.Credit.Float64()
		values = append(values, []any{
			r.Record.Date.Format("2006-01-02"),
			r.Record.Bank,
			r.Record.SerialNumber,
			r.Record.Description(),
			amountCell(debit),
			amountCell(credit),
			r.Result.Category,
			r.Result.PaymentDetail,
			flag(r.Result.NeedsDocumentNumber),
			flag(r.Result.NeedsAttachment),
			flag(r.Result.RegisterOfflinePayment),
			flag(r.Result.RegisterCheckUsage),
		})
	}

	return values
}

func amountCell(v float64) any {
	if v == 0 {
		return ""
	}
	return v
}

func flag(b bool) string {
	if b {
		return "Y"
	}
	return ""
}
