package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/paperwork-flow/internal/classification"
	"github.com/Veraticus/paperwork-flow/internal/model"
)

// WriteRules prints rule definitions in evaluation order.
func WriteRules(w io.Writer, defs []classification.Definition) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		HeaderStyle.Render("#"),
		HeaderStyle.Render("Rule"),
		HeaderStyle.Render("Category"),
		HeaderStyle.Render("Payment Detail"))
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 3),
		strings.Repeat("-", 30),
		strings.Repeat("-", 20),
		strings.Repeat("-", 30))

	for i, def := range defs {
		rule := def.Rule.String()
		if def.Rule.Name != "" {
			rule = def.Rule.Name + " " + SubtleStyle.Render(rule)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, rule, def.Result.Category, def.Result.PaymentDetail)
	}

	return tw.Flush()
}

// FormatResult renders a classification result as labelled lines.
func FormatResult(r model.ClassificationResult) string {
	category := SuccessStyle.Render(r.Category)
	if r.IsUncategorized() {
		category = WarningStyle.Render(r.Category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Category:         %s\n", category)
	fmt.Fprintf(&b, "Payment detail:   %s\n", r.PaymentDetail)
	fmt.Fprintf(&b, "Document number:  %s\n", yesNo(r.NeedsDocumentNumber))
	fmt.Fprintf(&b, "Attachment:       %s\n", yesNo(r.NeedsAttachment))
	fmt.Fprintf(&b, "Offline payment:  %s\n", yesNo(r.RegisterOfflinePayment))
	fmt.Fprintf(&b, "Check usage:      %s", yesNo(r.RegisterCheckUsage))
	return b.String()
}

// WriteVariance prints variance rows, marking those above threshold.
func WriteVariance(w io.Writer, results []model.VarianceResult, threshold float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
		HeaderStyle.Render("Material"),
		HeaderStyle.Render("Name"),
		HeaderStyle.Render("Theoretical"),
		HeaderStyle.Render("Actual"),
		HeaderStyle.Render("Variance"),
		HeaderStyle.Render("%"))

	for _, r := range results {
		label := r.PercentageLabel()
		if r.Exceeds(threshold) {
			label = ErrorStyle.Render(label)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%s\t\n",
			r.MaterialNumber, r.MaterialName, r.TheoreticalUsage, r.ActualUsage, r.Variance, label)
	}

	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return SubtleStyle.Render("no")
}
