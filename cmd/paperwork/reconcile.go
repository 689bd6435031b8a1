package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paperwork-flow/internal/cli"
	"github.com/Veraticus/paperwork-flow/internal/config"
	"github.com/Veraticus/paperwork-flow/internal/reconcile"
	"github.com/Veraticus/paperwork-flow/internal/report"
)

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare theoretical and actual material usage for a store",
		Long: `Compute theoretical material usage from the month's dish sales and recipes,
compare it with the recorded usage, and flag materials whose variance exceeds
the configured threshold.

Examples:
  paperwork reconcile --store 1 --month 2025-08
  paperwork reconcile --store 1 --month 2025-08 --output variance.xlsx`,
		RunE: runReconcile,
	}

	cmd.Flags().Int("store", 0, "store id")
	cmd.Flags().StringP("month", "m", "", "month to reconcile (format: 2025-08)")
	cmd.Flags().StringP("output", "o", "", "write an Excel variance report to this path")
	cmd.Flags().Float64("threshold", 0, "flag variances above this fraction (default: report.variance_threshold)")

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	storeID, err := storeFlag(cmd)
	if err != nil {
		return err
	}
	period, err := monthFlag(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	threshold := a.cfg.VarianceThreshold
	if cmd.Flags().Changed("threshold") {
		threshold, _ = cmd.Flags().GetFloat64("threshold")
	}

	results, err := a.pipeline.Reconcile(ctx, storeID, period)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("No sales or usage recorded for store %d in %s", storeID, period)))
		return nil
	}

	if err := cli.WriteVariance(out, results, threshold); err != nil {
		return err
	}

	summary := reconcile.Summarize(results, threshold)
	fmt.Fprintf(out, "\n%d materials, %d flagged above %.0f%%, %d without theoretical usage\n",
		summary.Materials, len(summary.Flagged), threshold*100, summary.Undefined)

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return nil
	}

	wb, err := report.NewWorkbook()
	if err != nil {
		return err
	}
	defer func() { _ = wb.Close() }()

	name := fmt.Sprintf("Store %d %s", storeID, period)
	if err := wb.WriteVarianceSheet(name, storeID, period, results, threshold); err != nil {
		return fmt.Errorf("failed to write variance sheet: %w", err)
	}
	if err := wb.SaveAs(config.ExpandPath(output)); err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess("Report written to "+output))
	return nil
}
