package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paperwork-flow/internal/cli"
	"github.com/Veraticus/paperwork-flow/internal/config"
	"github.com/Veraticus/paperwork-flow/internal/report"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export stored data to Excel",
	}

	bank := &cobra.Command{
		Use:   "bank",
		Short: "Export the classified bank records of a month",
		RunE:  runReportBank,
	}
	bank.Flags().StringP("month", "m", "", "month to export (format: 2025-08)")
	bank.Flags().StringP("output", "o", "", "workbook path")
	_ = bank.MarkFlagRequired("output")

	cmd.AddCommand(bank)
	return cmd
}

func runReportBank(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	period, err := monthFlag(cmd)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.store.GetClassifiedRecords(ctx, period.Start(), period.End())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No bank records stored for "+period.String()))
		return nil
	}

	wb, err := report.NewWorkbook()
	if err != nil {
		return err
	}
	defer func() { _ = wb.Close() }()

	if err := wb.WriteBankSheet("Bank "+period.String(), records); err != nil {
		return fmt.Errorf("failed to write bank sheet: %w", err)
	}
	if err := wb.SaveAs(config.ExpandPath(output)); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d records to %s", len(records), output)))
	return nil
}
