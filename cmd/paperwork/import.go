package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paperwork-flow/internal/cli"
	"github.com/Veraticus/paperwork-flow/internal/pipeline"
	"github.com/Veraticus/paperwork-flow/internal/statement"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank statements and store sheets",
	}

	cmd.AddCommand(importBankCmd())
	for _, kind := range pipeline.SheetKinds() {
		cmd.AddCommand(importSheetCmd(kind))
	}

	return cmd
}

func importBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank <files...>",
		Short: "Import and classify bank statements",
		Long: `Import BMO, RBC or CIBC statement exports (xlsx, xls, csv) and OFX/QFX
files. Records dated in the given month are classified and stored; importing
the same file again updates the stored records in place.

Examples:
  paperwork import bank ReconciliationReport.xls --month 2025-08
  paperwork import bank ~/Downloads/*.csv --month 2025-08 --dry-run
  paperwork import bank export.xlsx --month 2025-08 --bank cibc`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportBank,
	}

	cmd.Flags().StringP("month", "m", "", "month to import (format: 2025-08)")
	cmd.Flags().BoolP("dry-run", "d", false, "classify without saving")
	cmd.Flags().String("bank", "", "skip detection and parse as this bank (bmo, rbc, cibc)")

	return cmd
}

func runImportBank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	period, err := monthFlag(cmd)
	if err != nil {
		return err
	}

	opts := pipeline.ImportOptions{DryRun: dryRun}
	if raw, _ := cmd.Flags().GetString("bank"); raw != "" {
		if opts.Bank, err = statement.ParseBank(raw); err != nil {
			return err
		}
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	var summaries []*pipeline.ImportSummary
	failed := 0

	for _, path := range files {
		var progress *cli.Progress
		opts.Progress = func(done, total int) {
			if progress == nil {
				progress = cli.NewProgress(cmd.ErrOrStderr(), total, "Classifying "+filepath.Base(path))
			}
			progress.Set(done)
		}

		summary, err := a.pipeline.ImportFile(ctx, path, period, opts)
		if progress != nil {
			progress.Finish()
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("Failed to import file", "file", path, "error", err)
			fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %v", filepath.Base(path), err)))
			failed++
			continue
		}
		summaries = append(summaries, summary)
	}

	for _, s := range summaries {
		fmt.Fprintln(out, cli.RenderBox(filepath.Base(s.File), formatImportSummary(s)))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(files))
	}
	return nil
}

func formatImportSummary(s *pipeline.ImportSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bank: %s  Records: %d\n", s.Bank, s.Count())

	categories := make([]string, 0, len(s.Categories))
	for c := range s.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		fmt.Fprintf(&b, "  %-24s %d\n", c, s.Categories[c])
	}

	switch {
	case s.Uncategorized > 0:
		b.WriteString(cli.FormatWarning(fmt.Sprintf("%d records need manual classification", s.Uncategorized)))
	default:
		b.WriteString(cli.FormatSuccess("every record classified"))
	}
	if s.DryRun {
		b.WriteString("\n" + cli.SubtleStyle.Render("dry run: nothing saved"))
	}
	return b.String()
}

func importSheetCmd(kind pipeline.SheetKind) *cobra.Command {
	cmd := &cobra.Command{
		Use:   string(kind) + " <file>",
		Short: fmt.Sprintf("Load a %s sheet for a store", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportSheet(cmd, kind, args[0])
		},
	}

	cmd.Flags().Int("store", 0, "store id")
	if kind.Monthly() {
		cmd.Flags().StringP("month", "m", "", "month the figures belong to (format: 2025-08)")
	}

	return cmd
}

func runImportSheet(cmd *cobra.Command, kind pipeline.SheetKind, path string) error {
	ctx := cmd.Context()

	storeID, err := storeFlag(cmd)
	if err != nil {
		return err
	}
	target := pipeline.Target{StoreID: storeID}
	if kind.Monthly() {
		if target.Period, err = monthFlag(cmd); err != nil {
			return err
		}
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.pipeline.LoadSheet(ctx, kind, path, target)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Loaded %d %s rows from %s", summary.Loaded, kind, filepath.Base(path))
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
	if summary.Skipped > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning(fmt.Sprintf("%d rows skipped, see the warnings above", summary.Skipped)))
	}
	return nil
}
