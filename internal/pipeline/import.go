package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/Veraticus/paperwork-flow/internal/ofx"
	"github.com/Veraticus/paperwork-flow/internal/statement"
)

// ImportOptions controls a statement import.
type ImportOptions struct {
	Progress ProgressFunc
	// Bank skips detection when set.
	Bank   statement.Bank
	DryRun bool
}

// ImportSummary describes the outcome of one imported file.
type ImportSummary struct {
	Categories    map[string]int
	ImportID      string
	File          string
	Bank          string
	Records       []model.ClassifiedRecord
	Uncategorized int
	DryRun        bool
}

// Count returns the number of records imported.
func (s *ImportSummary) Count() int {
	return len(s.Records)
}

// ImportFile imports a statement of any supported type, choosing the reader
// from the file extension.
func (p *Pipeline) ImportFile(ctx context.Context, path string, period model.Period, opts ImportOptions) (*ImportSummary, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return p.ImportOFX(ctx, path, period, opts)
	default:
		return p.ImportStatement(ctx, path, period, opts)
	}
}

// ImportStatement reads a spreadsheet statement, classifies the records dated
// in period and stores them unless opts.DryRun is set.
func (p *Pipeline) ImportStatement(ctx context.Context, path string, period model.Period, opts ImportOptions) (*ImportSummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	rows, err := statement.ReadRows(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}

	bank := opts.Bank
	if bank == "" {
		if bank, err = statement.DetectBank(path, rows); err != nil {
			return nil, err
		}
	}

	records, err := statement.Extract(bank, rows, period)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", filepath.Base(path), err)
	}

	return p.save(ctx, path, string(bank), records, opts)
}

// ImportOFX reads an OFX or QFX download and imports the records dated in period.
func (p *Pipeline) ImportOFX(ctx context.Context, path string, period model.Period, opts ImportOptions) (*ImportSummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = file.Close() }()

	parsed, err := ofx.NewParser().ParseFile(ctx, file)
	if err != nil {
		return nil, err
	}

	bank := ofx.BankCode
	records := make([]model.BankRecord, 0, len(parsed))
	for _, r := range parsed {
		if period.Contains(r.Date) {
			records = append(records, r)
			bank = r.Bank
		}
	}

	return p.save(ctx, path, bank, records, opts)
}

func (p *Pipeline) save(ctx context.Context, path, bank string, records []model.BankRecord, opts ImportOptions) (*ImportSummary, error) {
	summary := &ImportSummary{
		ImportID:   uuid.NewString(),
		File:       path,
		Bank:       bank,
		Categories: make(map[string]int),
		DryRun:     opts.DryRun,
	}

	if len(records) == 0 {
		return summary, fmt.Errorf("%w: %s", common.ErrNoRecords, filepath.Base(path))
	}

	summary.Records = p.classify(records, summary.ImportID, opts.Progress)
	for _, r := range summary.Records {
		summary.Categories[r.Result.Category]++
		if r.Result.IsUncategorized() {
			summary.Uncategorized++
		}
	}

	if !opts.DryRun {
		err := common.WithRetry(ctx, func() error {
			return p.store.UpsertClassifiedRecords(ctx, summary.Records)
		}, p.retry)
		if err != nil {
			return summary, fmt.Errorf("failed to save records from %s: %w", filepath.Base(path), err)
		}
	}

	slog.Info("Imported bank statement",
		"file", filepath.Base(path),
		"bank", bank,
		"import_id", summary.ImportID,
		"records", summary.Count(),
		"uncategorized", summary.Uncategorized,
		"dry_run", opts.DryRun)

	return summary, nil
}
