package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/paperwork-flow/internal/model"
)

// UpsertClassifiedRecords stores classified bank records. Re-importing a record
// with the same serial number and date replaces its previous values.
func (s *SQLiteStorage) UpsertClassifiedRecords(ctx context.Context, records []model.ClassifiedRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateClassifiedRecords(records); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO bank_records (
				serial_number, bank, account, date,
				short_description, full_description, customer_reference, bank_reference,
				debit, credit, category, payment_detail,
				needs_document_number, needs_attachment, register_offline_payment, register_check_usage,
				import_id, classified_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(serial_number, date) DO UPDATE SET
				bank = excluded.bank,
				account = excluded.account,
				short_description = excluded.short_description,
				full_description = excluded.full_description,
				customer_reference = excluded.customer_reference,
				bank_reference = excluded.bank_reference,
				debit = excluded.debit,
				credit = excluded.credit,
				category = excluded.category,
				payment_detail = excluded.payment_detail,
				needs_document_number = excluded.needs_document_number,
				needs_attachment = excluded.needs_attachment,
				register_offline_payment = excluded.register_offline_payment,
				register_check_usage = excluded.register_check_usage,
				import_id = excluded.import_id,
				classified_at = excluded.classified_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, cr := range records {
			r := cr.Record
			classifiedAt := cr.ClassifiedAt
			if classifiedAt.IsZero() {
				classifiedAt = time.Now()
			}

			_, err := stmt.ExecContext(ctx,
				r.SerialNumber, r.Bank, r.Account, r.Date.UTC(),
				r.ShortDescription, r.FullDescription, r.CustomerReference, r.BankReference,
				r.Debit.String(), r.Credit.String(), cr.Result.Category, cr.Result.PaymentDetail,
				cr.Result.NeedsDocumentNumber, cr.Result.NeedsAttachment,
				cr.Result.RegisterOfflinePayment, cr.Result.RegisterCheckUsage,
				cr.ImportID, classifiedAt.UTC(),
			)
			if err != nil {
				return fmt.Errorf("failed to upsert record %s: %w", r.SerialNumber, err)
			}
		}

		return nil
	})
}

// GetClassifiedRecords returns records dated in [start, end), ordered by date and serial number.
func (s *SQLiteStorage) GetClassifiedRecords(ctx context.Context, start, end time.Time) ([]model.ClassifiedRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT serial_number, bank, account, date,
			short_description, full_description, customer_reference, bank_reference,
			debit, credit, category, payment_detail,
			needs_document_number, needs_attachment, register_offline_payment, register_check_usage,
			import_id, classified_at
		FROM bank_records
		WHERE date >= ? AND date < ?
		ORDER BY date ASC, serial_number ASC
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query bank records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ClassifiedRecord
	for rows.Next() {
		var cr model.ClassifiedRecord
		r := &cr.Record
		if err := rows.Scan(
			&r.SerialNumber, &r.Bank, &r.Account, &r.Date,
			&r.ShortDescription, &r.FullDescription, &r.CustomerReference, &r.BankReference,
			&r.Debit, &r.Credit, &cr.Result.Category, &cr.Result.PaymentDetail,
			&cr.Result.NeedsDocumentNumber, &cr.Result.NeedsAttachment,
			&cr.Result.RegisterOfflinePayment, &cr.Result.RegisterCheckUsage,
			&cr.ImportID, &cr.ClassifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bank record: %w", err)
		}
		records = append(records, cr)
	}

	return records, rows.Err()
}

// CountUncategorized returns the number of records in [start, end) that no rule matched.
func (s *SQLiteStorage) CountUncategorized(ctx context.Context, start, end time.Time) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateDateRange(start, end); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bank_records WHERE date >= ? AND date < ? AND category = ?",
		start.UTC(), end.UTC(), model.CategoryUncategorized).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count uncategorized records: %w", err)
	}
	return count, nil
}
