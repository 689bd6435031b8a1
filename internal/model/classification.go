package model

import "time"

// ClassificationResult is the accounting treatment assigned to a bank record.
// Results are plain values; callers receive their own copy.
type ClassificationResult struct {
	Category               string
	PaymentDetail          string
	NeedsDocumentNumber    bool
	NeedsAttachment        bool
	RegisterOfflinePayment bool
	RegisterCheckUsage     bool
}

// Uncategorized returns the result used when no rule matches.
func Uncategorized() ClassificationResult {
	return ClassificationResult{
		Category:      CategoryUncategorized,
		PaymentDetail: DetailNeedsManualReview,
	}
}

// IsUncategorized reports whether r is the fallback result.
func (r ClassificationResult) IsUncategorized() bool {
	return r.Category == CategoryUncategorized
}

// ClassifiedRecord pairs a bank record with its classification.
type ClassifiedRecord struct {
	ClassifiedAt time.Time
	ImportID     string
	Result       ClassificationResult
	Record       BankRecord
}
