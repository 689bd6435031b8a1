package classification

import (
	"sync"
	"testing"

	"github.com/Veraticus/paperwork-flow/internal/common"
	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }

func newDefaultRuleSet(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := NewDefaultRuleSet()
	require.NoError(t, err)
	return rs
}

func TestDefaultRules_Classify(t *testing.T) {
	rs := newDefaultRuleSet(t)
	credit := model.DirectionCredit.Ptr()
	debit := model.DirectionDebit.Ptr()

	tests := []struct {
		amount      *float64
		direction   *model.Direction
		name        string
		description string
		wantDetail  string
		wantCat     string
		wantDoc     bool
		wantAttach  bool
		wantOffline bool
	}{
		{
			name:        "internal transfer beats generic transfer",
			description: "0782-1931-699 3587 TRANSFER",
			wantCat:     model.CategoryInternalTransfer,
			wantDetail:  "BMO internal transfer",
		},
		{
			name:        "monthly plan fee on debit",
			description: "Service Charge",
			amount:      floatPtr(120),
			direction:   debit,
			wantCat:     model.CategoryServiceFee,
			wantDetail:  "BMO monthly account fee",
			wantOffline: true,
		},
		{
			name:        "plan fee refund on credit",
			description: "Service Charge",
			amount:      floatPtr(120),
			direction:   credit,
			wantCat:     model.CategoryChargeback,
			wantDetail:  "BMO account fee refund",
		},
		{
			name:        "correction refund",
			description: "Service Charge / Correction",
			amount:      floatPtr(120),
			direction:   credit,
			wantCat:     model.CategoryChargeback,
			wantDetail:  "BMO account fee refund",
		},
		{
			name:        "other service charge amounts fall to bank fee",
			description: "SERVICE CHARGE",
			amount:      floatPtr(25),
			direction:   debit,
			wantCat:     model.CategoryServiceFee,
			wantDetail:  "Bank service fee",
			wantOffline: true,
		},
		{
			name:        "service charge credit is not a fee",
			description: "SERVICE CHARGE",
			amount:      floatPtr(25),
			direction:   credit,
			wantCat:     model.CategoryUncategorized,
			wantDetail:  model.DetailNeedsManualReview,
		},
		{
			name:        "acura lease",
			description: "Preauthorized Debit / Correction",
			amount:      floatPtr(396.37),
			direction:   debit,
			wantCat:     model.CategoryLease,
			wantDetail:  "ACURA vehicle lease",
			wantDoc:     true,
			wantOffline: true,
		},
		{
			name:        "mobile payments",
			description: "Direct Deposit IOT PAY MSP/DIV",
			amount:      floatPtr(2500),
			direction:   credit,
			wantCat:     model.CategoryIncome,
			wantDetail:  "WeChat/Alipay deposit",
		},
		{
			name:        "uber holdings",
			description: "Direct Deposit UBER HOLDINGS C MSP/DIV",
			direction:   credit,
			wantCat:     model.CategoryIncome,
			wantDetail:  "Uber delivery payout",
		},
		{
			name:        "generic uber",
			description: "UBER EATS PAYMENT",
			amount:      floatPtr(150),
			wantCat:     model.CategoryIncome,
			wantDetail:  "Uber delivery payout",
		},
		{
			name:        "clover deposit",
			description: "Direct Deposit DP22048140016 MSP/DIV",
			direction:   credit,
			wantCat:     model.CategoryIncome,
			wantDetail:  "Clover card deposit",
		},
		{
			name:        "branch cash deposit needs document",
			description: "Branch Credit BR. 3833",
			amount:      floatPtr(195),
			direction:   credit,
			wantCat:     model.CategoryIncome,
			wantDetail:  "Cash deposit",
			wantDoc:     true,
		},
		{
			name:        "payroll needs attachment",
			description: "Preauthorized Debit / Correction PAYROLL TBJ0086 BUS/ENT",
			amount:      floatPtr(1000),
			direction:   debit,
			wantCat:     model.CategoryWages,
			wantDetail:  "Staff payroll",
			wantAttach:  true,
			wantOffline: true,
		},
		{
			name:        "icbc insurance",
			description: "Preauthorized Debit / Correction ICBC INS/ASS",
			amount:      floatPtr(192.95),
			direction:   debit,
			wantCat:     model.CategoryInsurance,
			wantDetail:  "ICBC insurance",
			wantDoc:     true,
			wantOffline: true,
		},
		{
			name:        "gas bill below threshold",
			description: "ENBRIDGE GAS    BPY/FAC",
			amount:      floatPtr(212.40),
			direction:   debit,
			wantCat:     model.CategoryGas,
			wantDetail:  "Staff dormitory gas",
			wantDoc:     true,
		},
		{
			name:        "gas bill above threshold",
			description: "ENBRIDGE GAS    BPY/FAC",
			amount:      floatPtr(812.10),
			direction:   debit,
			wantCat:     model.CategoryGas,
			wantDetail:  "Store gas",
			wantDoc:     true,
		},
		{
			name:        "credit card fee",
			description: "MASTERCARD FEE",
			amount:      floatPtr(5),
			wantCat:     model.CategoryCreditCardPayment,
			wantDetail:  "Credit card transaction",
			wantOffline: true,
		},
		{
			name:        "moneris deposit is case sensitive",
			description: "MC1234 5678",
			direction:   credit,
			wantCat:     model.CategoryIncome,
			wantDetail:  "Moneris deposit",
		},
		{
			name:        "wire transfer",
			description: "WIRE TRANSFER",
			amount:      floatPtr(1000),
			wantCat:     model.CategoryInternalTransfer,
			wantDetail:  "Account transfer",
		},
		{
			name:        "cash deposit",
			description: "CASH DEPOSIT",
			amount:      floatPtr(100),
			direction:   credit,
			wantCat:     model.CategoryIncome,
			wantDetail:  "Bank cash deposit",
		},
		{
			name:        "interest",
			description: "ACCOUNT INTEREST",
			amount:      floatPtr(2.5),
			wantCat:     model.CategoryInterest,
			wantDetail:  "Interest income",
		},
		{
			name:        "unknown",
			description: "MYSTERY TRANSACTION",
			amount:      floatPtr(50),
			wantCat:     model.CategoryUncategorized,
			wantDetail:  model.DetailNeedsManualReview,
		},
		{
			name:       "empty description",
			amount:     floatPtr(120),
			direction:  debit,
			wantCat:    model.CategoryUncategorized,
			wantDetail: model.DetailNeedsManualReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rs.Classify(tt.description, tt.amount, tt.direction)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.Equal(t, tt.wantDetail, got.PaymentDetail)
			assert.Equal(t, tt.wantDoc, got.NeedsDocumentNumber)
			assert.Equal(t, tt.wantAttach, got.NeedsAttachment)
			assert.Equal(t, tt.wantOffline, got.RegisterOfflinePayment)
			assert.False(t, got.RegisterCheckUsage)
		})
	}
}

func TestDefaultRules_UnknownDescriptions(t *testing.T) {
	rs := newDefaultRuleSet(t)
	for _, desc := range []string{"UNKNOWN MERCHANT", "RANDOM PAYMENT", "MYSTERY TRANSACTION"} {
		t.Run(desc, func(t *testing.T) {
			assert.Equal(t, model.Uncategorized(), rs.Classify(desc, floatPtr(50), nil))
		})
	}
}

func TestDefaultRules_AmountTolerance(t *testing.T) {
	rs := newDefaultRuleSet(t)
	debit := model.DirectionDebit.Ptr()

	for _, amount := range []float64{120, 120.009, 119.991} {
		got := rs.Classify("Service Charge", floatPtr(amount), debit)
		assert.Equal(t, "BMO monthly account fee", got.PaymentDetail, "amount %v", amount)
	}

	got := rs.Classify("Service Charge", floatPtr(120.02), debit)
	assert.Equal(t, "Bank service fee", got.PaymentDetail)
}

func TestRuleSet_AddAppendsAtLowestPriority(t *testing.T) {
	rs := newDefaultRuleSet(t)
	before := rs.Len()

	err := rs.Add(
		model.MatchRule{Name: "test-credit", Description: model.Literal("TEST CREDIT"), Direction: model.DirectionCredit.Ptr()},
		model.ClassificationResult{Category: model.CategoryIncome, PaymentDetail: "Test income"},
	)
	require.NoError(t, err)
	assert.Equal(t, before+1, rs.Len())

	got := rs.Classify("TEST CREDIT", floatPtr(10), model.DirectionCredit.Ptr())
	assert.Equal(t, "Test income", got.PaymentDetail)

	got = rs.Classify("TEST CREDIT", floatPtr(10), model.DirectionDebit.Ptr())
	assert.True(t, got.IsUncategorized())

	// An earlier rule still wins over the appended one.
	err = rs.Add(model.MatchRule{Description: model.Literal("WIRE TRANSFER")}, model.ClassificationResult{Category: "Wire"})
	require.NoError(t, err)
	assert.Equal(t, "Account transfer", rs.Classify("WIRE TRANSFER", nil, nil).PaymentDetail)
}

func TestRuleSet_AddRejectsInvalidRules(t *testing.T) {
	rs, err := NewRuleSet()
	require.NoError(t, err)

	err = rs.Add(model.MatchRule{Description: model.Regex(`PAYROLL(`)}, model.ClassificationResult{Category: "x"})
	assert.ErrorIs(t, err, common.ErrInvalidRule)
	assert.Equal(t, 0, rs.Len())

	_, err = NewRuleSet(
		Definition{Rule: model.MatchRule{Description: model.Literal("OK")}, Result: model.ClassificationResult{Category: "ok"}},
		Definition{Rule: model.MatchRule{Amount: model.AmountBetween(10, 1)}, Result: model.ClassificationResult{Category: "bad"}},
	)
	assert.ErrorIs(t, err, common.ErrInvalidRule)
}

func TestRuleSet_AddMixedCaseDirection(t *testing.T) {
	rs, err := NewRuleSet()
	require.NoError(t, err)

	dir := model.Direction("Credit")
	require.NoError(t, rs.Add(
		model.MatchRule{Description: model.Literal("Service Charge"), Direction: &dir},
		model.ClassificationResult{Category: "Fee refund"},
	))

	got := rs.Classify("Service Charge", floatPtr(120), model.DirectionCredit.Ptr())
	assert.Equal(t, "Fee refund", got.Category)
	got = rs.Classify("Service Charge", floatPtr(120), model.DirectionDebit.Ptr())
	assert.True(t, got.IsUncategorized())
}

func TestRuleSet_RulesMatching(t *testing.T) {
	rs := newDefaultRuleSet(t)

	matches := rs.RulesMatching("UBER HOLDINGS")
	require.NotEmpty(t, matches)
	var details []string
	for _, m := range matches {
		details = append(details, m.Result.PaymentDetail)
	}
	assert.Contains(t, details, "Uber delivery payout")

	// Amount and direction constraints are ignored.
	matches = rs.RulesMatching("Service Charge")
	require.GreaterOrEqual(t, len(matches), 2)
	assert.Equal(t, "bmo-plan-fee", matches[0].Rule.Name)
	assert.Equal(t, "bmo-plan-fee-refund", matches[1].Rule.Name)

	assert.Empty(t, rs.RulesMatching("MYSTERY TRANSACTION"))
}

func TestRuleSet_ClassifyRecord(t *testing.T) {
	rs := newDefaultRuleSet(t)

	record := model.BankRecord{
		ShortDescription: "Service Charge",
		Credit:           decimal.RequireFromString("120.00"),
	}
	assert.Equal(t, "BMO account fee refund", rs.ClassifyRecord(record).PaymentDetail)

	record = model.BankRecord{
		ShortDescription: "Service Charge",
		Debit:            decimal.RequireFromString("120.00"),
	}
	assert.Equal(t, "BMO monthly account fee", rs.ClassifyRecord(record).PaymentDetail)
}

func TestRuleSet_ResultsAreCopies(t *testing.T) {
	rs := newDefaultRuleSet(t)

	first := rs.Classify("ACCOUNT INTEREST", nil, nil)
	first.Category = "mutated"
	second := rs.Classify("ACCOUNT INTEREST", nil, nil)
	assert.Equal(t, model.CategoryInterest, second.Category)
}

func TestRuleSet_ConcurrentClassify(t *testing.T) {
	rs := newDefaultRuleSet(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got := rs.Classify("0782-1931-699 3587 TRANSFER", nil, nil)
				assert.Equal(t, "BMO internal transfer", got.PaymentDetail)
			}
		}()
	}
	wg.Wait()
}

func TestRuleSet_AddWhileClassifying(t *testing.T) {
	rs := newDefaultRuleSet(t)
	base := rs.Len()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			assert.NoError(t, rs.Add(
				model.MatchRule{Description: model.Literal("TRANSFER")},
				model.ClassificationResult{Category: "late"},
			))
		}
	}()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got := rs.Classify("0782-1931-699 3587 TRANSFER", nil, nil)
				assert.Equal(t, "BMO internal transfer", got.PaymentDetail)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, base+50, rs.Len())
}
