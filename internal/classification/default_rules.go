package classification

import "github.com/Veraticus/paperwork-flow/internal/model"

type flag int

const (
	documentNumber flag = iota
	attachment
	offlinePayment
	checkUsage
)

func treat(category, detail string, flags ...flag) model.ClassificationResult {
	r := model.ClassificationResult{Category: category, PaymentDetail: detail}
	for _, f := range flags {
		switch f {
		case documentNumber:
			r.NeedsDocumentNumber = true
		case attachment:
			r.NeedsAttachment = true
		case offlinePayment:
			r.RegisterOfflinePayment = true
		case checkUsage:
			r.RegisterCheckUsage = true
		}
	}
	return r
}

func onDebit() *model.Direction  { return model.DirectionDebit.Ptr() }
func onCredit() *model.Direction { return model.DirectionCredit.Ptr() }

func exact(name, text string, amount float64, dir *model.Direction, result model.ClassificationResult) Definition {
	return Definition{
		Rule:   model.MatchRule{Name: name, Description: model.Literal(text), Amount: model.ExactAmount(amount), Direction: dir},
		Result: result,
	}
}

func literal(name, text string, dir *model.Direction, result model.ClassificationResult) Definition {
	return Definition{
		Rule:   model.MatchRule{Name: name, Description: model.Literal(text), Direction: dir},
		Result: result,
	}
}

func regex(name, expr string, dir *model.Direction, result model.ClassificationResult) Definition {
	return Definition{
		Rule:   model.MatchRule{Name: name, Description: model.Regex(expr), Direction: dir},
		Result: result,
	}
}

// DefaultRules returns the built-in rule table in evaluation order: exact
// recurring charges first, then description patterns scoped by direction, then
// bare patterns, and finally the broad catch-alls.
func DefaultRules() []Definition {
	bankServiceFee := treat(model.CategoryServiceFee, "Bank service fee", offlinePayment)
	cloverFee := treat(model.CategoryProcessingFee, "Clover card processing fee", attachment, offlinePayment)
	cloverDeposit := treat(model.CategoryIncome, "Clover card deposit")
	monerisFee := treat(model.CategoryProcessingFee, "Moneris card processing fee", attachment, offlinePayment)
	mobilePayDeposit := treat(model.CategoryIncome, "WeChat/Alipay deposit")
	uberPayout := treat(model.CategoryIncome, "Uber delivery payout")
	storeElectricity := treat(model.CategoryElectricity, "Store electricity", documentNumber, offlinePayment)
	dishwasherRental := treat(model.CategoryRental, "Dishwasher rental", attachment, offlinePayment)

	return []Definition{
		// Exact recurring amounts.
		exact("bmo-plan-fee", "Service Charge", 120, onDebit(),
			treat(model.CategoryServiceFee, "BMO monthly account fee", offlinePayment)),
		exact("bmo-plan-fee-refund", "Service Charge", 120, onCredit(),
			treat(model.CategoryChargeback, "BMO account fee refund")),
		exact("bmo-plan-fee-legacy", "PLAN FEE", 120, onDebit(),
			treat(model.CategoryServiceFee, "BMO monthly account fee", offlinePayment)),
		exact("bmo-plan-fee-rebate", "FULL PLAN FEE REBATE", 120, onCredit(),
			treat(model.CategoryChargeback, "BMO account fee refund")),
		exact("acura-lease", "Preauthorized Debit / Correction", 396.37, onDebit(),
			treat(model.CategoryLease, "ACURA vehicle lease", documentNumber, offlinePayment)),
		exact("icbc-store7-vehicle", "ICBC            INS/ASS", 146.76, onDebit(),
			treat(model.CategoryInsurance, "Store 7 purchasing vehicle insurance", documentNumber, offlinePayment)),
		exact("icbc-store2-vehicle", "ICBC            INS/ASS", 182.44, onDebit(),
			treat(model.CategoryInsurance, "Store 2 purchasing vehicle insurance", documentNumber, offlinePayment)),
		exact("cooperators-truck", "COOPERATORS CSI INS/ASS", 477.52, onDebit(),
			treat(model.CategoryInsurance, "Store 4 truck insurance", attachment, offlinePayment)),
		exact("cooperators-dormitory", "COOPERATORS CSI INS/ASS", 96.76, onDebit(),
			treat(model.CategoryInsurance, "Store 4 staff dormitory insurance", attachment, offlinePayment)),
		exact("vw-lease", "VW CREDIT CAN   LNS/PRE", 197.99, onDebit(),
			treat(model.CategoryRental, "Vehicle lease", documentNumber, offlinePayment)),
		exact("vw-lease-insurance", "VW CREDIT CAN   LNS/PRE", 192.95, onDebit(),
			treat(model.CategoryInsurance, "Vehicle lease insurance", documentNumber, offlinePayment)),
		exact("store1-rent", "Herefordshire C", 17843.27, onDebit(),
			treat(model.CategoryRent, "Store 1 rent", documentNumber)),
		{
			Rule: model.MatchRule{
				Name:        "store7-dormitory-rent",
				Description: model.Regex(`RENT/LEASE Rent \d+`),
				Amount:      model.ExactAmount(5000),
				Direction:   onDebit(),
			},
			Result: treat(model.CategoryRental, "Store 7 staff dormitory rent", documentNumber, offlinePayment),
		},
		{
			Rule: model.MatchRule{
				Name:        "enbridge-dormitory",
				Description: model.Literal("ENBRIDGE GAS    BPY/FAC"),
				Amount:      model.AmountAtMost(300),
				Direction:   onDebit(),
			},
			Result: treat(model.CategoryGas, "Staff dormitory gas", documentNumber),
		},
		{
			Rule: model.MatchRule{
				Name:        "enbridge-store",
				Description: model.Literal("ENBRIDGE GAS    BPY/FAC"),
				Amount:      model.AmountAtLeast(500),
				Direction:   onDebit(),
			},
			Result: treat(model.CategoryGas, "Store gas", documentNumber),
		},

		// High-frequency deposits and payroll.
		regex("iot-pay", `IOT PAY.*MSP/DIV`, nil, mobilePayDeposit),
		literal("fiserv-fee", "FISERV CANADA   MSP/DIV", onDebit(),
			treat(model.CategoryProcessingFee, "Fiserv card processing fee", attachment, offlinePayment)),
		literal("fiserv-deposit", "FISERV CANADA   MSP/DIV", onCredit(),
			treat(model.CategoryIncome, "Fiserv card deposit")),
		regex("uber-holdings", `UBER HOLDINGS.*MSP/DIV`, nil, uberPayout),
		regex("fantuan", `FANTUAN.*MSP/DIV`, nil, treat(model.CategoryIncome, "Fantuan delivery payout")),
		regex("clover-dp", `DP\d+.*MSP/DIV`, nil, cloverDeposit),
		regex("branch-cash", `BR\.\s*\d+`, nil, treat(model.CategoryIncome, "Cash deposit", documentNumber)),
		regex("payroll", `PAYROLL.*BUS/ENT`, onDebit(),
			treat(model.CategoryWages, "Staff payroll", attachment, offlinePayment)),
		regex("icbc-insurance", `ICBC.*INS/ASS`, onDebit(),
			treat(model.CategoryInsurance, "ICBC insurance", documentNumber, offlinePayment)),
		regex("bmo-internal-transfer", `\d{4}-\d{4}-\d{3}\s+\d{4}`, nil,
			treat(model.CategoryInternalTransfer, "BMO internal transfer")),

		// Card processors, platforms and utilities.
		literal("first-data-fee", "FIRST DATA CANADA", onDebit(), cloverFee),
		literal("first-data-deposit", "FIRST DATA CANADA", onCredit(), cloverDeposit),
		regex("clover-mrch-fee", `MRCH\d+ MSP/DIV`, onDebit(), cloverFee),
		regex("clover-mrch-deposit", `MRCH\d+ MSP/DIV`, onCredit(), cloverDeposit),
		literal("clover-fees", "CLOVER FEES", onDebit(), cloverFee),
		regex("moneris-fee", `(VSA|MON|INT|AMX) FEE\d+ MSP/DIV`, onDebit(), monerisFee),
		regex("moneris-mc-fee", `MC FEE \d+ MSP/DIV`, onDebit(), monerisFee),
		{
			Rule: model.MatchRule{
				Name:        "moneris-deposit",
				Description: &model.DescriptionPattern{Kind: model.PatternRegex, Text: `^(MC|UP|EF)\d+\s+\d+$`, CaseSensitive: true},
				Direction:   onCredit(),
			},
			Result: treat(model.CategoryIncome, "Moneris deposit"),
		},
		literal("iot-pay-credit", "IOT PAY", onCredit(), mobilePayDeposit),
		literal("snappy-wechat", "SNAPPYWC9005", onCredit(), mobilePayDeposit),
		literal("snappy-card", "SNAPPY9005", onCredit(), treat(model.CategoryIncome, "Snappy card deposit")),
		regex("snappy-payout", `SNAPPYON.*EXP/RDD`, onCredit(), treat(model.CategoryIncome, "Snappy delivery payout")),
		literal("snappy-platform", "SNAPPYDEBIT", onDebit(),
			treat(model.CategoryPlatformFee, "Snappy platform fee", documentNumber, offlinePayment)),
		literal("hungrypanda", "HUNGRYPANDA", onCredit(), treat(model.CategoryIncome, "HungryPanda delivery payout")),
		literal("dealuse", "DEALUSE TECHNOL MSP/DIV", nil, treat(model.CategoryIncome, "DealUse group-buy payout")),
		literal("opentable", "OPENTABLE       MSP/DIV", onDebit(),
			treat(model.CategoryPlatformFee, "OpenTable platform fee", documentNumber, offlinePayment)),
		literal("bc-hydro", "B.C. HYDRO-PAP", onDebit(), storeElectricity),
		literal("toronto-hydro", "TORONTO HYDRO", onDebit(), storeElectricity),
		literal("alectra", "ALECTRA UTIL    MSP/DIV", onDebit(),
			treat(model.CategoryElectricity, "Store 3 staff dormitory electricity", documentNumber)),
		literal("shaw", "SHAW CABLE TV", onDebit(),
			treat(model.CategoryInternet, "Store internet", documentNumber, offlinePayment)),
		literal("alochem", "ALOCHEM         RLS/LOY", onDebit(), dishwasherRental),
		regex("alouette", `RENT/LEASE.*ALOUETTE WARE WASH CHEMICAL`, onDebit(),
			treat(model.CategoryRental, "Dishwasher rental", documentNumber, offlinePayment)),
		literal("bmo-credit-card", "BMO PAYMENT     CBP/PFE", onDebit(),
			treat(model.CategoryCreditCardPayment, "BMO credit card payment", documentNumber)),
		literal("bc-pst", "PROVINCE OF BC  PRO/PRO", onDebit(),
			treat(model.CategoryTax, "Prior month PST", documentNumber, offlinePayment)),
		literal("cash-management", "CASH MGMT   FEE BOM/B/M", onDebit(),
			treat(model.CategoryManagementFee, "Bank management fee", offlinePayment)),
		literal("pay-file", "PAY-FILE FEES", onDebit(),
			treat(model.CategoryProcessingFee, "Bank processing fee", offlinePayment)),
		literal("cheque-printing", "Chq Printing Fee", onDebit(),
			treat(model.CategoryMaterialExpense, "Cheque printing fee", offlinePayment)),
		literal("regional-recycling", "REGIONAL RECYCL AP /CC", onCredit(),
			treat(model.CategoryIncome, "Scrap sale income")),
		literal("west-coast-reduction", "WEST COAST REDU AP /CC", onCredit(),
			treat(model.CategoryNonOperatingIncome, "Waste oil sale income")),

		// Bank fees.
		literal("triple-dollar-fee", "$$$", onDebit(), bankServiceFee),
		literal("deposit-note-fee", "DEPOSIT NOTE FEE", onDebit(), bankServiceFee),
		literal("excess-items", "EXCESS ITEMS", onDebit(), bankServiceFee),
		literal("deposit-coin-fee", "DEPOSIT COIN FEE", onDebit(), bankServiceFee),
		literal("activity-fee", "ACTIVITY FEE", onDebit(), bankServiceFee),
		regex("discount-fee", `^DISCOUNT\s+\d+\s+AT\s+\$\d+(?:\.\d+)?$`, onDebit(), bankServiceFee),
		regex("service-charge", `SERVICE.*CHARGE|BANK.*FEE`, onDebit(), bankServiceFee),
		regex("credit-card", `CREDIT\s+CARD|VISA|MASTERCARD|AMEX`, nil,
			treat(model.CategoryCreditCardPayment, "Credit card transaction", offlinePayment)),

		// Broad catch-alls.
		regex("transfer", `TRANSFER|FUNDS.*TRANSFER`, nil,
			treat(model.CategoryInternalTransfer, "Account transfer")),
		regex("deposit", `\bDEPOSIT\b`, onCredit(), treat(model.CategoryIncome, "Bank cash deposit")),
		regex("uber", `\bUBER\b`, nil, uberPayout),
		regex("interest", `INTEREST`, nil, treat(model.CategoryInterest, "Interest income")),
	}
}
