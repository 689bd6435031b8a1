package model

// Category labels produced by the built-in rule table.
const (
	CategoryInsurance          = "Insurance"
	CategoryCreditCardPayment  = "Credit Card Payment"
	CategoryInternalTransfer   = "Internal Transfer"
	CategoryInterest           = "Interest"
	CategoryChargeback         = "Chargeback"
	CategoryWages              = "Wages"
	CategoryPlatformFee        = "Platform Fee"
	CategoryRent               = "Rent"
	CategoryProcessingFee      = "Processing Fee"
	CategoryIncome             = "Income"
	CategoryServiceFee         = "Service Fee"
	CategoryGas                = "Gas"
	CategoryElectricity        = "Electricity"
	CategoryLease              = "Lease"
	CategoryRental             = "Rental"
	CategoryTax                = "Tax"
	CategoryManagementFee      = "Management Fee"
	CategoryInternet           = "Internet"
	CategoryNonOperatingIncome = "Non-operating Income"
	CategoryMaterialExpense    = "Material Expense"
	CategoryUncategorized      = "Uncategorized"
)

// DetailNeedsManualReview is the payment detail of an unclassified record.
const DetailNeedsManualReview = "needs manual classification"
