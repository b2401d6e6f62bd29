// Package model contains the core data types for the application.
package model

import "github.com/shopspring/decimal"

// Section is the part of a P&L export a row belongs to.
type Section string

const (
	// SectionNone applies before any section marker has been seen.
	SectionNone Section = ""
	// SectionIncome marks rows whose amounts are income.
	SectionIncome Section = "Income"
	// SectionExpense marks rows whose amounts are expenses and are negated.
	SectionExpense Section = "Expense"
)

// SkipReason explains why a row produced no ledger line.
type SkipReason string

// Reasons a row is dropped by the parser.
const (
	SkipBlank        SkipReason = "blank"
	SkipTooFewFields SkipReason = "too_few_fields"
	SkipEmptyItem    SkipReason = "empty_item"
	SkipEmptyAmount  SkipReason = "empty_amount"
	SkipBadAmount    SkipReason = "bad_amount"
	SkipSubtotal     SkipReason = "subtotal"
)

// UnknownInfo is reported when property or period metadata is missing.
const UnknownInfo = "Unknown"

// LedgerLine is one category amount parsed from a P&L export.
// Expenses are negative, income positive.
type LedgerLine struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// PropertyInfo is the display metadata found in the header of an export.
type PropertyInfo struct {
	Property string `json:"property"`
	Period   string `json:"period"`
}

// Statement is the result of parsing a whole export.
type Statement struct {
	Skipped map[SkipReason]int `json:"skipped,omitempty"`
	Info    PropertyInfo       `json:"info"`
	Lines   []LedgerLine       `json:"lines"`
}

// CategoryTotal is the summed amount for one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Breakdown aggregates ledger lines by category.
type Breakdown struct {
	Categories  []CategoryTotal `json:"categories"`
	Income      decimal.Decimal `json:"income"`
	Expenses    decimal.Decimal `json:"expenses"`
	NetCashFlow decimal.Decimal `json:"net_cash_flow"`
}

// InvestmentInputs are the owner-supplied figures used for return metrics.
type InvestmentInputs struct {
	InitialInvestment decimal.Decimal `json:"initial_investment"`
	DepreciableBasis  decimal.Decimal `json:"depreciable_basis"`
	UsefulLifeYears   int             `json:"useful_life_years"`
}

// DefaultInvestmentInputs mirrors the dashboard's starting form values.
func DefaultInvestmentInputs() InvestmentInputs {
	return InvestmentInputs{
		InitialInvestment: decimal.NewFromInt(200000),
		DepreciableBasis:  decimal.NewFromInt(150000),
		UsefulLifeYears:   27,
	}
}

// InvestmentMetrics summarizes the return on a rental property.
type InvestmentMetrics struct {
	NetCashFlow           decimal.Decimal `json:"net_cash_flow"`
	CashOnCashROI         decimal.Decimal `json:"cash_on_cash_roi"`
	AnnualDepreciation    decimal.Decimal `json:"annual_depreciation"`
	TaxableIncomeEstimate decimal.Decimal `json:"taxable_income_estimate"`
}
