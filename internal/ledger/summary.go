package ledger

import (
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summarize totals ledger lines per category, keeping first-seen order.
func Summarize(lines []model.LedgerLine) model.Breakdown {
	b := model.Breakdown{
		Income:      decimal.Zero,
		Expenses:    decimal.Zero,
		NetCashFlow: decimal.Zero,
	}

	index := make(map[string]int)
	for _, line := range lines {
		i, ok := index[line.Category]
		if !ok {
			i = len(b.Categories)
			index[line.Category] = i
			b.Categories = append(b.Categories, model.CategoryTotal{Category: line.Category, Amount: decimal.Zero})
		}
		b.Categories[i].Amount = b.Categories[i].Amount.Add(line.Amount)

		switch {
		case line.Amount.IsPositive():
			b.Income = b.Income.Add(line.Amount)
		case line.Amount.IsNegative():
			b.Expenses = b.Expenses.Add(line.Amount)
		}
		b.NetCashFlow = b.NetCashFlow.Add(line.Amount)
	}

	return b
}

// Evaluate derives return metrics from a net annual cash flow. A non-positive
// initial investment reports a zero ROI and a non-positive useful life a zero
// depreciation.
func Evaluate(netCashFlow decimal.Decimal, in model.InvestmentInputs) model.InvestmentMetrics {
	roi := decimal.Zero
	if in.InitialInvestment.IsPositive() {
		roi = netCashFlow.Div(in.InitialInvestment).Mul(hundred)
	}

	depreciation := decimal.Zero
	if in.UsefulLifeYears > 0 {
		depreciation = in.DepreciableBasis.Div(decimal.NewFromInt(int64(in.UsefulLifeYears)))
	}

	return model.InvestmentMetrics{
		NetCashFlow:           netCashFlow,
		CashOnCashROI:         roi,
		AnnualDepreciation:    depreciation,
		TaxableIncomeEstimate: netCashFlow.Sub(depreciation),
	}
}
