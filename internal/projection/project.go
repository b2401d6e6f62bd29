// Package projection simulates compound growth of retirement savings.
//
// Two deterministic paths exist. Project grows contributions with a
// fractional-year inflation exponent each month. ProjectWholeYear inflates
// contributions once per year and adds one twelfth of that figure each month,
// which is exactly what every Monte Carlo trial does with a fixed return.
// They are kept side by side and are not interchangeable.
package projection

import (
	"fmt"
	"math"

	"github.com/Veraticus/nestegg/internal/common"
)

const monthsPerYear = 12

// Params is the input to a single projection. Rates are fractional.
type Params struct {
	StartBalance        float64 `json:"start_balance"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	AnnualReturnRate    float64 `json:"annual_return_rate"`
	AnnualInflationRate float64 `json:"annual_inflation_rate"`
	HorizonYears        int     `json:"horizon_years"`
}

// Validate rejects negative horizons and non-finite numbers.
func (p Params) Validate() error {
	if p.HorizonYears < 0 {
		return fmt.Errorf("%w: horizon years must not be negative, got %d", common.ErrInvalidInput, p.HorizonYears)
	}
	values := []struct {
		name  string
		value float64
	}{
		{"start balance", p.StartBalance},
		{"monthly contribution", p.MonthlyContribution},
		{"annual return rate", p.AnnualReturnRate},
		{"annual inflation rate", p.AnnualInflationRate},
	}
	for _, v := range values {
		if math.IsNaN(v.value) || math.IsInf(v.value, 0) {
			return fmt.Errorf("%w: %s must be finite", common.ErrInvalidInput, v.name)
		}
	}
	return nil
}

// Project returns the balance after HorizonYears of monthly contributions and
// monthly compounding. Each month the inflated contribution is added before
// the month's growth is applied.
func Project(p Params) float64 {
	balance := p.StartBalance
	growth := 1 + p.AnnualReturnRate/monthsPerYear

	for year := 0; year < p.HorizonYears; year++ {
		for month := 0; month < monthsPerYear; month++ {
			exponent := float64(year) + float64(month)/monthsPerYear
			balance += p.MonthlyContribution * math.Pow(1+p.AnnualInflationRate, exponent)
			balance *= growth
		}
	}

	return balance
}

// ProjectWholeYear is the deterministic counterpart of a Monte Carlo trial.
func ProjectWholeYear(p Params) float64 {
	balance := p.StartBalance
	for year := 0; year < p.HorizonYears; year++ {
		balance = growYear(balance, yearlyContribution(p, year), p.AnnualReturnRate)
	}
	return balance
}

// yearlyContribution inflates the contribution once per whole year.
func yearlyContribution(p Params, year int) float64 {
	return p.MonthlyContribution * math.Pow(1+p.AnnualInflationRate, float64(year))
}

// growYear adds a twelfth of contribution and compounds at rate, twelve times.
func growYear(balance, contribution, rate float64) float64 {
	growth := 1 + rate/monthsPerYear
	for month := 0; month < monthsPerYear; month++ {
		balance += contribution / monthsPerYear
		balance *= growth
	}
	return balance
}
