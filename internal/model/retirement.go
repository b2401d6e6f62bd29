package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Veraticus/nestegg/internal/common"
)

// Age limits accepted by the planner.
const (
	MinAge = 18
	MaxAge = 100
)

// MaxRate bounds the magnitude of the return and inflation rates (100%).
const MaxRate = 1.0

// RetirementPlan is a named set of planner inputs. Rates are fractional (0.07 is 7%).
type RetirementPlan struct {
	CreatedAt            time.Time `json:"created_at"`
	Name                 string    `json:"name"`
	CurrentAge           int       `json:"current_age"`
	RetirementAge        int       `json:"retirement_age"`
	CurrentBalance       float64   `json:"current_balance"`
	MonthlySavings       float64   `json:"monthly_savings"`
	ExpectedReturn       float64   `json:"expected_return"`
	InflationRate        float64   `json:"inflation_rate"`
	DesiredMonthlyIncome float64   `json:"desired_monthly_income"`
	IdealMonthlySavings  float64   `json:"ideal_monthly_savings"`
}

// DefaultRetirementPlan returns the planner's starting values.
func DefaultRetirementPlan() RetirementPlan {
	return RetirementPlan{
		CurrentAge:           40,
		RetirementAge:        65,
		CurrentBalance:       100000,
		MonthlySavings:       1000,
		ExpectedReturn:       0.07,
		InflationRate:        0.03,
		DesiredMonthlyIncome: 5000,
		IdealMonthlySavings:  1500,
	}
}

// HorizonYears is the number of whole years until retirement.
func (p RetirementPlan) HorizonYears() int {
	return p.RetirementAge - p.CurrentAge
}

// Validate checks the plan inputs. The name is only required for plans being stored.
func (p RetirementPlan) Validate(requireName bool) error {
	if requireName && strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: plan name is required", common.ErrInvalidInput)
	}
	if p.CurrentAge < MinAge || p.CurrentAge > MaxAge {
		return fmt.Errorf("%w: current age must be between %d and %d", common.ErrInvalidInput, MinAge, MaxAge)
	}
	if p.RetirementAge <= p.CurrentAge || p.RetirementAge > MaxAge {
		return fmt.Errorf("%w: retirement age must be after current age and at most %d", common.ErrInvalidInput, MaxAge)
	}

	amounts := map[string]float64{
		"current balance":        p.CurrentBalance,
		"monthly savings":        p.MonthlySavings,
		"desired monthly income": p.DesiredMonthlyIncome,
		"ideal monthly savings":  p.IdealMonthlySavings,
	}
	for name, v := range amounts {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", common.ErrInvalidInput, name)
		}
	}
	for name, v := range map[string]float64{"expected return": p.ExpectedReturn, "inflation rate": p.InflationRate} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number", common.ErrInvalidInput, name)
		}
		if math.Abs(v) > MaxRate {
			return fmt.Errorf("%w: %s must be between -100%% and 100%%", common.ErrInvalidInput, name)
		}
	}
	return nil
}

// ScenarioResult is the ending balance of one deterministic projection.
type ScenarioResult struct {
	Label         string  `json:"label"`
	EndingBalance float64 `json:"ending_balance"`
}

// Outlook summarizes a Monte Carlo sample set.
type Outlook struct {
	P10                      float64 `json:"p10"`
	P50                      float64 `json:"p50"`
	P90                      float64 `json:"p90"`
	SustainableMonthlyIncome float64 `json:"sustainable_monthly_income"`
	DesiredMonthlyIncome     float64 `json:"desired_monthly_income"`
	OnTrack                  bool    `json:"on_track"`
}

// HistogramBin counts samples in [Lower, Upper). The last bin is closed.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}
