package projection

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
)

// Analysis is everything shown for one plan: the deterministic scenarios and
// the Monte Carlo outlook of the base case.
type Analysis struct {
	Scenarios  []model.ScenarioResult `json:"scenarios"`
	Histogram  []model.HistogramBin   `json:"histogram"`
	Outlook    model.Outlook          `json:"outlook"`
	Volatility float64                `json:"volatility"`
	Trials     int                    `json:"trials"`
}

// Analyze validates the plan, projects its scenarios and simulates the base case.
func (s *Simulator) Analyze(ctx context.Context, plan model.RetirementPlan) (*Analysis, error) {
	if err := plan.Validate(false); err != nil {
		return nil, err
	}

	samples, err := s.Run(ctx, ParamsFromPlan(plan, plan.MonthlySavings))
	if err != nil {
		return nil, err
	}

	scenarios := Scenarios(plan)
	if err := checkFinite(samples, scenarios); err != nil {
		return nil, err
	}

	return &Analysis{
		Scenarios:  scenarios,
		Outlook:    Summarize(samples, plan.DesiredMonthlyIncome),
		Histogram:  Histogram(samples, DefaultBins),
		Trials:     s.Trials,
		Volatility: s.Volatility,
	}, nil
}

// checkFinite rejects plans whose balances grow past what float64 can hold.
func checkFinite(samples []float64, scenarios []model.ScenarioResult) error {
	ok := func(b float64) bool { return !math.IsNaN(b) && !math.IsInf(b, 0) }
	valid := !slices.ContainsFunc(samples, func(b float64) bool { return !ok(b) })
	for _, sc := range scenarios {
		valid = valid && ok(sc.EndingBalance)
	}
	if !valid {
		return fmt.Errorf("%w: projected balance overflows, lower the balance or return", common.ErrInvalidInput)
	}
	return nil
}
