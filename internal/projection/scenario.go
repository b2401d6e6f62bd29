package projection

import "github.com/Veraticus/nestegg/internal/model"

// Scenario labels.
const (
	ScenarioBase         = "Base"
	ScenarioOptimistic   = "Optimistic"
	ScenarioPessimistic  = "Pessimistic"
	ScenarioIdealSavings = "Ideal Savings"
)

// ScenarioSpec describes a variant of a plan's rates and contribution.
type ScenarioSpec struct {
	Label          string
	ReturnDelta    float64
	InflationDelta float64
	IdealSavings   bool
}

// DefaultScenarios are the variants shown for every plan.
var DefaultScenarios = []ScenarioSpec{
	{Label: ScenarioBase},
	{Label: ScenarioOptimistic, ReturnDelta: 0.02, InflationDelta: -0.01},
	{Label: ScenarioPessimistic, ReturnDelta: -0.02, InflationDelta: 0.01},
	{Label: ScenarioIdealSavings, IdealSavings: true},
}

// ParamsFromPlan builds projection inputs for a plan with the given monthly contribution.
func ParamsFromPlan(plan model.RetirementPlan, monthlyContribution float64) Params {
	return Params{
		StartBalance:        plan.CurrentBalance,
		MonthlyContribution: monthlyContribution,
		AnnualReturnRate:    plan.ExpectedReturn,
		AnnualInflationRate: plan.InflationRate,
		HorizonYears:        plan.HorizonYears(),
	}
}

// Apply returns the plan's parameters adjusted for this scenario.
func (s ScenarioSpec) Apply(plan model.RetirementPlan) Params {
	contribution := plan.MonthlySavings
	if s.IdealSavings {
		contribution = plan.IdealMonthlySavings
	}

	p := ParamsFromPlan(plan, contribution)
	p.AnnualReturnRate += s.ReturnDelta
	p.AnnualInflationRate += s.InflationDelta
	return p
}

// Scenarios projects the plan under each of DefaultScenarios.
func Scenarios(plan model.RetirementPlan) []model.ScenarioResult {
	return RunScenarios(plan, DefaultScenarios)
}

// RunScenarios projects the plan under each spec, in order.
func RunScenarios(plan model.RetirementPlan, specs []ScenarioSpec) []model.ScenarioResult {
	results := make([]model.ScenarioResult, 0, len(specs))
	for _, spec := range specs {
		results = append(results, model.ScenarioResult{
			Label:         spec.Label,
			EndingBalance: Project(spec.Apply(plan)),
		})
	}
	return results
}
