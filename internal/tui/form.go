package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/charmbracelet/bubbles/textinput"
)

// planField binds one form input to a plan attribute.
type planField struct {
	get   func(p model.RetirementPlan) string
	set   func(p *model.RetirementPlan, v string) error
	label string
}

var planFields = []planField{
	{
		label: "Plan name",
		get:   func(p model.RetirementPlan) string { return p.Name },
		set: func(p *model.RetirementPlan, v string) error {
			p.Name = strings.TrimSpace(v)
			return nil
		},
	},
	intField("Current age", func(p *model.RetirementPlan) *int { return &p.CurrentAge }),
	intField("Retirement age", func(p *model.RetirementPlan) *int { return &p.RetirementAge }),
	amountField("Current balance ($)", func(p *model.RetirementPlan) *float64 { return &p.CurrentBalance }),
	amountField("Monthly savings ($)", func(p *model.RetirementPlan) *float64 { return &p.MonthlySavings }),
	amountField("Ideal monthly savings ($)", func(p *model.RetirementPlan) *float64 { return &p.IdealMonthlySavings }),
	percentField("Expected return (%)", func(p *model.RetirementPlan) *float64 { return &p.ExpectedReturn }),
	percentField("Inflation (%)", func(p *model.RetirementPlan) *float64 { return &p.InflationRate }),
	amountField("Desired monthly income ($)", func(p *model.RetirementPlan) *float64 { return &p.DesiredMonthlyIncome }),
}

func intField(label string, ref func(*model.RetirementPlan) *int) planField {
	return planField{
		label: label,
		get: func(p model.RetirementPlan) string {
			return strconv.Itoa(*ref(&p))
		},
		set: func(p *model.RetirementPlan, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s must be a whole number", common.ErrInvalidInput, label)
			}
			*ref(p) = n
			return nil
		},
	}
}

func amountField(label string, ref func(*model.RetirementPlan) *float64) planField {
	return planField{
		label: label,
		get: func(p model.RetirementPlan) string {
			return strconv.FormatFloat(*ref(&p), 'f', -1, 64)
		},
		set: func(p *model.RetirementPlan, v string) error {
			f, err := parseNumber(v)
			if err != nil {
				return fmt.Errorf("%w: %s must be a number", common.ErrInvalidInput, label)
			}
			*ref(p) = f
			return nil
		},
	}
}

// percentField shows a fractional rate as a percentage.
func percentField(label string, ref func(*model.RetirementPlan) *float64) planField {
	return planField{
		label: label,
		get: func(p model.RetirementPlan) string {
			return strconv.FormatFloat(math.Round(*ref(&p)*100*1e6)/1e6, 'f', -1, 64)
		},
		set: func(p *model.RetirementPlan, v string) error {
			f, err := parseNumber(strings.TrimSuffix(strings.TrimSpace(v), "%"))
			if err != nil {
				return fmt.Errorf("%w: %s must be a number", common.ErrInvalidInput, label)
			}
			*ref(p) = f / 100
			return nil
		},
	}
}

func parseNumber(v string) (float64, error) {
	v = strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(v))
	return strconv.ParseFloat(v, 64)
}

func newPlanInputs(plan model.RetirementPlan) []textinput.Model {
	inputs := make([]textinput.Model, len(planFields))
	for i, field := range planFields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		in.SetValue(field.get(plan))
		inputs[i] = in
	}
	inputs[0].Placeholder = "unnamed"
	return inputs
}

func planFromInputs(inputs []textinput.Model) (model.RetirementPlan, error) {
	var plan model.RetirementPlan
	for i, field := range planFields {
		if err := field.set(&plan, inputs[i].Value()); err != nil {
			return plan, err
		}
	}
	return plan, nil
}

func newCredentialInputs() []textinput.Model {
	username := textinput.New()
	username.Prompt = ""
	username.Placeholder = "username"
	username.CharLimit = 64

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return []textinput.Model{username, password}
}
