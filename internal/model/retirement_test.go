package model

import (
	"math"
	"testing"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestRetirementPlan_Validate(t *testing.T) {
	tests := []struct {
		mutate      func(p *RetirementPlan)
		name        string
		requireName bool
		wantErr     bool
	}{
		{name: "defaults", mutate: func(_ *RetirementPlan) {}},
		{name: "named plan", requireName: true, mutate: func(p *RetirementPlan) { p.Name = "base" }},
		{name: "missing name", requireName: true, wantErr: true, mutate: func(_ *RetirementPlan) {}},
		{name: "too young", wantErr: true, mutate: func(p *RetirementPlan) { p.CurrentAge = 17 }},
		{name: "retire before now", wantErr: true, mutate: func(p *RetirementPlan) { p.RetirementAge = p.CurrentAge }},
		{name: "retire past max", wantErr: true, mutate: func(p *RetirementPlan) { p.RetirementAge = MaxAge + 1 }},
		{name: "negative balance", wantErr: true, mutate: func(p *RetirementPlan) { p.CurrentBalance = -1 }},
		{name: "NaN savings", wantErr: true, mutate: func(p *RetirementPlan) { p.MonthlySavings = math.NaN() }},
		{name: "infinite return", wantErr: true, mutate: func(p *RetirementPlan) { p.ExpectedReturn = math.Inf(1) }},
		{name: "return above 100%", wantErr: true, mutate: func(p *RetirementPlan) { p.ExpectedReturn = 100 }},
		{name: "deflation below -100%", wantErr: true, mutate: func(p *RetirementPlan) { p.InflationRate = -1.5 }},
		{name: "return at bound", mutate: func(p *RetirementPlan) { p.ExpectedReturn = MaxRate }},
		{name: "negative return allowed", mutate: func(p *RetirementPlan) { p.ExpectedReturn = -0.02 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := DefaultRetirementPlan()
			tt.mutate(&plan)

			err := plan.Validate(tt.requireName)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidInput)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRetirementPlan_HorizonYears(t *testing.T) {
	plan := DefaultRetirementPlan()
	assert.Equal(t, 25, plan.HorizonYears())
}
