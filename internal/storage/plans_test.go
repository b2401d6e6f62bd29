package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetirementPlans_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	plan := testPlan("early exit")
	plan.RetirementAge = 55
	plan.ExpectedReturn = 0.065
	require.NoError(t, store.SaveRetirementPlan(ctx, plan))

	got, err := store.GetRetirementPlan(ctx, "early exit")
	require.NoError(t, err)

	assert.Equal(t, plan.Name, got.Name)
	assert.Equal(t, plan.CurrentAge, got.CurrentAge)
	assert.Equal(t, 55, got.RetirementAge)
	assert.Equal(t, plan.CurrentBalance, got.CurrentBalance)
	assert.Equal(t, plan.MonthlySavings, got.MonthlySavings)
	assert.Equal(t, 0.065, got.ExpectedReturn)
	assert.Equal(t, plan.InflationRate, got.InflationRate)
	assert.Equal(t, plan.DesiredMonthlyIncome, got.DesiredMonthlyIncome)
	assert.Equal(t, plan.IdealMonthlySavings, got.IdealMonthlySavings)
}

func TestRetirementPlans_DuplicateName(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRetirementPlan(ctx, testPlan("base")))

	second := testPlan("base")
	second.MonthlySavings = 5
	err := store.SaveRetirementPlan(ctx, second)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)

	got, err := store.GetRetirementPlan(ctx, "base")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, got.MonthlySavings, "original row must be untouched")
}

func TestRetirementPlans_ListAndDelete(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.SaveRetirementPlan(ctx, testPlan(name)))
	}

	plans, err := store.ListRetirementPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "alpha", plans[0].Name)
	assert.Equal(t, "zeta", plans[2].Name)

	require.NoError(t, store.DeleteRetirementPlan(ctx, "mid"))
	assert.ErrorIs(t, store.DeleteRetirementPlan(ctx, "mid"), common.ErrNotFound)

	_, err = store.GetRetirementPlan(ctx, "mid")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRetirementPlans_Invalid(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	unnamed := testPlan("")
	assert.ErrorIs(t, store.SaveRetirementPlan(ctx, unnamed), ErrInvalidPlan)

	backwards := testPlan("backwards")
	backwards.RetirementAge = backwards.CurrentAge - 1
	err := store.SaveRetirementPlan(ctx, backwards)
	assert.ErrorIs(t, err, ErrInvalidPlan)
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	assert.ErrorIs(t, store.SaveRetirementPlan(ctx, nil), ErrNilParameter)
}
