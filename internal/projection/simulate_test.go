package projection

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulate_SampleCount(t *testing.T) {
	for _, n := range []int{0, 1, 7, DefaultTrials} {
		samples := Simulate(baseParams(), n, DefaultVolatility)
		assert.Len(t, samples, n)
	}
}

func TestSimulate_ZeroVolatilityMatchesWholeYear(t *testing.T) {
	p := baseParams()
	want := ProjectWholeYear(p)

	samples := Simulate(p, 200, 0)
	require.Len(t, samples, 200)
	for i, s := range samples {
		assert.Equal(t, want, s, "trial %d", i)
	}
}

func TestSimulate_ZeroHorizon(t *testing.T) {
	p := baseParams()
	p.HorizonYears = 0

	samples := Simulate(p, 50, 0.2)
	require.Len(t, samples, 50)
	for _, s := range samples {
		assert.Equal(t, p.StartBalance, s)
	}
}

func TestSimulator_SeedIsReproducible(t *testing.T) {
	p := baseParams()
	ctx := context.Background()

	single, err := NewSimulator(WithSeed(42), WithWorkers(1), WithTrials(300)).Run(ctx, p)
	require.NoError(t, err)

	parallel, err := NewSimulator(WithSeed(42), WithWorkers(8), WithTrials(300)).Run(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, single, parallel)

	other, err := NewSimulator(WithSeed(43), WithWorkers(8), WithTrials(300)).Run(ctx, p)
	require.NoError(t, err)
	assert.NotEqual(t, single, other)
}

func TestSimulator_SpreadAroundDeterministicPath(t *testing.T) {
	p := baseParams()
	samples, err := NewSimulator(WithSeed(7), WithTrials(2000)).Run(context.Background(), p)
	require.NoError(t, err)

	out := Summarize(samples, 0)
	assert.Less(t, out.P10, out.P50)
	assert.Less(t, out.P50, out.P90)

	center := ProjectWholeYear(p)
	assert.Less(t, out.P10, center)
	assert.Greater(t, out.P90, center)
}

func TestSimulator_Progress(t *testing.T) {
	var calls atomic.Int64
	sim := NewSimulator(WithTrials(123), WithWorkers(4), WithProgress(func() { calls.Add(1) }))

	_, err := sim.Run(context.Background(), baseParams())
	require.NoError(t, err)
	assert.Equal(t, int64(123), calls.Load())
}

func TestSimulator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		sim     *Simulator
		params  Params
		wantErr error
	}{
		{
			name:    "negative trials",
			sim:     NewSimulator(WithTrials(-1)),
			params:  baseParams(),
			wantErr: common.ErrInvalidInput,
		},
		{
			name:    "negative volatility",
			sim:     NewSimulator(WithVolatility(-0.1)),
			params:  baseParams(),
			wantErr: common.ErrInvalidInput,
		},
		{
			name:    "volatility above max",
			sim:     NewSimulator(WithVolatility(100)),
			params:  baseParams(),
			wantErr: common.ErrInvalidInput,
		},
		{
			name:    "non-finite params",
			sim:     NewSimulator(),
			params:  Params{StartBalance: math.NaN(), HorizonYears: 1},
			wantErr: common.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sim.Run(context.Background(), tt.params)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestSimulator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulator(WithTrials(10)).Run(ctx, baseParams())
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}
