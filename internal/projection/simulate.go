package projection

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/Veraticus/nestegg/internal/common"
	"golang.org/x/sync/errgroup"
)

// Simulation defaults.
const (
	DefaultTrials     = 1000
	DefaultVolatility = 0.05
	MaxVolatility     = 1.0
)

// Simulator runs Monte Carlo trials of a projection. Each trial draws one
// normally distributed annual return per year, shared by all months of that
// year.
type Simulator struct {
	// OnTrial, if set, is called once per finished trial. It may be called
	// from several goroutines at once.
	OnTrial    func()
	Trials     int
	Volatility float64
	// Seed makes runs reproducible. Zero picks a random seed.
	Seed    uint64
	Workers int
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithTrials sets the number of trials.
func WithTrials(n int) Option {
	return func(s *Simulator) { s.Trials = n }
}

// WithVolatility sets the standard deviation of the annual return draws.
func WithVolatility(v float64) Option {
	return func(s *Simulator) { s.Volatility = v }
}

// WithSeed fixes the random seed.
func WithSeed(seed uint64) Option {
	return func(s *Simulator) { s.Seed = seed }
}

// WithWorkers bounds the number of goroutines running trials.
func WithWorkers(n int) Option {
	return func(s *Simulator) { s.Workers = n }
}

// WithProgress registers a per-trial callback.
func WithProgress(fn func()) Option {
	return func(s *Simulator) { s.OnTrial = fn }
}

// NewSimulator creates a simulator with default trials and volatility.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		Trials:     DefaultTrials,
		Volatility: DefaultVolatility,
		Workers:    runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate runs trials with a random seed and returns one ending balance per trial.
func Simulate(p Params, trials int, volatility float64) []float64 {
	samples, err := NewSimulator(WithTrials(trials), WithVolatility(volatility)).Run(context.Background(), p)
	if err != nil {
		slog.Warn("Simulation failed", "error", err)
		return nil
	}
	return samples
}

// Run executes all trials. With a fixed seed the result does not depend on
// the number of workers.
func (s *Simulator) Run(ctx context.Context, p Params) ([]float64, error) {
	if s.Trials < 0 {
		return nil, fmt.Errorf("%w: trials must not be negative, got %d", common.ErrInvalidInput, s.Trials)
	}
	if s.Volatility < 0 || s.Volatility > MaxVolatility || math.IsNaN(s.Volatility) {
		return nil, fmt.Errorf("%w: volatility must be between 0 and %g", common.ErrInvalidInput, MaxVolatility)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	samples := make([]float64, s.Trials)

	// Nothing to draw without a horizon.
	if p.HorizonYears == 0 {
		for i := range samples {
			samples[i] = p.StartBalance
			s.progress()
		}
		return samples, nil
	}

	seed := s.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}
	chunk := (s.Trials + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < s.Trials; start += chunk {
		end := min(start+chunk, s.Trials)
		g.Go(func() error {
			for trial := start; trial < end; trial++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				samples[trial] = s.trial(p, seed, trial)
				s.progress()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("simulation interrupted: %w", err)
	}

	slog.Debug("Completed simulation",
		"trials", s.Trials,
		"horizon_years", p.HorizonYears,
		"volatility", s.Volatility,
		"workers", workers)

	return samples, nil
}

func (s *Simulator) trial(p Params, seed uint64, trial int) float64 {
	rng := rand.New(rand.NewPCG(seed, uint64(trial)))

	returns := make([]float64, p.HorizonYears)
	for year := range returns {
		returns[year] = p.AnnualReturnRate + s.Volatility*rng.NormFloat64()
	}

	balance := p.StartBalance
	for year, rate := range returns {
		balance = growYear(balance, yearlyContribution(p, year), rate)
	}
	return balance
}

func (s *Simulator) progress() {
	if s.OnTrial != nil {
		s.OnTrial()
	}
}
