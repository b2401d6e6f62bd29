package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/nestegg/internal/cli"
	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/config"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/projection"
	"github.com/Veraticus/nestegg/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const percent = 100

// planFlags holds the planner inputs. Rates are given in percent.
type planFlags struct {
	name           string
	currentAge     int
	retirementAge  int
	balance        float64
	monthly        float64
	ideal          float64
	desiredIncome  float64
	returnPercent  float64
	inflationPct   float64
	storedPlanName string
}

func (f *planFlags) register(fs *pflag.FlagSet) {
	d := model.DefaultRetirementPlan()
	fs.StringVar(&f.name, "name", "", "Plan name, required with --save")
	fs.IntVar(&f.currentAge, "current-age", d.CurrentAge, "Current age")
	fs.IntVar(&f.retirementAge, "retirement-age", d.RetirementAge, "Planned retirement age")
	fs.Float64Var(&f.balance, "balance", d.CurrentBalance, "Current retirement savings")
	fs.Float64Var(&f.monthly, "monthly-savings", d.MonthlySavings, "Amount saved each month")
	fs.Float64Var(&f.ideal, "ideal-savings", d.IdealMonthlySavings, "Monthly savings for the ideal scenario")
	fs.Float64Var(&f.desiredIncome, "desired-income", d.DesiredMonthlyIncome, "Desired monthly income in retirement")
	fs.Float64Var(&f.returnPercent, "return", d.ExpectedReturn*percent, "Expected annual return in percent")
	fs.Float64Var(&f.inflationPct, "inflation", d.InflationRate*percent, "Expected annual inflation in percent")
	fs.StringVar(&f.storedPlanName, "plan", "", "Start from a saved plan; other plan flags override its values")
}

// apply copies every flag the user set onto plan.
func (f *planFlags) apply(fs *pflag.FlagSet, plan *model.RetirementPlan) {
	if fs.Changed("name") {
		plan.Name = strings.TrimSpace(f.name)
	}
	if fs.Changed("current-age") {
		plan.CurrentAge = f.currentAge
	}
	if fs.Changed("retirement-age") {
		plan.RetirementAge = f.retirementAge
	}
	if fs.Changed("balance") {
		plan.CurrentBalance = f.balance
	}
	if fs.Changed("monthly-savings") {
		plan.MonthlySavings = f.monthly
	}
	if fs.Changed("ideal-savings") {
		plan.IdealMonthlySavings = f.ideal
	}
	if fs.Changed("desired-income") {
		plan.DesiredMonthlyIncome = f.desiredIncome
	}
	if fs.Changed("return") {
		plan.ExpectedReturn = f.returnPercent / percent
	}
	if fs.Changed("inflation") {
		plan.InflationRate = f.inflationPct / percent
	}
}

// simulationFlags override the projection settings from the configuration.
type simulationFlags struct {
	trials     int
	volatility float64
	seed       uint64
	workers    int
}

func (f *simulationFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.trials, "trials", projection.DefaultTrials, "Number of Monte Carlo trials (default from projection.trials)")
	fs.Float64Var(&f.volatility, "volatility", projection.DefaultVolatility, "Standard deviation of annual returns (default from projection.volatility)")
	fs.Uint64Var(&f.seed, "seed", 0, "Random seed for reproducible runs (0 picks one)")
	fs.IntVar(&f.workers, "workers", 0, "Parallel trial workers (0 uses every CPU)")
}

func (f *simulationFlags) options(fs *pflag.FlagSet, cfg *config.Config) []projection.Option {
	trials, volatility, workers := cfg.Trials, cfg.Volatility, cfg.Workers
	if fs.Changed("trials") {
		trials = f.trials
	}
	if fs.Changed("volatility") {
		volatility = f.volatility
	}
	if fs.Changed("workers") {
		workers = f.workers
	}

	opts := []projection.Option{
		projection.WithTrials(trials),
		projection.WithVolatility(volatility),
		projection.WithSeed(f.seed),
	}
	if workers > 0 {
		opts = append(opts, projection.WithWorkers(workers))
	}
	return opts
}

func retireCmd() *cobra.Command {
	var (
		plan  planFlags
		sim   simulationFlags
		save  bool
		noBar bool
	)

	cmd := &cobra.Command{
		Use:   "retire",
		Short: "Project retirement savings",
		Long: `Project a retirement plan under the base, optimistic, pessimistic and
ideal savings scenarios, then simulate market paths to estimate the range of
outcomes and whether the desired retirement income is sustainable.

Examples:
  nestegg retire --current-age 35 --retirement-age 60 --balance 50000
  nestegg retire --plan early --trials 5000 --seed 42
  nestegg retire --name early --retirement-age 55 --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			fs := cmd.Flags()

			needStore := save || plan.storedPlanName != ""
			var (
				cfg   *config.Config
				plans service.PlanStore
				err   error
			)
			if needStore {
				store, storeCfg, err := initStorage(ctx)
				if err != nil {
					return err
				}
				defer closeStorage(store)
				cfg, plans = storeCfg, store
			} else if cfg, err = loadConfig(); err != nil {
				return err
			}

			current := model.DefaultRetirementPlan()
			if plan.storedPlanName != "" {
				stored, err := plans.GetRetirementPlan(ctx, plan.storedPlanName)
				if err != nil {
					return planLookupError(plan.storedPlanName, err)
				}
				current = *stored
			}
			plan.apply(fs, &current)

			if err := current.Validate(save); err != nil {
				return err
			}

			if save {
				if err := plans.SaveRetirementPlan(ctx, &current); err != nil {
					if errors.Is(err, common.ErrDuplicateEntry) {
						return common.NewUserError(fmt.Sprintf("A plan named %q already exists.", current.Name), err)
					}
					return fmt.Errorf("failed to save plan: %w", err)
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Saved plan %q", current.Name)))
			}

			opts := sim.options(fs, cfg)
			simulator := projection.NewSimulator(opts...)

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Simulation", "Try fewer --trials for a quicker answer.")
			ctx = interrupts.HandleInterrupts(ctx)

			if !noBar && simulator.Trials > 0 {
				_, advance := cli.NewSimulationProgress(cmd.ErrOrStderr(), simulator.Trials)
				simulator.OnTrial = advance
			}

			analysis, err := simulator.Analyze(ctx, current)
			if err != nil {
				if interrupts.WasInterrupted() || errors.Is(err, context.Canceled) {
					interrupts.Interrupt()
					return nil
				}
				return fmt.Errorf("projection failed: %w", err)
			}

			printLine(cmd, renderAnalysis(current, analysis))
			return nil
		},
	}

	plan.register(cmd.Flags())
	sim.register(cmd.Flags())
	cmd.Flags().BoolVar(&save, "save", false, "Store the plan under --name before projecting it")
	cmd.Flags().BoolVar(&noBar, "no-progress", false, "Do not draw the simulation progress bar")

	return cmd
}

func renderAnalysis(plan model.RetirementPlan, analysis *projection.Analysis) string {
	sections := []string{
		cli.RenderPlan(plan),
		cli.RenderScenarios(analysis.Scenarios),
		cli.RenderOutlook(analysis.Outlook),
		cli.FormatInfo(fmt.Sprintf("%d trials, %s volatility", analysis.Trials, cli.FormatRate(analysis.Volatility))),
		cli.RenderHistogram(analysis.Histogram),
	}
	return strings.Join(sections, "\n\n")
}
