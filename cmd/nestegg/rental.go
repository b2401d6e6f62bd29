package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/nestegg/internal/cli"
	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/ledger"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// investmentFlags are the owner-supplied figures behind the return metrics.
type investmentFlags struct {
	initialInvestment string
	depreciableBasis  string
	usefulLife        int
}

func (f *investmentFlags) register(fs *pflag.FlagSet) {
	defaults := model.DefaultInvestmentInputs()
	fs.StringVar(&f.initialInvestment, "initial-investment", defaults.InitialInvestment.String(), "Cash invested in the property")
	fs.StringVar(&f.depreciableBasis, "depreciable-basis", defaults.DepreciableBasis.String(), "Depreciable basis of the property")
	fs.IntVar(&f.usefulLife, "useful-life", defaults.UsefulLifeYears, "Useful life in years for straight-line depreciation")
}

func (f *investmentFlags) inputs() (model.InvestmentInputs, error) {
	initial, err := parseAmountFlag("initial-investment", f.initialInvestment)
	if err != nil {
		return model.InvestmentInputs{}, err
	}
	basis, err := parseAmountFlag("depreciable-basis", f.depreciableBasis)
	if err != nil {
		return model.InvestmentInputs{}, err
	}
	return model.InvestmentInputs{
		InitialInvestment: initial,
		DepreciableBasis:  basis,
		UsefulLifeYears:   f.usefulLife,
	}, nil
}

func parseAmountFlag(name, value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(value))
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: --%s %q is not an amount", common.ErrInvalidInput, name, value)
	}
	return amount, nil
}

func rentalCmd() *cobra.Command {
	var (
		investment investmentFlags
		property   string
		year       int
		save       bool
	)

	cmd := &cobra.Command{
		Use:   "rental <file.csv>",
		Short: "Analyze a rental property P&L export",
		Long: `Parse a rental property profit and loss CSV export and show its ledger lines,
per-category totals, net cash flow and return metrics.

Use --save to keep the export so it can be shown again later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read export: %w", err)
			}

			inputs, err := investment.inputs()
			if err != nil {
				return err
			}

			stmt, err := renderRental(cmd.OutOrStdout(), string(raw), inputs)
			if err != nil {
				return err
			}
			if !save {
				return nil
			}

			report, err := newReport(property, year, stmt, string(raw))
			if err != nil {
				return err
			}

			store, _, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.SaveRentalReport(cmd.Context(), report); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}

			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Saved report %d (%s, %d)", report.ID, report.Property, report.Year)))
			return nil
		},
	}

	investment.register(cmd.Flags())
	cmd.Flags().StringVar(&property, "property", "", "Property name for the saved report (default: from the export header)")
	cmd.Flags().IntVar(&year, "year", 0, "Tax year of the saved report")
	cmd.Flags().BoolVar(&save, "save", false, "Store the export")

	cmd.AddCommand(rentalListCmd())
	cmd.AddCommand(rentalShowCmd())

	return cmd
}

func rentalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved rental reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			reports, err := store.ListRentalReports(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list reports: %w", err)
			}

			printLine(cmd, cli.RenderReportList(reports))
			return nil
		},
	}
}

func rentalShowCmd() *cobra.Command {
	var investment investmentFlags

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Analyze a saved rental report again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: report id %q", common.ErrInvalidInput, args[0])
			}

			inputs, err := investment.inputs()
			if err != nil {
				return err
			}

			store, _, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStorage(store)

			report, err := store.GetRentalReport(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("No rental report with id %d.", id), err)
				}
				return fmt.Errorf("failed to load report: %w", err)
			}

			printLine(cmd, cli.FormatInfo(fmt.Sprintf("Report %d: %s, %d", report.ID, report.Property, report.Year)))
			_, err = renderRental(cmd.OutOrStdout(), report.RawCSV, inputs)
			return err
		},
	}

	investment.register(cmd.Flags())
	return cmd
}

// renderRental parses raw and writes the statement, breakdown and metrics to w.
func renderRental(w io.Writer, raw string, inputs model.InvestmentInputs) (*model.Statement, error) {
	stmt, err := ledger.ParseStatement(raw)
	if err != nil {
		if errors.Is(err, common.ErrNoData) {
			return nil, common.NewUserError("No data parsed. Check CSV format.", err)
		}
		return nil, err
	}

	breakdown := ledger.Summarize(stmt.Lines)
	metrics := ledger.Evaluate(breakdown.NetCashFlow, inputs)

	sections := []string{
		cli.RenderStatement(stmt),
		cli.RenderBreakdown(breakdown),
		cli.RenderMetrics(metrics),
	}
	if _, err := fmt.Fprintln(w, strings.Join(sections, "\n\n")); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return stmt, nil
}

// newReport names a report after the flags, falling back to the export header.
func newReport(property string, year int, stmt *model.Statement, raw string) (*model.RentalReport, error) {
	property = strings.TrimSpace(property)
	if property == "" && stmt.Info.Property != model.UnknownInfo {
		property = stmt.Info.Property
	}
	if property == "" {
		return nil, common.NewUserError("The export has no property name; pass --property to save it.", common.ErrInvalidInput)
	}
	if year <= 0 {
		return nil, common.NewUserError("Pass --year to save the report.", common.ErrInvalidInput)
	}
	return &model.RentalReport{Property: property, Year: year, RawCSV: raw}, nil
}
