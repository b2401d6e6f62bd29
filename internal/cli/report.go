package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/nestegg/internal/model"
)

const (
	categoryWidth  = 28
	amountWidth    = 16
	histogramWidth = 40
)

// RenderStatement lists every parsed line with its signed amount.
func RenderStatement(stmt *model.Statement) string {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("%s %s", HouseIcon, stmt.Info.Property)))
	b.WriteString("\n")
	b.WriteString(SubtleStyle.Render("Period: " + stmt.Info.Period))
	b.WriteString("\n\n")

	header := fmt.Sprintf("%-*s %*s", categoryWidth, "Category", amountWidth, "Amount")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")
	for _, line := range stmt.Lines {
		b.WriteString(amountRow(line.Category, FormatMoney(line.Amount), line.Amount.IsNegative()))
		b.WriteString("\n")
	}

	if skipped := formatSkipped(stmt.Skipped); skipped != "" {
		b.WriteString("\n")
		b.WriteString(SubtleStyle.Render(skipped))
		b.WriteString("\n")
	}
	return b.String()
}

func formatSkipped(skipped map[model.SkipReason]int) string {
	if len(skipped) == 0 {
		return ""
	}
	reasons := make([]string, 0, len(skipped))
	for reason, n := range skipped {
		reasons = append(reasons, fmt.Sprintf("%s=%d", reason, n))
	}
	sort.Strings(reasons)
	return "Skipped rows: " + strings.Join(reasons, ", ")
}

// RenderBreakdown shows per-category totals followed by income, expenses and net cash flow.
func RenderBreakdown(bd model.Breakdown) string {
	rows := make([]string, 0, len(bd.Categories)+5)
	rows = append(rows, TableHeaderStyle.Render(fmt.Sprintf("%-*s %*s", categoryWidth, "Category", amountWidth, "Total")))
	for _, c := range bd.Categories {
		rows = append(rows, amountRow(c.Category, FormatMoney(c.Amount), c.Amount.IsNegative()))
	}
	rows = append(rows,
		SubtleStyle.Render(strings.Repeat("─", categoryWidth+amountWidth+1)),
		amountRow("Income", FormatMoney(bd.Income), false),
		amountRow("Expenses", FormatMoney(bd.Expenses), bd.Expenses.IsNegative()),
		BoldStyle.Render(amountRow("Net cash flow", FormatMoney(bd.NetCashFlow), bd.NetCashFlow.IsNegative())),
	)
	return RenderBox(ChartIcon+" Breakdown", strings.Join(rows, "\n"))
}

// RenderMetrics shows the investment return figures.
func RenderMetrics(m model.InvestmentMetrics) string {
	rows := []string{
		amountRow("Net cash flow", FormatMoney(m.NetCashFlow), m.NetCashFlow.IsNegative()),
		amountRow("Cash-on-cash ROI", FormatPercent(m.CashOnCashROI), m.CashOnCashROI.IsNegative()),
		amountRow("Annual depreciation", FormatMoney(m.AnnualDepreciation), false),
		amountRow("Taxable income (est.)", FormatMoney(m.TaxableIncomeEstimate), m.TaxableIncomeEstimate.IsNegative()),
	}
	return RenderBox("Investment metrics", strings.Join(rows, "\n"))
}

func amountRow(label, amount string, negative bool) string {
	if len(label) > categoryWidth-1 {
		label = label[:categoryWidth-4] + "..."
	}
	cell := fmt.Sprintf("%*s", amountWidth, amount)
	if negative {
		cell = ErrorStyle.Render(cell)
	}
	return fmt.Sprintf("%-*s %s", categoryWidth, label, cell)
}

// RenderPlan shows the inputs of a retirement plan.
func RenderPlan(p model.RetirementPlan) string {
	name := p.Name
	if name == "" {
		name = "Unsaved plan"
	}
	rows := []string{
		fmt.Sprintf("%-*s %d → %d (%d years)", categoryWidth, "Age", p.CurrentAge, p.RetirementAge, p.HorizonYears()),
		fmt.Sprintf("%-*s %s", categoryWidth, "Current balance", FormatDollars(p.CurrentBalance)),
		fmt.Sprintf("%-*s %s", categoryWidth, "Monthly savings", FormatDollars(p.MonthlySavings)),
		fmt.Sprintf("%-*s %s", categoryWidth, "Ideal monthly savings", FormatDollars(p.IdealMonthlySavings)),
		fmt.Sprintf("%-*s %s", categoryWidth, "Expected return", FormatRate(p.ExpectedReturn)),
		fmt.Sprintf("%-*s %s", categoryWidth, "Inflation", FormatRate(p.InflationRate)),
		fmt.Sprintf("%-*s %s", categoryWidth, "Desired monthly income", FormatDollars(p.DesiredMonthlyIncome)),
	}
	return RenderBox(name, strings.Join(rows, "\n"))
}

// RenderScenarios lists the ending balance of each deterministic scenario.
func RenderScenarios(results []model.ScenarioResult) string {
	rows := make([]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, fmt.Sprintf("%-*s %*s", categoryWidth, r.Label, amountWidth, FormatDollars(r.EndingBalance)))
	}
	return RenderBox(ChartIcon+" Scenarios", strings.Join(rows, "\n"))
}

// RenderOutlook shows the Monte Carlo percentiles and whether the plan is on track.
func RenderOutlook(o model.Outlook) string {
	rows := []string{
		fmt.Sprintf("%-*s %*s", categoryWidth, "10th percentile", amountWidth, FormatDollars(o.P10)),
		fmt.Sprintf("%-*s %*s", categoryWidth, "Median", amountWidth, FormatDollars(o.P50)),
		fmt.Sprintf("%-*s %*s", categoryWidth, "90th percentile", amountWidth, FormatDollars(o.P90)),
		"",
		fmt.Sprintf("%-*s %*s", categoryWidth, "Sustainable monthly income", amountWidth, FormatDollars(o.SustainableMonthlyIncome)),
		fmt.Sprintf("%-*s %*s", categoryWidth, "Desired monthly income", amountWidth, FormatDollars(o.DesiredMonthlyIncome)),
		"",
	}
	if o.OnTrack {
		rows = append(rows, FormatSuccess("On track: the median outcome covers your desired income"))
	} else {
		rows = append(rows, FormatWarning("Off track: the median outcome falls short of your desired income"))
	}
	return RenderBox("Monte Carlo outlook", strings.Join(rows, "\n"))
}

// RenderHistogram draws one horizontal bar per bin, scaled to the fullest bin.
func RenderHistogram(bins []model.HistogramBin) string {
	if len(bins) == 0 {
		return SubtleStyle.Render("No simulation results")
	}

	maxCount := 0
	for _, bin := range bins {
		maxCount = max(maxCount, bin.Count)
	}

	rows := make([]string, 0, len(bins))
	for _, bin := range bins {
		filled := 0
		if maxCount > 0 {
			filled = bin.Count * histogramWidth / maxCount
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", histogramWidth-filled)
		rows = append(rows, fmt.Sprintf("%*s %s %d",
			amountWidth, FormatDollars(bin.Lower), ProgressStyle.Render(bar), bin.Count))
	}
	return strings.Join(rows, "\n")
}

// RenderReportList shows stored rental reports, one per line.
func RenderReportList(reports []model.RentalReport) string {
	if len(reports) == 0 {
		return FormatInfo("No rental reports saved yet")
	}
	rows := []string{TableHeaderStyle.Render(fmt.Sprintf("%-6s %-6s %-*s %s", "ID", "Year", categoryWidth, "Property", "Uploaded"))}
	for _, r := range reports {
		rows = append(rows, fmt.Sprintf("%-6d %-6d %-*s %s",
			r.ID, r.Year, categoryWidth, r.Property, r.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	return strings.Join(rows, "\n")
}

// RenderPlanList shows stored retirement plans, one per line.
func RenderPlanList(plans []model.RetirementPlan) string {
	if len(plans) == 0 {
		return FormatInfo("No retirement plans saved yet")
	}
	rows := []string{TableHeaderStyle.Render(fmt.Sprintf("%-*s %-9s %*s %*s",
		categoryWidth, "Name", "Ages", amountWidth, "Balance", amountWidth, "Monthly"))}
	for _, p := range plans {
		rows = append(rows, fmt.Sprintf("%-*s %-9s %*s %*s",
			categoryWidth, p.Name,
			fmt.Sprintf("%d-%d", p.CurrentAge, p.RetirementAge),
			amountWidth, FormatDollars(p.CurrentBalance),
			amountWidth, FormatDollars(p.MonthlySavings)))
	}
	return strings.Join(rows, "\n")
}
