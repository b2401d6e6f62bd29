// Package ledger turns exported rental P&L summaries into signed category amounts.
package ledger

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
)

// infoScanLines is how far into an export property metadata is looked for.
const infoScanLines = 10

// Parse converts export text into ledger lines, in input order.
// Malformed rows are dropped rather than reported.
func Parse(raw string) []model.LedgerLine {
	lines, _ := parse(raw)
	return lines
}

// ParseStatement parses an export and its header metadata. It returns
// common.ErrNoData when no row produced a ledger line.
func ParseStatement(raw string) (*model.Statement, error) {
	lines, skipped := parse(raw)

	stmt := &model.Statement{
		Info:    ExtractInfo(raw),
		Lines:   lines,
		Skipped: skipped,
	}

	slog.Debug("Parsed P&L export",
		"lines", len(lines),
		"skipped", skippedTotal(skipped),
		"property", stmt.Info.Property,
		"period", stmt.Info.Period)

	if len(lines) == 0 {
		return stmt, fmt.Errorf("%w: no ledger lines in %d skipped rows", common.ErrNoData, skippedTotal(skipped))
	}
	return stmt, nil
}

func parse(raw string) ([]model.LedgerLine, map[model.SkipReason]int) {
	var lines []model.LedgerLine
	skipped := make(map[model.SkipReason]int)
	section := model.SectionNone

	for _, text := range splitLines(raw) {
		row := ParseRow(text)
		switch row.Kind {
		case RowSection:
			section = row.Section
		case RowRecord:
			line := row.Line
			if section == model.SectionExpense {
				line.Amount = line.Amount.Neg()
			}
			lines = append(lines, line)
		case RowSkip:
			if row.Reason != model.SkipBlank {
				skipped[row.Reason]++
			}
		}
	}

	return lines, skipped
}

// ExtractInfo finds the property name and reporting period in the first rows
// of an export. Missing values are reported as model.UnknownInfo.
func ExtractInfo(raw string) model.PropertyInfo {
	info := model.PropertyInfo{Property: model.UnknownInfo, Period: model.UnknownInfo}

	lines := splitLines(raw)
	if len(lines) > infoScanLines {
		lines = lines[:infoScanLines]
	}

	for _, line := range lines {
		if strings.Contains(line, "Property:") {
			info.Property = infoValue(line)
		}
		if strings.Contains(line, "Date:") {
			info.Period = infoValue(line)
		}
	}

	return info
}

func infoValue(line string) string {
	fields := strings.SplitN(line, ",", fieldCount)
	if len(fields) <= itemField {
		return model.UnknownInfo
	}
	value := strings.Trim(strings.TrimSpace(fields[itemField]), `"`)
	if value == "" {
		return model.UnknownInfo
	}
	return value
}

func splitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

func skippedTotal(skipped map[model.SkipReason]int) int {
	total := 0
	for _, n := range skipped {
		total += n
	}
	return total
}
