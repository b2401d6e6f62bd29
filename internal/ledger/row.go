package ledger

import (
	"strings"

	"github.com/Veraticus/nestegg/internal/model"
	"github.com/shopspring/decimal"
)

const fieldCount = 4

// Field positions within a row.
const (
	markerField = 1
	itemField   = 2
	amountField = 3
)

// RowKind distinguishes what a single export row turned out to be.
type RowKind int

const (
	// RowSkip is a row that carries no data.
	RowSkip RowKind = iota
	// RowSection switches the current section.
	RowSection
	// RowRecord is a category amount. Its sign is not yet applied.
	RowRecord
)

// Row is the outcome of extracting one line of an export.
type Row struct {
	Section model.Section
	Reason  model.SkipReason
	Line    model.LedgerLine
	Kind    RowKind
}

var subtotalLabels = map[string]bool{
	"Total Income":   true,
	"Total Expenses": true,
}

// ParseRow extracts a single line of an export. The amount in a RowRecord is
// unsigned; the caller applies the section sign.
func ParseRow(line string) Row {
	line = strings.TrimSpace(line)
	if line == "" {
		return skip(model.SkipBlank)
	}

	fields := strings.SplitN(line, ",", fieldCount)
	if len(fields) < fieldCount {
		return skip(model.SkipTooFewFields)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if section, ok := sectionMarker(fields); ok {
		return Row{Kind: RowSection, Section: section}
	}

	item := fields[itemField]
	if item == "" {
		return skip(model.SkipEmptyItem)
	}

	raw := cleanAmount(fields[amountField])
	if raw == "" {
		return skip(model.SkipEmptyAmount)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return skip(model.SkipBadAmount)
	}

	if subtotalLabels[item] {
		return skip(model.SkipSubtotal)
	}

	return Row{
		Kind: RowRecord,
		Line: model.LedgerLine{Category: item, Amount: amount},
	}
}

// sectionMarker reports whether the row is an Income or Expense header.
// A marker one column before the item column wins over whatever the item
// column holds; otherwise the item column itself may carry the marker.
func sectionMarker(fields []string) (model.Section, bool) {
	for _, label := range []string{fields[markerField], fields[itemField]} {
		switch model.Section(label) {
		case model.SectionIncome:
			return model.SectionIncome, true
		case model.SectionExpense:
			return model.SectionExpense, true
		}
	}
	return model.SectionNone, false
}

// cleanAmount unwraps quotes and drops currency symbols and thousands separators.
func cleanAmount(s string) string {
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

func skip(reason model.SkipReason) Row {
	return Row{Kind: RowSkip, Reason: reason}
}
