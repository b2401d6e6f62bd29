package cli

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	usd          = money.GetCurrency(money.USD)
	wholeDollars = money.NewFormatter(0, ".", ",", "$", "$1")
)

// FormatMoney renders an exact amount as dollars and cents, e.g. -$2,250.00.
// Amounts beyond int64 cents are printed without grouping.
func FormatMoney(amount decimal.Decimal) string {
	cents := amount.Shift(int32(usd.Fraction)).Round(0)
	if !cents.BigInt().IsInt64() {
		return signed(amount.Sign() < 0, amount.Abs().StringFixed(2))
	}
	return usd.Formatter().Format(cents.IntPart())
}

// FormatDollars renders a projected balance rounded to whole dollars, e.g. $1,234,568.
func FormatDollars(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Sprintf("%v", amount)
	}
	rounded := math.Round(amount)
	if rounded < math.MinInt64 || rounded >= float64(math.MaxInt64) {
		return signed(rounded < 0, strconv.FormatFloat(math.Abs(rounded), 'f', 0, 64))
	}
	return wholeDollars.Format(int64(rounded))
}

func signed(negative bool, digits string) string {
	if negative {
		return "-$" + digits
	}
	return "$" + digits
}

// FormatPercent renders a percentage that is already scaled by 100.
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// FormatRate renders a fractional rate (0.07) as a percentage (7.00%).
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}
