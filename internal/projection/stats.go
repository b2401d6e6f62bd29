package projection

import (
	"math"
	"slices"

	"github.com/Veraticus/nestegg/internal/model"
)

// Summary constants.
const (
	// WithdrawalRate is the annual share of savings assumed sustainable.
	WithdrawalRate   = 0.04
	DefaultBins      = 50
	lowPercentile    = 10
	medianPercentile = 50
	highPercentile   = 90
)

// Percentile returns the p-th percentile (0-100) of samples, interpolating
// linearly between closest ranks. Empty input yields 0.
func Percentile(samples []float64, p float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(rank-float64(lo))
}

// SustainableMonthlyIncome applies the withdrawal rate to a balance and spreads it over a year.
func SustainableMonthlyIncome(balance float64) float64 {
	return balance * WithdrawalRate / monthsPerYear
}

// Summarize computes percentiles of the samples and whether the median
// supports the desired monthly income.
func Summarize(samples []float64, desiredMonthlyIncome float64) model.Outlook {
	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var out model.Outlook
	if len(sorted) > 0 {
		out.P10 = percentileSorted(sorted, lowPercentile)
		out.P50 = percentileSorted(sorted, medianPercentile)
		out.P90 = percentileSorted(sorted, highPercentile)
	}
	out.SustainableMonthlyIncome = SustainableMonthlyIncome(out.P50)
	out.DesiredMonthlyIncome = desiredMonthlyIncome
	out.OnTrack = out.SustainableMonthlyIncome >= desiredMonthlyIncome
	return out
}

// Histogram splits the range of the finite samples into bins of equal width.
// NaN and -Inf samples land in the first bin, +Inf in the last.
func Histogram(samples []float64, bins int) []model.HistogramBin {
	if len(samples) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi || lo == hi {
		if lo > hi {
			lo, hi = 0, 0
		}
		return []model.HistogramBin{{Lower: lo, Upper: hi, Count: len(samples)}}
	}

	// Halving keeps hi-lo finite when the samples span most of float64.
	halfSpan := hi/2 - lo/2
	width := halfSpan / float64(bins) * 2
	out := make([]model.HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, v := range samples {
		out[binIndex(v, lo, halfSpan, bins)].Count++
	}
	return out
}

func binIndex(v, lo, halfSpan float64, bins int) int {
	switch {
	case math.IsNaN(v), math.IsInf(v, -1):
		return 0
	case math.IsInf(v, 1):
		return bins - 1
	}
	pos := (v/2 - lo/2) / halfSpan * float64(bins)
	if math.IsNaN(pos) || pos < 0 {
		return 0
	}
	return min(int(pos), bins-1)
}
