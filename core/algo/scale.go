// Package algo has the axis-scale rules for compared metrics.
package algo

import (
	"math"

	"github.com/huangsam/starsview/schema"
)

const (
	// targetSteps is the number of intervals a general axis aims for.
	targetSteps = 5

	// spanFloor keeps the span of an all-equal axis above zero.
	spanFloor = 0.0001

	// spanRatio is the minimum span relative to the observed maximum.
	spanRatio = 0.05

	// maxWeightTick is the largest weight axis drawn with one tick per integer.
	// Larger weights use the general rule.
	maxWeightTick = 100
)

// quartileTicks returns the unit-interval scale with ticks at each quarter.
func quartileTicks() schema.Scale {
	return schema.Scale{Min: 0, Max: 1, Ticks: []float64{0, 0.25, 0.5, 0.75, 1}}
}

// ComputeScale picks an axis domain and ticks for the observed values of the
// active metric. Absent values are ignored.
func ComputeScale(values []schema.NullFloat, metric schema.Metric) schema.Scale {
	observed := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			observed = append(observed, v.Float64)
		}
	}

	// 1. Nothing to plot
	if len(observed) == 0 {
		return quartileTicks()
	}

	// 2. Bounded ratings and scores have fixed domains
	switch metric {
	case schema.MeasureStars:
		return schema.Scale{Min: 1, Max: 5, Ticks: []float64{1, 2, 3, 4, 5}}
	case schema.CalculatedRawStarsScore:
		return quartileTicks()
	}

	lo, hi := observed[0], observed[0]
	for _, v := range observed[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	// 3. Weights are small integers counted from zero
	if top := math.Max(1, math.Ceil(hi)); metric == schema.StarWeight && top <= maxWeightTick {
		ticks := make([]float64, 0, int(top)+1)
		for i := 0.0; i <= top; i++ {
			ticks = append(ticks, i)
		}
		return schema.Scale{Min: 0, Max: top, Ticks: ticks}
	}

	// 4. General metrics snap outward to a nice step
	span := math.Max(hi-lo, math.Max(math.Abs(hi)*spanRatio, spanFloor))
	step := NiceStep(span / targetSteps)
	yMin := math.Floor(lo/step) * step
	yMax := math.Ceil(hi/step) * step

	n := int(math.Round((yMax - yMin) / step))
	ticks := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		ticks = append(ticks, yMin+float64(i)*step)
	}
	return schema.Scale{Min: yMin, Max: yMax, Ticks: ticks}
}

// NiceStep rounds raw up to 1, 2 or 5 times a power of ten, or ten times that
// power when raw exceeds five. Non-positive input yields 1.
func NiceStep(raw float64) float64 {
	if raw <= 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 1
	}
	p := math.Pow(10, math.Floor(math.Log10(raw)))
	n := raw / p
	switch {
	case n <= 1:
		return p
	case n <= 2:
		return 2 * p
	case n <= 5:
		return 5 * p
	default:
		return 10 * p
	}
}
