package timeseries

import "math"

// Trend is an ordinary-least-squares fit of value against index 0..n-1.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"rSquared"`
}

// LinearRegression fits y = slope*i + intercept over the series index.
// Fewer than two points returns the zero trend.
func LinearRegression(values []float64) Trend {
	n := float64(len(values))
	if n < 2 {
		return Trend{}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return Trend{}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i, y := range values {
		predicted := slope*float64(i) + intercept
		ssRes += (y - predicted) * (y - predicted)
		ssTot += (y - meanY) * (y - meanY)
	}
	rSquared := 1.0
	if ssTot != 0 {
		rSquared = 1 - ssRes/ssTot
	}
	return Trend{Slope: slope, Intercept: intercept, RSquared: rSquared}
}

// Predict evaluates the fitted line at index x.
func (t Trend) Predict(x float64) float64 {
	return t.Slope*x + t.Intercept
}

// MovingAverage returns the mean of the trailing window at the end of the
// series. Windows larger than the series shrink to fit.
func MovingAverage(values []float64, window int) float64 {
	if len(values) == 0 || window <= 0 {
		return 0
	}
	if window > len(values) {
		window = len(values)
	}
	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// WeightedMovingAverage is like MovingAverage but weights recent points
// linearly higher (weight 1 for the oldest in-window point up to `window` for
// the newest).
func WeightedMovingAverage(values []float64, window int) float64 {
	if len(values) == 0 || window <= 0 {
		return 0
	}
	if window > len(values) {
		window = len(values)
	}
	tail := values[len(values)-window:]
	var sum, weightSum float64
	for i, v := range tail {
		w := float64(i + 1)
		sum += v * w
		weightSum += w
	}
	return sum / weightSum
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// ZScore returns how many standard deviations value sits from the population
// mean. Populations with fewer than two points or zero variance return 0.
func ZScore(value float64, population []float64) float64 {
	sd := StdDev(population)
	if sd == 0 {
		return 0
	}
	return (value - Mean(population)) / sd
}

// CoefficientOfVariation returns stddev/mean, the unitless volatility measure
// used for forecast confidence. A zero mean returns 0.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / mean
}

func safe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
