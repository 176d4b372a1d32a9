// Package forecast projects future monthly revenue from income history using
// an ensemble of trend regression, weighted moving average and exponential
// smoothing, with an optional seasonal adjustment.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/ledgerpulse/insight/internal/model"
	"github.com/ledgerpulse/insight/internal/timeseries"
)

// Minimum months of history before a forecast is attempted.
const minHistoryMonths = 3

// Ensemble weights. The regression weight is scaled by its own r² before
// normalization, so a poor fit contributes less.
const (
	regressionWeight = 0.4
	wmaWeight        = 0.35
	smoothingWeight  = 0.25
)

// Holt exponential smoothing parameters.
const (
	smoothingAlpha = 0.3
	smoothingBeta  = 0.1
)

// Trend labels.
const (
	TrendGrowing   = "growing"
	TrendDeclining = "declining"
	TrendStable    = "stable"
	TrendVolatile  = "volatile"
)

// Thresholds for trend classification.
const (
	volatileCV     = 0.5
	trendSlopeMin  = 0.03
	trendFitMin    = 0.3
	confidenceMin  = 0.3
	confidenceStep = 0.08
)

// Point is one forecast month.
type Point struct {
	Period     string  `json:"period"`
	Predicted  float64 `json:"predicted"`
	LowerBound float64 `json:"lowerBound"`
	UpperBound float64 `json:"upperBound"`
	Confidence float64 `json:"confidence"`
}

// Metrics summarizes the historical series behind the forecast.
type Metrics struct {
	TotalRevenue          float64 `json:"totalRevenue"`
	AverageMonthlyRevenue float64 `json:"averageMonthlyRevenue"`
	Volatility            float64 `json:"volatility"`
	GrowthRatePercent     float64 `json:"growthRatePercent"`
	RSquared              float64 `json:"rSquared"`
	BestMonth             string  `json:"bestMonth,omitempty"`
	WorstMonth            string  `json:"worstMonth,omitempty"`
}

// Result is the full revenue forecast bundle.
type Result struct {
	Historical       []timeseries.Bucket `json:"historical"`
	Forecast         []Point             `json:"forecast"`
	Trend            string              `json:"trend"`
	Metrics          Metrics             `json:"metrics"`
	Seasonal         bool                `json:"seasonal"`
	Summary          string              `json:"summary"`
	InsufficientData bool                `json:"insufficientData"`
}

// GenerateRevenueForecast projects horizonMonths of income. With fewer than
// three months of history it returns a well-formed insufficient-data result
// with an empty forecast; it never fails.
func GenerateRevenueForecast(income []model.IncomeRecord, horizonMonths int) Result {
	if horizonMonths <= 0 {
		horizonMonths = 6
	}

	entries := make([]timeseries.Entry, 0, len(income))
	for _, r := range income {
		entries = append(entries, timeseries.Entry{Date: r.Date.Time, Amount: model.SafeAmount(r.Amount)})
	}
	months := timeseries.GroupByPeriod(entries, timeseries.GranularityMonth)
	values := timeseries.Totals(months)

	metrics := Metrics{
		TotalRevenue:          sum(values),
		AverageMonthlyRevenue: timeseries.Mean(values),
		Volatility:            timeseries.CoefficientOfVariation(values),
	}
	best, worst := extremeMonths(months)
	metrics.BestMonth = best
	metrics.WorstMonth = worst

	if len(months) < minHistoryMonths {
		return Result{
			Historical:       months,
			Forecast:         []Point{},
			Trend:            TrendStable,
			Metrics:          metrics,
			Summary:          fmt.Sprintf("Insufficient data for a forecast: %d month(s) of income history, need at least %d.", len(months), minHistoryMonths),
			InsufficientData: true,
		}
	}

	trend := timeseries.LinearRegression(values)
	metrics.RSquared = trend.RSquared
	mean := metrics.AverageMonthlyRevenue
	if mean > 0 {
		metrics.GrowthRatePercent = trend.Slope / mean * 100
	}

	wmaWindow := len(values) / 2
	if wmaWindow > 6 {
		wmaWindow = 6
	}
	if wmaWindow < 1 {
		wmaWindow = 1
	}
	wma := timeseries.WeightedMovingAverage(values, wmaWindow)

	level, growth := holtSmooth(values)

	seasonal := timeseries.SeasonalIndices(months)
	volatility := metrics.Volatility

	// Normalize ensemble weights; regression influence scales with fit.
	wReg := regressionWeight * math.Max(0, trend.RSquared)
	wSum := wReg + wmaWeight + smoothingWeight
	wReg /= wSum
	wWMA := wmaWeight / wSum
	wExp := smoothingWeight / wSum

	lastStart := months[len(months)-1].Start
	n := len(values)

	points := make([]Point, 0, horizonMonths)
	for step := 0; step < horizonMonths; step++ {
		target := lastStart.AddDate(0, step+1, 0)

		regPred := trend.Predict(float64(n + step))
		expPred := level + growth*float64(step+1)
		predicted := wReg*regPred + wWMA*wma + wExp*expPred

		if seasonal != nil {
			predicted *= seasonal[int(target.Month())-1]
		}
		if predicted < 0 {
			predicted = 0
		}

		confidence := 1 - confidenceStep*float64(step) - 0.3*volatility
		if confidence < confidenceMin {
			confidence = confidenceMin
		}
		margin := predicted * (1 - confidence) * (1 + volatility)

		lower := predicted - margin
		if lower < 0 {
			lower = 0
		}
		points = append(points, Point{
			Period:     timeseries.MonthLabel(target),
			Predicted:  round2(predicted),
			LowerBound: round2(lower),
			UpperBound: round2(predicted + margin),
			Confidence: round2(confidence),
		})
	}

	label := classifyTrend(trend, mean, volatility)
	return Result{
		Historical: months,
		Forecast:   points,
		Trend:      label,
		Metrics:    metrics,
		Seasonal:   seasonal != nil,
		Summary: fmt.Sprintf("Revenue is %s: averaging $%.2f/month over %d months, next month projected at $%.2f.",
			label, mean, len(months), points[0].Predicted),
	}
}

// holtSmooth runs Holt's linear exponential smoothing and returns the final
// level and trend components.
func holtSmooth(values []float64) (level, growth float64) {
	level = values[0]
	if len(values) > 1 {
		growth = values[1] - values[0]
	}
	for i := 1; i < len(values); i++ {
		prevLevel := level
		level = smoothingAlpha*values[i] + (1-smoothingAlpha)*(level+growth)
		growth = smoothingBeta*(level-prevLevel) + (1-smoothingBeta)*growth
	}
	return level, growth
}

func classifyTrend(trend timeseries.Trend, mean, volatility float64) string {
	if volatility > volatileCV {
		return TrendVolatile
	}
	if mean <= 0 {
		return TrendStable
	}
	normalized := trend.Slope / mean
	if math.Abs(normalized) > trendSlopeMin && trend.RSquared > trendFitMin {
		if normalized > 0 {
			return TrendGrowing
		}
		return TrendDeclining
	}
	return TrendStable
}

// extremeMonths returns the best and worst calendar months by historical
// average, as month names.
func extremeMonths(months []timeseries.Bucket) (best, worst string) {
	var sums [12]float64
	var counts [12]int
	for _, b := range months {
		m := int(b.Start.Month()) - 1
		sums[m] += b.Total
		counts[m]++
	}

	bestIdx, worstIdx := -1, -1
	var bestAvg, worstAvg float64
	for m := 0; m < 12; m++ {
		if counts[m] == 0 {
			continue
		}
		avg := sums[m] / float64(counts[m])
		if bestIdx == -1 || avg > bestAvg {
			bestIdx, bestAvg = m, avg
		}
		if worstIdx == -1 || avg < worstAvg {
			worstIdx, worstAvg = m, avg
		}
	}
	if bestIdx == -1 {
		return "", ""
	}
	return time.Month(bestIdx + 1).String(), time.Month(worstIdx + 1).String()
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
