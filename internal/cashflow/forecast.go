// Package cashflow projects net cash position from income and spending
// history, detects recurring transactions, and computes burn rate and runway.
package cashflow

import (
	"fmt"
	"math"
	"time"

	"github.com/ledgerpulse/insight/internal/model"
	"github.com/ledgerpulse/insight/internal/timeseries"
)

// Minimum months of combined history before a forecast is attempted.
const minHistoryMonths = 2

// Per-series forecast blend: OLS trend vs recent three-month average.
const (
	trendBlendWeight  = 0.4
	recentBlendWeight = 0.6
	recentWindow      = 3
)

// Warning types.
const (
	WarningBurnRate        = "burn_rate"
	WarningNegativeBalance = "negative_balance"
	WarningSpendingOutpace = "spending_outpacing_income"
	WarningSingleSource    = "single_revenue_source"
)

// Warning severities.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// MonthFlow is one historical month of net cash flow.
type MonthFlow struct {
	Period   string  `json:"period"`
	Income   float64 `json:"income"`
	Spending float64 `json:"spending"`
	Net      float64 `json:"net"`
}

// ForecastPoint is one projected month with the running balance.
type ForecastPoint struct {
	Period   string  `json:"period"`
	Income   float64 `json:"income"`
	Spending float64 `json:"spending"`
	Net      float64 `json:"net"`
	Balance  float64 `json:"balance"`
}

// Warning is a non-fatal cash-flow concern. Warnings are reported, never
// raised.
type Warning struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Result is the full cash-flow bundle.
type Result struct {
	History          []MonthFlow            `json:"history"`
	Forecast         []ForecastPoint        `json:"forecast"`
	Recurring        []RecurringTransaction `json:"recurring"`
	BurnRate         float64                `json:"burnRate"`
	RunwayMonths     *float64               `json:"runwayMonths,omitempty"`
	Warnings         []Warning              `json:"warnings"`
	Summary          string                 `json:"summary"`
	InsufficientData bool                   `json:"insufficientData"`
}

// GenerateCashFlowForecast projects horizonMonths of net cash flow starting
// from startingBalance. With fewer than two months of history it returns a
// well-formed insufficient-data result.
func GenerateCashFlowForecast(income []model.IncomeRecord, spending []model.SpendingRecord, horizonMonths int, startingBalance float64) Result {
	if horizonMonths <= 0 {
		horizonMonths = 6
	}

	incomeEntries := make([]timeseries.Entry, 0, len(income))
	for _, r := range income {
		incomeEntries = append(incomeEntries, timeseries.Entry{Date: r.Date.Time, Amount: model.SafeAmount(r.Amount)})
	}
	spendingEntries := make([]timeseries.Entry, 0, len(spending))
	for _, r := range spending {
		spendingEntries = append(spendingEntries, timeseries.Entry{Date: r.Date.Time, Amount: model.SafeAmount(r.Amount)})
	}

	incomeMonths := timeseries.GroupByPeriod(incomeEntries, timeseries.GranularityMonth)
	spendingMonths := timeseries.GroupByPeriod(spendingEntries, timeseries.GranularityMonth)
	history, lastStart := alignMonths(incomeMonths, spendingMonths)

	recurring := DetectRecurring(income, spending)

	if len(history) < minHistoryMonths {
		return Result{
			History:          history,
			Forecast:         []ForecastPoint{},
			Recurring:        recurring,
			Summary:          fmt.Sprintf("Insufficient data for a cash flow forecast: %d month(s) of history, need at least %d.", len(history), minHistoryMonths),
			InsufficientData: true,
		}
	}

	incomeSeries := make([]float64, len(history))
	spendingSeries := make([]float64, len(history))
	for i, m := range history {
		incomeSeries[i] = m.Income
		spendingSeries[i] = m.Spending
	}

	incomeTrend := timeseries.LinearRegression(incomeSeries)
	spendingTrend := timeseries.LinearRegression(spendingSeries)
	incomeSeasonal := timeseries.SeasonalIndices(rebucket(history, lastStart, func(m MonthFlow) float64 { return m.Income }))
	spendingSeasonal := timeseries.SeasonalIndices(rebucket(history, lastStart, func(m MonthFlow) float64 { return m.Spending }))

	n := len(history)
	balance := startingBalance
	forecast := make([]ForecastPoint, 0, horizonMonths)
	for step := 0; step < horizonMonths; step++ {
		target := lastStart.AddDate(0, step+1, 0)

		inc := blendForecast(incomeTrend, incomeSeries, n+step)
		spend := blendForecast(spendingTrend, spendingSeries, n+step)
		if incomeSeasonal != nil {
			inc *= incomeSeasonal[int(target.Month())-1]
		}
		if spendingSeasonal != nil {
			spend *= spendingSeasonal[int(target.Month())-1]
		}
		if inc < 0 {
			inc = 0
		}
		if spend < 0 {
			spend = 0
		}

		net := inc - spend
		balance += net
		forecast = append(forecast, ForecastPoint{
			Period:   timeseries.MonthLabel(target),
			Income:   round2(inc),
			Spending: round2(spend),
			Net:      round2(net),
			Balance:  round2(balance),
		})
	}

	avgIncome := timeseries.Mean(incomeSeries)
	avgSpending := timeseries.Mean(spendingSeries)
	burnRate := math.Max(0, avgSpending-avgIncome)

	var runway *float64
	if burnRate > 0 && startingBalance > 0 {
		months := round2(startingBalance / burnRate)
		runway = &months
	}

	warnings := collectWarnings(forecast, incomeTrend, spendingTrend, recurring, burnRate, runway)

	summary := fmt.Sprintf("Average monthly net cash flow is $%.2f over %d months.", avgIncome-avgSpending, len(history))
	if burnRate > 0 {
		summary = fmt.Sprintf("Burning $%.2f/month on average over %d months of history.", burnRate, len(history))
	}

	return Result{
		History:      history,
		Forecast:     forecast,
		Recurring:    recurring,
		BurnRate:     round2(burnRate),
		RunwayMonths: runway,
		Warnings:     warnings,
		Summary:      summary,
	}
}

// blendForecast combines the OLS trend prediction with the recent average.
func blendForecast(trend timeseries.Trend, series []float64, index int) float64 {
	recent := timeseries.MovingAverage(series, recentWindow)
	return trendBlendWeight*trend.Predict(float64(index)) + recentBlendWeight*recent
}

// alignMonths merges the two bucket sets onto one contiguous month axis and
// returns the start of the latest month.
func alignMonths(incomeMonths, spendingMonths []timeseries.Bucket) ([]MonthFlow, time.Time) {
	totals := make(map[string]*MonthFlow)
	starts := make(map[string]time.Time)
	for _, b := range incomeMonths {
		totals[b.Period] = &MonthFlow{Period: b.Period, Income: b.Total}
		starts[b.Period] = b.Start
	}
	for _, b := range spendingMonths {
		m, ok := totals[b.Period]
		if !ok {
			m = &MonthFlow{Period: b.Period}
			totals[b.Period] = m
			starts[b.Period] = b.Start
		}
		m.Spending = b.Total
	}
	if len(totals) == 0 {
		return nil, time.Time{}
	}

	var first, last time.Time
	for _, s := range starts {
		if first.IsZero() || s.Before(first) {
			first = s
		}
		if s.After(last) {
			last = s
		}
	}

	var history []MonthFlow
	for cur := first; !cur.After(last); cur = cur.AddDate(0, 1, 0) {
		period := timeseries.MonthLabel(cur)
		m := MonthFlow{Period: period}
		if found, ok := totals[period]; ok {
			m = *found
		}
		m.Net = m.Income - m.Spending
		history = append(history, m)
	}
	return history, last
}

// rebucket converts history back into buckets for seasonal extraction of a
// single series.
func rebucket(history []MonthFlow, lastStart time.Time, value func(MonthFlow) float64) []timeseries.Bucket {
	buckets := make([]timeseries.Bucket, len(history))
	firstStart := lastStart.AddDate(0, -(len(history) - 1), 0)
	for i, m := range history {
		buckets[i] = timeseries.Bucket{
			Period: m.Period,
			Start:  firstStart.AddDate(0, i, 0),
			Total:  value(m),
		}
	}
	return buckets
}

func collectWarnings(forecast []ForecastPoint, incomeTrend, spendingTrend timeseries.Trend, recurring []RecurringTransaction, burnRate float64, runway *float64) []Warning {
	var warnings []Warning

	if burnRate > 0 {
		severity := SeverityWarning
		msg := fmt.Sprintf("Spending exceeds income by $%.2f/month on average.", burnRate)
		if runway != nil && *runway < 3 {
			severity = SeverityCritical
			msg = fmt.Sprintf("Spending exceeds income by $%.2f/month; current balance lasts %.1f more months.", burnRate, *runway)
		}
		warnings = append(warnings, Warning{Type: WarningBurnRate, Severity: severity, Message: msg})
	}

	for _, p := range forecast {
		if p.Balance < 0 {
			warnings = append(warnings, Warning{
				Type:     WarningNegativeBalance,
				Severity: SeverityCritical,
				Message:  fmt.Sprintf("Projected balance goes negative in %s ($%.2f).", p.Period, p.Balance),
			})
			break
		}
	}

	if spendingTrend.Slope > incomeTrend.Slope {
		warnings = append(warnings, Warning{
			Type:     WarningSpendingOutpace,
			Severity: SeverityWarning,
			Message:  "Spending is growing faster than income.",
		})
	}

	highConfidenceIncome := 0
	var soleSource string
	for _, r := range recurring {
		if r.Kind == KindIncome && r.Confidence >= 0.5 {
			highConfidenceIncome++
			soleSource = r.Description
		}
	}
	if highConfidenceIncome == 1 {
		warnings = append(warnings, Warning{
			Type:     WarningSingleSource,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Revenue is concentrated in a single recurring source (%s).", soleSource),
		})
	}

	return warnings
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
