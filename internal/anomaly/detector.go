// Package anomaly flags statistically unusual spending and income events and
// structural pattern shifts. Detection is stateless: identical input always
// produces the identical alert set, including alert IDs.
package anomaly

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/ledgerpulse/insight/internal/expense"
	"github.com/ledgerpulse/insight/internal/model"
	"github.com/ledgerpulse/insight/internal/timeseries"
)

// Severity tiers, in sort order.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// Alert types.
const (
	TypeSpendingSpike   = "spending_spike"
	TypeCategorySpike   = "category_spike"
	TypeIncomeDrop      = "income_drop"
	TypeFrequencyChange = "frequency_change"
	TypeGrowthImbalance = "growth_imbalance"
	TypeMarginSqueeze   = "margin_squeeze"
)

// Detection thresholds (percent deviations unless noted).
const (
	spikeTriggerPercent  = 30
	spikeHighPercent     = 60
	spikeCriticalPercent = 200

	categoryTriggerPercent = 50
	categoryHighPercent    = 100
	categoryMinDollars     = 100

	dropTriggerPercent  = -20
	dropHighPercent     = -40
	dropCriticalPercent = -60

	frequencyDropRatio    = 0.5
	frequencyMinPriorTxns = 3

	growthGapPoints    = 15
	marginDropPoints   = 10
	marginCriticalPct  = 5
	marginHighPct      = 15
	marginWindowMonths = 3

	trailingWindow     = 3
	minSpendingRecords = 3
	minMonths          = 2
)

// alertNamespace seeds deterministic alert IDs: the same type, period and
// metric always hash to the same UUID, so repeated runs on identical input
// produce identical alert sets.
var alertNamespace = uuid.MustParse("7f1c6b42-9d35-4a8e-b1f0-3c2a5d8e9b01")

// Alert is one detected anomaly with a human-readable recommendation.
type Alert struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Severity         string  `json:"severity"`
	Metric           string  `json:"metric"`
	CurrentValue     float64 `json:"currentValue"`
	ExpectedValue    float64 `json:"expectedValue"`
	DeviationPercent float64 `json:"deviationPercent"`
	Description      string  `json:"description"`
	Recommendation   string  `json:"recommendation"`
}

var severityRank = map[string]int{SeverityCritical: 0, SeverityHigh: 1, SeverityMedium: 2, SeverityLow: 3}

// Detect runs every detector over the record streams and returns the merged
// alert list sorted by severity, ties broken by absolute deviation.
func Detect(income []model.IncomeRecord, spending []model.SpendingRecord) []Alert {
	var alerts []Alert
	alerts = append(alerts, detectSpendingSpikes(spending)...)
	alerts = append(alerts, detectCategorySpikes(spending)...)
	alerts = append(alerts, detectIncomeDrops(income)...)
	alerts = append(alerts, detectStructuralShifts(income, spending)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := severityRank[alerts[i].Severity], severityRank[alerts[j].Severity]
		if ri != rj {
			return ri < rj
		}
		return math.Abs(alerts[i].DeviationPercent) > math.Abs(alerts[j].DeviationPercent)
	})
	return alerts
}

// detectSpendingSpikes compares the latest month's spending total against the
// trailing three-month average.
func detectSpendingSpikes(spending []model.SpendingRecord) []Alert {
	if len(spending) < minSpendingRecords {
		return nil
	}
	months := monthly(spendingEntries(spending))
	if len(months) < minMonths {
		return nil
	}

	latest := months[len(months)-1]
	baseline := timeseries.MovingAverage(timeseries.Totals(months[:len(months)-1]), trailingWindow)
	if baseline <= 0 {
		return nil
	}

	deviation := (latest.Total - baseline) / baseline * 100
	if deviation <= spikeTriggerPercent {
		return nil
	}
	severity := SeverityMedium
	if deviation > spikeCriticalPercent {
		severity = SeverityCritical
	} else if deviation > spikeHighPercent {
		severity = SeverityHigh
	}

	return []Alert{newAlert(TypeSpendingSpike, severity, latest.Period, "monthly_spending",
		latest.Total, baseline, deviation,
		fmt.Sprintf("Spending in %s was $%.2f, %.0f%% above the recent average of $%.2f.",
			latest.Period, latest.Total, deviation, baseline))}
}

// detectCategorySpikes checks each normalized spend category's latest month
// against its prior-months average.
func detectCategorySpikes(spending []model.SpendingRecord) []Alert {
	byCategory := make(map[string][]timeseries.Entry)
	for _, r := range spending {
		if !r.Date.Valid() {
			continue
		}
		category := expense.CategoryName(r.Reason)
		byCategory[category] = append(byCategory[category], timeseries.Entry{Date: r.Date.Time, Amount: model.SafeAmount(r.Amount)})
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var alerts []Alert
	for _, category := range categories {
		months := monthly(byCategory[category])
		if len(months) < minMonths {
			continue
		}
		latest := months[len(months)-1]
		baseline := timeseries.Mean(timeseries.Totals(months[:len(months)-1]))
		if baseline <= 0 {
			continue
		}
		deviation := (latest.Total - baseline) / baseline * 100
		if deviation <= categoryTriggerPercent || latest.Total-baseline <= categoryMinDollars {
			continue
		}
		severity := SeverityMedium
		if deviation > categoryHighPercent {
			severity = SeverityHigh
		}
		alerts = append(alerts, newAlert(TypeCategorySpike, severity, latest.Period, category,
			latest.Total, baseline, deviation,
			fmt.Sprintf("%s spending in %s was $%.2f, %.0f%% above its usual $%.2f.",
				category, latest.Period, latest.Total, deviation, baseline)))
	}
	return alerts
}

// detectIncomeDrops mirrors the spending-spike detector on the negative side,
// and additionally flags a collapse in transaction count.
func detectIncomeDrops(income []model.IncomeRecord) []Alert {
	months := monthly(incomeEntries(income))
	if len(months) < minMonths {
		return nil
	}

	var alerts []Alert
	latest := months[len(months)-1]
	baseline := timeseries.MovingAverage(timeseries.Totals(months[:len(months)-1]), trailingWindow)
	if baseline > 0 {
		deviation := (latest.Total - baseline) / baseline * 100
		if deviation < dropTriggerPercent {
			severity := SeverityMedium
			if deviation < dropCriticalPercent {
				severity = SeverityCritical
			} else if deviation < dropHighPercent {
				severity = SeverityHigh
			}
			alerts = append(alerts, newAlert(TypeIncomeDrop, severity, latest.Period, "monthly_income",
				latest.Total, baseline, deviation,
				fmt.Sprintf("Income in %s was $%.2f, %.0f%% below the recent average of $%.2f.",
					latest.Period, latest.Total, -deviation, baseline)))
		}
	}

	prior := months[len(months)-2]
	if prior.Count >= frequencyMinPriorTxns && float64(latest.Count) < frequencyDropRatio*float64(prior.Count) {
		deviation := (float64(latest.Count) - float64(prior.Count)) / float64(prior.Count) * 100
		alerts = append(alerts, newAlert(TypeFrequencyChange, SeverityHigh, latest.Period, "income_transaction_count",
			float64(latest.Count), float64(prior.Count), deviation,
			fmt.Sprintf("Income transactions fell from %d to %d in %s.", prior.Count, latest.Count, latest.Period)))
	}
	return alerts
}

// detectStructuralShifts looks for spending growth outpacing income growth
// and for profit-margin compression over a three-month window.
func detectStructuralShifts(income []model.IncomeRecord, spending []model.SpendingRecord) []Alert {
	incomeMonths := monthly(incomeEntries(income))
	spendingMonths := monthly(spendingEntries(spending))
	if len(incomeMonths) < minMonths || len(spendingMonths) < minMonths {
		return nil
	}

	var alerts []Alert
	period := incomeMonths[len(incomeMonths)-1].Period

	incomeGrowth, okInc := growthRate(incomeMonths)
	spendingGrowth, okSpend := growthRate(spendingMonths)
	if okInc && okSpend {
		gap := spendingGrowth - incomeGrowth
		if gap > growthGapPoints {
			alerts = append(alerts, newAlert(TypeGrowthImbalance, SeverityHigh, period, "growth_gap",
				spendingGrowth, incomeGrowth, gap,
				fmt.Sprintf("Spending grew %.0f%% month over month while income grew %.0f%%.", spendingGrowth, incomeGrowth)))
		}
	}

	if alert := detectMarginSqueeze(incomeMonths, spendingMonths); alert != nil {
		alerts = append(alerts, *alert)
	}
	return alerts
}

func detectMarginSqueeze(incomeMonths, spendingMonths []timeseries.Bucket) *Alert {
	margins, periods := marginSeries(incomeMonths, spendingMonths)
	if len(margins) < marginWindowMonths {
		return nil
	}
	current := margins[len(margins)-1]
	past := margins[len(margins)-marginWindowMonths]
	drop := past - current
	if drop <= marginDropPoints {
		return nil
	}

	severity := SeverityMedium
	if current < marginCriticalPct {
		severity = SeverityCritical
	} else if current < marginHighPct {
		severity = SeverityHigh
	}
	alert := newAlert(TypeMarginSqueeze, severity, periods[len(periods)-1], "profit_margin",
		current, past, -drop,
		fmt.Sprintf("Profit margin compressed from %.0f%% to %.0f%% over %d months.", past, current, marginWindowMonths))
	return &alert
}

// marginSeries computes per-month profit margin over the months where both
// series overlap and income is nonzero.
func marginSeries(incomeMonths, spendingMonths []timeseries.Bucket) ([]float64, []string) {
	spendByPeriod := make(map[string]float64, len(spendingMonths))
	for _, b := range spendingMonths {
		spendByPeriod[b.Period] = b.Total
	}
	var margins []float64
	var periods []string
	for _, b := range incomeMonths {
		if b.Total <= 0 {
			continue
		}
		spend, ok := spendByPeriod[b.Period]
		if !ok {
			continue
		}
		margins = append(margins, (b.Total-spend)/b.Total*100)
		periods = append(periods, b.Period)
	}
	return margins, periods
}

// growthRate returns the month-over-month growth of the latest two months.
func growthRate(months []timeseries.Bucket) (float64, bool) {
	prior := months[len(months)-2].Total
	if prior <= 0 {
		return 0, false
	}
	latest := months[len(months)-1].Total
	return (latest - prior) / prior * 100, true
}

func newAlert(alertType, severity, period, metric string, current, expected, deviation float64, description string) Alert {
	id := uuid.NewSHA1(alertNamespace, []byte(alertType+"|"+period+"|"+metric)).String()
	return Alert{
		ID:               id,
		Type:             alertType,
		Severity:         severity,
		Metric:           metric,
		CurrentValue:     round2(current),
		ExpectedValue:    round2(expected),
		DeviationPercent: round2(deviation),
		Description:      description,
		Recommendation:   recommendationFor(alertType, severity),
	}
}

func monthly(entries []timeseries.Entry) []timeseries.Bucket {
	return timeseries.GroupByPeriod(entries, timeseries.GranularityMonth)
}

func incomeEntries(income []model.IncomeRecord) []timeseries.Entry {
	entries := make([]timeseries.Entry, 0, len(income))
	for _, r := range income {
		entries = append(entries, timeseries.Entry{Date: r.Date.Time, Amount: model.SafeAmount(r.Amount)})
	}
	return entries
}

func spendingEntries(spending []model.SpendingRecord) []timeseries.Entry {
	entries := make([]timeseries.Entry, 0, len(spending))
	for _, r := range spending {
		entries = append(entries, timeseries.Entry{Date: r.Date.Time, Amount: model.SafeAmount(r.Amount)})
	}
	return entries
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
