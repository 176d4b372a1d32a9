package expense

import (
	"math"
	"sort"

	"github.com/ledgerpulse/insight/internal/model"
	"github.com/ledgerpulse/insight/internal/timeseries"
)

// Month-over-month thresholds for category trend labels.
const (
	trendIncreasePercent = 15
	trendDecreasePercent = -15
)

// Category trend labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// CategoryBreakdown is one category's share of total spend with its
// month-over-month movement.
type CategoryBreakdown struct {
	Category      string  `json:"category"`
	Inferred      bool    `json:"inferred"`
	Total         float64 `json:"total"`
	SharePercent  float64 `json:"sharePercent"`
	Transactions  int     `json:"transactions"`
	Trend         string  `json:"trend"`
	ChangePercent float64 `json:"changePercent"`
}

// AnalyzeSpendingCategories classifies every spending record and computes
// per-category totals, spend share and month-over-month trend. Categories are
// returned sorted by total descending.
func AnalyzeSpendingCategories(spending []model.SpendingRecord) []CategoryBreakdown {
	type categoryAgg struct {
		classification Classification
		total          float64
		count          int
		entries        []timeseries.Entry
	}

	byCategory := make(map[Category]*categoryAgg)
	var totalSpend float64
	for _, r := range spending {
		if !r.Date.Valid() {
			continue
		}
		amount := model.SafeAmount(r.Amount)
		c := Classify(r.Reason)
		agg, ok := byCategory[c.Category]
		if !ok {
			agg = &categoryAgg{classification: c}
			byCategory[c.Category] = agg
		}
		agg.total += amount
		agg.count++
		agg.entries = append(agg.entries, timeseries.Entry{Date: r.Date.Time, Amount: amount})
		totalSpend += amount
	}

	breakdowns := make([]CategoryBreakdown, 0, len(byCategory))
	for category, agg := range byCategory {
		share := 0.0
		if totalSpend > 0 {
			share = agg.total / totalSpend * 100
		}
		trend, change := monthOverMonth(agg.entries)
		breakdowns = append(breakdowns, CategoryBreakdown{
			Category:      string(category),
			Inferred:      agg.classification.Inferred,
			Total:         round2(agg.total),
			SharePercent:  round2(share),
			Transactions:  agg.count,
			Trend:         trend,
			ChangePercent: round2(change),
		})
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		if breakdowns[i].Total != breakdowns[j].Total {
			return breakdowns[i].Total > breakdowns[j].Total
		}
		return breakdowns[i].Category < breakdowns[j].Category
	})
	return breakdowns
}

// monthOverMonth compares the latest month's category total against the
// previous month's.
func monthOverMonth(entries []timeseries.Entry) (string, float64) {
	months := timeseries.GroupByPeriod(entries, timeseries.GranularityMonth)
	if len(months) < 2 {
		return TrendStable, 0
	}
	previous := months[len(months)-2].Total
	latest := months[len(months)-1].Total
	if previous == 0 {
		if latest > 0 {
			return TrendIncreasing, 100
		}
		return TrendStable, 0
	}
	change := (latest - previous) / previous * 100
	switch {
	case change > trendIncreasePercent:
		return TrendIncreasing, change
	case change < trendDecreasePercent:
		return TrendDecreasing, change
	default:
		return TrendStable, change
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
