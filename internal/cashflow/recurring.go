package cashflow

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ledgerpulse/insight/internal/model"
	"github.com/ledgerpulse/insight/internal/timeseries"
)

// Frequency labels for detected recurring transactions.
const (
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
)

// Transaction kinds.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// minRecurringConfidence gates which detected patterns are reported.
const minRecurringConfidence = 0.2

// fullWeightOccurrences is the occurrence count at which a pattern reaches
// full confidence weight.
const fullWeightOccurrences = 5

// RecurringTransaction is a detected repeating income source or expense.
type RecurringTransaction struct {
	Description   string    `json:"description"`
	Kind          string    `json:"kind"`
	Frequency     string    `json:"frequency"`
	AverageAmount float64   `json:"averageAmount"`
	Occurrences   int       `json:"occurrences"`
	Confidence    float64   `json:"confidence"`
	LastSeen      time.Time `json:"lastSeen"`
	NextExpected  time.Time `json:"nextExpected"`
}

type dated struct {
	date   time.Time
	amount float64
}

// DetectRecurring finds repeating patterns in both record streams, grouped by
// normalized source/reason. A pattern needs at least two occurrences, a
// classifiable average gap, and a confidence above the reporting gate.
// Results are sorted by confidence descending, ties by description.
func DetectRecurring(income []model.IncomeRecord, spending []model.SpendingRecord) []RecurringTransaction {
	groups := make(map[string][]dated)
	kinds := make(map[string]string)
	labels := make(map[string]string)

	add := func(kind, label string, date model.Date, amount float64) {
		if !date.Valid() {
			return
		}
		key := kind + "|" + normalizeDescription(label)
		groups[key] = append(groups[key], dated{date: date.Time.UTC(), amount: model.SafeAmount(amount)})
		kinds[key] = kind
		if _, ok := labels[key]; !ok {
			labels[key] = strings.TrimSpace(label)
		}
	}
	for _, r := range income {
		add(KindIncome, r.Source, r.Date, r.Amount)
	}
	for _, r := range spending {
		add(KindExpense, r.Reason, r.Date, r.Amount)
	}

	var results []RecurringTransaction
	for key, events := range groups {
		if len(events) < 2 {
			continue
		}
		sort.Slice(events, func(i, j int) bool { return events[i].date.Before(events[j].date) })

		var gaps []float64
		for i := 1; i < len(events); i++ {
			days := events[i].date.Sub(events[i-1].date).Hours() / 24
			if days > 0 {
				gaps = append(gaps, days)
			}
		}
		if len(gaps) == 0 {
			continue
		}

		frequency, gapConsistency := classifyFrequency(gaps)
		if frequency == "" {
			continue
		}

		amounts := make([]float64, len(events))
		for i, e := range events {
			amounts[i] = e.amount
		}
		amountConsistency := 1 / (1 + timeseries.CoefficientOfVariation(amounts))

		occurrenceBoost := float64(len(events)) / fullWeightOccurrences
		if occurrenceBoost > 1 {
			occurrenceBoost = 1
		}
		confidence := amountConsistency * gapConsistency * (0.5 + 0.5*occurrenceBoost)
		if confidence <= minRecurringConfidence {
			continue
		}

		last := events[len(events)-1].date
		results = append(results, RecurringTransaction{
			Description:   labels[key],
			Kind:          kinds[key],
			Frequency:     frequency,
			AverageAmount: math.Round(timeseries.Mean(amounts)*100) / 100,
			Occurrences:   len(events),
			Confidence:    math.Round(confidence*100) / 100,
			LastSeen:      last,
			NextExpected:  nextExpected(last, frequency),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].Description < results[j].Description
	})
	return results
}

func normalizeDescription(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// classifyFrequency maps the average gap between occurrences onto a frequency
// band and returns the share of gaps that fall inside the band.
func classifyFrequency(gaps []float64) (string, float64) {
	avg := timeseries.Mean(gaps)

	bands := []struct {
		frequency string
		min, max  float64
	}{
		{FrequencyWeekly, 4, 10},
		{FrequencyMonthly, 20, 40},
		{FrequencyQuarterly, 75, 105},
	}
	for _, band := range bands {
		if avg >= band.min && avg <= band.max {
			matched := 0
			for _, g := range gaps {
				if g >= band.min && g <= band.max {
					matched++
				}
			}
			return band.frequency, float64(matched) / float64(len(gaps))
		}
	}
	return "", 0
}

func nextExpected(last time.Time, frequency string) time.Time {
	switch frequency {
	case FrequencyWeekly:
		return last.AddDate(0, 0, 7)
	case FrequencyQuarterly:
		return last.AddDate(0, 3, 0)
	default:
		return last.AddDate(0, 1, 0)
	}
}
