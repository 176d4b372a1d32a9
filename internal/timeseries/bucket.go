// Package timeseries provides the aggregation and statistics primitives shared
// by every analytics component: period bucketing, ordinary least squares,
// moving averages, z-scores and seasonal index extraction. All functions are
// pure and operate on finite in-memory slices.
package timeseries

import (
	"sort"
	"time"
)

// Granularity selects the bucketing period.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Entry is a dated amount. Callers map their record types onto entries before
// bucketing.
type Entry struct {
	Date   time.Time
	Amount float64
}

// Bucket is one aggregation period. Period is a sortable label ("2006-01-02"
// for days, the Monday date for weeks, "2006-01" for months). Amounts holds
// the raw per-record values that landed in the bucket.
type Bucket struct {
	Period  string    `json:"period"`
	Start   time.Time `json:"start"`
	Total   float64   `json:"total"`
	Count   int       `json:"count"`
	Amounts []float64 `json:"-"`
}

// GroupByPeriod buckets entries by the given granularity. Entries with a zero
// date are skipped. Once at least two distinct periods exist, interior gap
// periods are synthesized with total 0 so trend math sees a regular time axis.
// Buckets are returned in ascending period order.
func GroupByPeriod(entries []Entry, g Granularity) []Bucket {
	byPeriod := make(map[string]*Bucket)

	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		start := periodStart(e.Date, g)
		key := periodLabel(start, g)
		b, ok := byPeriod[key]
		if !ok {
			b = &Bucket{Period: key, Start: start}
			byPeriod[key] = b
		}
		amt := safe(e.Amount)
		b.Total += amt
		b.Count++
		b.Amounts = append(b.Amounts, amt)
	}

	if len(byPeriod) == 0 {
		return nil
	}

	buckets := make([]Bucket, 0, len(byPeriod))
	for _, b := range byPeriod {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Start.Before(buckets[j].Start) })

	if len(buckets) < 2 {
		return buckets
	}
	return fillGaps(buckets, g)
}

// fillGaps inserts zero-valued buckets for interior periods with no entries.
func fillGaps(buckets []Bucket, g Granularity) []Bucket {
	filled := make([]Bucket, 0, len(buckets))
	filled = append(filled, buckets[0])

	for i := 1; i < len(buckets); i++ {
		next := nextPeriod(filled[len(filled)-1].Start, g)
		for next.Before(buckets[i].Start) {
			filled = append(filled, Bucket{Period: periodLabel(next, g), Start: next})
			next = nextPeriod(next, g)
		}
		filled = append(filled, buckets[i])
	}
	return filled
}

// Totals extracts the total series from buckets, in order.
func Totals(buckets []Bucket) []float64 {
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Total
	}
	return out
}

func periodStart(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	switch g {
	case GranularityDay:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	case GranularityWeek:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// Weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default: // month
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func nextPeriod(start time.Time, g Granularity) time.Time {
	switch g {
	case GranularityDay:
		return start.AddDate(0, 0, 1)
	case GranularityWeek:
		return start.AddDate(0, 0, 7)
	default:
		return start.AddDate(0, 1, 0)
	}
}

func periodLabel(start time.Time, g Granularity) string {
	if g == GranularityMonth {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}

// MonthLabel formats a time as the "YYYY-MM" period label used by monthly
// buckets and forecast points.
func MonthLabel(t time.Time) string {
	return t.UTC().Format("2006-01")
}
