package nlq

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ledgerpulse/insight/internal/clients"
	"github.com/ledgerpulse/insight/internal/model"
)

const defaultAggField = "amount"

// ExecuteLocalQuery interprets a parsed query against the dataset. It never
// returns an error; empty or impossible queries come back with an explanatory
// summary and an empty result list.
func ExecuteLocalQuery(q *ParsedQuery, data Dataset, now time.Time) QueryResult {
	if q.Intent == "client_inactivity" {
		return processClientInactivityQuery(q, data, now)
	}

	rows := collect(q.Collection, data, q.TimeRange, now)
	rows = applyFilters(rows, q.Filters)
	applySort(rows, q.Sort)
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	result := QueryResult{Query: q, Results: rows, Visualization: vizFor(q)}
	if q.Aggregation != "" {
		result.Summary = aggregate(rows, q.Aggregation, q.AggField)
		return result
	}
	switch len(rows) {
	case 0:
		result.Summary = "No matching records."
	case 1:
		result.Summary = "1 matching record."
	default:
		result.Summary = fmt.Sprintf("%d matching records.", len(rows))
	}
	return result
}

// processClientInactivityQuery is a join the generic pipeline cannot express:
// it cross-references clients against income records and keeps the ones whose
// inactivity exceeds the threshold. Clients with no transactions always
// qualify.
func processClientInactivityQuery(q *ParsedQuery, data Dataset, now time.Time) QueryResult {
	threshold := float64(defaultInactivityDays)
	for _, f := range q.Filters {
		if f.Field == "daysSinceLastTransaction" {
			if v, ok := toFloat(f.Value); ok {
				threshold = v
			}
		}
	}

	profiles := clients.AnalyzeClients(data.Income, data.Clients, now)
	var matched []clients.Profile
	for _, p := range profiles {
		if float64(p.DaysSinceLastTransaction) > threshold {
			matched = append(matched, p)
		}
	}

	rows := make([]map[string]any, 0, len(matched))
	for _, p := range matched {
		rows = append(rows, mapify(p))
	}
	summary := fmt.Sprintf("%d of %d clients have no transactions in the last %.0f days.",
		len(matched), len(profiles), threshold)
	if len(matched) == 0 {
		summary = fmt.Sprintf("All %d clients have transacted within the last %.0f days.", len(profiles), threshold)
	}
	return QueryResult{Query: q, Results: rows, Summary: summary, Visualization: VizTable}
}

// collect materializes the target collection as generic rows, applying the
// time range on each record's primary date first. The clients collection is
// served as analyzed profiles so revenue fields are queryable.
func collect(collection string, data Dataset, tr *TimeRange, now time.Time) []map[string]any {
	var rows []map[string]any
	switch collection {
	case CollectionIncome:
		for _, r := range data.Income {
			if inRange(r.Date, tr) {
				rows = append(rows, mapify(r))
			}
		}
	case CollectionSpending:
		for _, r := range data.Spending {
			if inRange(r.Date, tr) {
				rows = append(rows, mapify(r))
			}
		}
	case CollectionLoans:
		for _, r := range data.Loans {
			if inRange(r.Date, tr) {
				rows = append(rows, mapify(r))
			}
		}
	case CollectionClients:
		for _, p := range clients.AnalyzeClients(data.Income, data.Clients, now) {
			rows = append(rows, mapify(p))
		}
	case CollectionTodos:
		for _, r := range data.Todos {
			if inRange(r.DueDate, tr) {
				rows = append(rows, mapify(r))
			}
		}
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows
}

func inRange(d model.Date, tr *TimeRange) bool {
	if tr == nil {
		return true
	}
	if !d.Valid() {
		return false
	}
	t := d.Time
	return !t.Before(tr.Start) && t.Before(tr.End)
}

// mapify round-trips a record through JSON so filters see the same field
// names the API exposes.
func mapify(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}
	return m
}

func applyFilters(rows []map[string]any, filters []Filter) []map[string]any {
	if len(filters) == 0 {
		return rows
	}
	out := rows[:0:0]
	for _, row := range rows {
		keep := true
		for _, f := range filters {
			if !matchFilter(row, f) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	if out == nil {
		out = []map[string]any{}
	}
	return out
}

func matchFilter(row map[string]any, f Filter) bool {
	value, present := lookupField(row, f.Field)
	if f.Op == OpExists {
		return present && value != nil
	}
	if !present {
		return false
	}

	if want, ok := f.Value.(time.Time); ok {
		have, ok := toTime(value)
		if !ok {
			return false
		}
		switch f.Op {
		case OpLt, OpLte:
			return have.Before(want)
		case OpGt, OpGte:
			return have.After(want)
		case OpEq:
			return have.Equal(want)
		case OpNot:
			return !have.Equal(want)
		}
		return false
	}

	switch f.Op {
	case OpEq:
		return looseEqual(value, f.Value)
	case OpNot:
		return !looseEqual(value, f.Value)
	case OpContains:
		have, ok1 := value.(string)
		want, ok2 := f.Value.(string)
		return ok1 && ok2 && strings.Contains(strings.ToLower(have), strings.ToLower(want))
	case OpGt, OpGte, OpLt, OpLte:
		have, ok1 := toFloat(value)
		want, ok2 := toFloat(f.Value)
		if !ok1 || !ok2 {
			return false
		}
		switch f.Op {
		case OpGt:
			return have > want
		case OpGte:
			return have >= want
		case OpLt:
			return have < want
		default:
			return have <= want
		}
	}
	return false
}

// lookupField resolves a dot path like "client.name" inside nested maps.
func lookupField(row map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = row
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func applySort(rows []map[string]any, s *Sort) {
	if s == nil {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := lookupField(rows[i], s.Field)
		b, _ := lookupField(rows[j], s.Field)
		less := lessValue(a, b)
		if s.Descending {
			return lessValue(b, a)
		}
		return less
	})
}

func lessValue(a, b any) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa < fb
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func aggregate(rows []map[string]any, agg, field string) string {
	if agg == AggCount {
		return fmt.Sprintf("Count: %d", len(rows))
	}
	if field == "" {
		field = defaultAggField
	}
	var values []float64
	for _, row := range rows {
		if raw, ok := lookupField(row, field); ok {
			if v, ok := toFloat(raw); ok {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return "No numeric values to aggregate."
	}

	var total float64
	minV, maxV := values[0], values[0]
	for _, v := range values {
		total += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	switch agg {
	case AggSum:
		return fmt.Sprintf("Total: $%.2f", total)
	case AggAvg:
		return fmt.Sprintf("Average: $%.2f", total/float64(len(values)))
	case AggMin:
		return fmt.Sprintf("Smallest: $%.2f", minV)
	case AggMax:
		return fmt.Sprintf("Largest: $%.2f", maxV)
	}
	return fmt.Sprintf("Count: %d", len(rows))
}

func vizFor(q *ParsedQuery) string {
	if q.Aggregation != "" {
		return VizNumber
	}
	if q.Sort != nil && q.Limit > 0 {
		return VizBar
	}
	return VizTable
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
}

func looseEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.EqualFold(sa, sb)
		}
	}
	return a == b
}
