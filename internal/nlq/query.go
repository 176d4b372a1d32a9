// Package nlq turns free-text questions into structured queries over the
// in-memory record collections and executes them locally. Parsing is a
// best-effort ordered pattern match; execution never fails, it answers with
// an explanatory summary instead.
package nlq

import (
	"time"

	"github.com/ledgerpulse/insight/internal/model"
)

// Collections a query can target.
const (
	CollectionIncome   = "income"
	CollectionSpending = "spending"
	CollectionLoans    = "loans"
	CollectionClients  = "clients"
	CollectionTodos    = "todos"
)

// Aggregations.
const (
	AggSum   = "sum"
	AggAvg   = "avg"
	AggCount = "count"
	AggMin   = "min"
	AggMax   = "max"
)

// Filter operators.
const (
	OpEq       = "eq"
	OpGt       = "gt"
	OpGte      = "gte"
	OpLt       = "lt"
	OpLte      = "lte"
	OpContains = "contains"
	OpNot      = "not"
	OpExists   = "exists"
)

// Visualization hints for the presentation layer.
const (
	VizTable  = "table"
	VizBar    = "bar"
	VizNumber = "number"
)

// Filter is one predicate over a dot-path field of a record.
type Filter struct {
	Field string `json:"field"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// Sort orders results by a field.
type Sort struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending"`
}

// TimeRange bounds records by date, inclusive of Start and exclusive of End.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParsedQuery is the structural reading of a natural-language question.
type ParsedQuery struct {
	Intent      string     `json:"intent"`
	Collection  string     `json:"collection"`
	Filters     []Filter   `json:"filters,omitempty"`
	Sort        *Sort      `json:"sort,omitempty"`
	Limit       int        `json:"limit,omitempty"`
	Aggregation string     `json:"aggregation,omitempty"`
	AggField    string     `json:"aggField,omitempty"`
	TimeRange   *TimeRange `json:"timeRange,omitempty"`
}

// QueryResult is what every query returns, matched or not.
type QueryResult struct {
	Query         *ParsedQuery     `json:"query,omitempty"`
	Results       []map[string]any `json:"results"`
	Summary       string           `json:"summary"`
	Visualization string           `json:"visualization"`
}

// Dataset is the snapshot of collections a query executes against.
type Dataset struct {
	Income   []model.IncomeRecord
	Spending []model.SpendingRecord
	Loans    []model.LoanRecord
	Clients  []model.ClientRecord
	Todos    []model.TodoRecord
}

// Run parses and executes text against the dataset in one call.
func Run(text string, data Dataset, now time.Time) QueryResult {
	parsed := ParseNaturalLanguageQuery(text, now)
	if parsed == nil {
		return QueryResult{
			Results:       []map[string]any{},
			Summary:       "I couldn't work out what records that question is about. Try asking about income, spending, loans, clients or tasks.",
			Visualization: VizTable,
		}
	}
	return ExecuteLocalQuery(parsed, data, now)
}
