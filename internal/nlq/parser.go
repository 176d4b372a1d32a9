package nlq

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultInactivityDays = 90

// intentPattern pairs a regex with the builder that turns its captures into a
// structured query. Patterns are tried in order; the first match wins.
type intentPattern struct {
	re    *regexp.Regexp
	build func(m []string, now time.Time) *ParsedQuery
}

var intentPatterns = []intentPattern{
	{
		re: regexp.MustCompile(`(?i)clients?\b.*\b(?:haven'?t|have not|with no|without)\b.*?(?:(\d+)\s*days)?$`),
		build: func(m []string, _ time.Time) *ParsedQuery {
			days := defaultInactivityDays
			if m[1] != "" {
				days, _ = strconv.Atoi(m[1])
			}
			return &ParsedQuery{
				Intent:     "client_inactivity",
				Collection: CollectionClients,
				Filters:    []Filter{{Field: "daysSinceLastTransaction", Op: OpGt, Value: float64(days)}},
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\btop\s*(\d+)?\s*clients?\b`),
		build: func(m []string, _ time.Time) *ParsedQuery {
			limit := 5
			if m[1] != "" {
				limit, _ = strconv.Atoi(m[1])
			}
			return &ParsedQuery{
				Intent:     "top_clients",
				Collection: CollectionClients,
				Sort:       &Sort{Field: "totalRevenue", Descending: true},
				Limit:      limit,
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:spending|expenses?|purchases?|transactions?)\b.*\b(?:over|above|more than|greater than)\s*\$?([\d,]+(?:\.\d+)?)`),
		build: func(m []string, _ time.Time) *ParsedQuery {
			amount, _ := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			return &ParsedQuery{
				Intent:     "spending_above",
				Collection: CollectionSpending,
				Filters:    []Filter{{Field: "amount", Op: OpGt, Value: amount}},
				Sort:       &Sort{Field: "amount", Descending: true},
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bincome\s+from\s+([a-z0-9][a-z0-9 .&'-]*)`),
		build: func(m []string, _ time.Time) *ParsedQuery {
			return &ParsedQuery{
				Intent:      "income_from_source",
				Collection:  CollectionIncome,
				Filters:     []Filter{{Field: "source", Op: OpContains, Value: strings.TrimSpace(m[1])}},
				Aggregation: AggSum,
				AggField:    "amount",
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:unpaid|outstanding|open)\b.*\bloans?\b|\bloans?\b.*\b(?:unpaid|outstanding|not paid)\b`),
		build: func(_ []string, _ time.Time) *ParsedQuery {
			return &ParsedQuery{
				Intent:     "unpaid_loans",
				Collection: CollectionLoans,
				Filters:    []Filter{{Field: "isPaid", Op: OpEq, Value: false}},
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\boverdue\b.*\b(?:tasks?|todos?|to-?dos?)\b|\b(?:tasks?|todos?|to-?dos?)\b.*\boverdue\b`),
		build: func(_ []string, now time.Time) *ParsedQuery {
			return &ParsedQuery{
				Intent:     "overdue_todos",
				Collection: CollectionTodos,
				Filters: []Filter{
					{Field: "isCompleted", Op: OpEq, Value: false},
					{Field: "dueDate", Op: OpLt, Value: now},
				},
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:total|how much)\b.*\b(income|revenue|earn(?:ed|ings)?|spending|spent|expenses?)\b.*\b(this|last)\s+(week|month|year)\b`),
		build: func(m []string, now time.Time) *ParsedQuery {
			collection := CollectionIncome
			if isSpendingWord(m[1]) {
				collection = CollectionSpending
			}
			return &ParsedQuery{
				Intent:      "period_total",
				Collection:  collection,
				Aggregation: AggSum,
				AggField:    "amount",
				TimeRange:   periodRange(strings.ToLower(m[2]), strings.ToLower(m[3]), now),
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:largest|biggest)\s*(\d+)?\s*(?:expenses?|purchases?)\b`),
		build: func(m []string, _ time.Time) *ParsedQuery {
			limit := 5
			if m[1] != "" {
				limit, _ = strconv.Atoi(m[1])
			}
			return &ParsedQuery{
				Intent:     "largest_expenses",
				Collection: CollectionSpending,
				Sort:       &Sort{Field: "amount", Descending: true},
				Limit:      limit,
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\baverage\s+(income|revenue|payment|expenses?|spending|loan)\b`),
		build: func(m []string, _ time.Time) *ParsedQuery {
			collection := CollectionIncome
			switch {
			case isSpendingWord(m[1]):
				collection = CollectionSpending
			case strings.EqualFold(m[1], "loan"):
				collection = CollectionLoans
			}
			return &ParsedQuery{
				Intent:      "average",
				Collection:  collection,
				Aggregation: AggAvg,
				AggField:    "amount",
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\bhow many\s+(clients?|incomes?|invoices?|payments?|expenses?|purchases?|loans?|tasks?|todos?)\b`),
		build: func(m []string, _ time.Time) *ParsedQuery {
			return &ParsedQuery{
				Intent:      "count",
				Collection:  collectionForNoun(m[1]),
				Aggregation: AggCount,
			}
		},
	},
	{
		re: regexp.MustCompile(`(?i)\b(?:spend|spent|spending)\s+on\s+([a-z0-9][a-z0-9 .&'-]*)`),
		build: func(m []string, _ time.Time) *ParsedQuery {
			return &ParsedQuery{
				Intent:      "category_spend",
				Collection:  CollectionSpending,
				Filters:     []Filter{{Field: "reason", Op: OpContains, Value: strings.TrimSpace(m[1])}},
				Aggregation: AggSum,
				AggField:    "amount",
			}
		},
	},
}

// ParseNaturalLanguageQuery reads text into a ParsedQuery. It tries the
// structural patterns first and falls back to keyword inference; it returns
// nil only when even the fallback cannot name a collection.
func ParseNaturalLanguageQuery(text string, now time.Time) *ParsedQuery {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "?"))
	if trimmed == "" {
		return nil
	}
	for _, p := range intentPatterns {
		if m := p.re.FindStringSubmatch(trimmed); m != nil {
			return p.build(m, now)
		}
	}
	return inferFromKeywords(trimmed)
}

// inferFromKeywords is the loose fallback: guess the collection and an
// aggregation from word presence alone.
func inferFromKeywords(text string) *ParsedQuery {
	lower := strings.ToLower(text)
	var collection string
	switch {
	case containsAny(lower, "client", "customer"):
		collection = CollectionClients
	case containsAny(lower, "loan", "debt", "borrow"):
		collection = CollectionLoans
	case containsAny(lower, "todo", "task", "reminder"):
		collection = CollectionTodos
	case containsAny(lower, "income", "revenue", "earn", "invoice", "paid me"):
		collection = CollectionIncome
	case containsAny(lower, "spend", "spent", "expense", "cost", "purchase", "bought"):
		collection = CollectionSpending
	default:
		return nil
	}

	query := &ParsedQuery{Intent: "keyword_fallback", Collection: collection}
	switch {
	case containsAny(lower, "how many", "count", "number of"):
		query.Aggregation = AggCount
	case containsAny(lower, "average", "mean", "typical"):
		query.Aggregation = AggAvg
		query.AggField = "amount"
	case containsAny(lower, "total", "sum", "how much", "altogether"):
		query.Aggregation = AggSum
		query.AggField = "amount"
	case containsAny(lower, "largest", "biggest", "most", "max"):
		query.Aggregation = AggMax
		query.AggField = "amount"
	case containsAny(lower, "smallest", "least", "min"):
		query.Aggregation = AggMin
		query.AggField = "amount"
	}
	return query
}

func collectionForNoun(noun string) string {
	switch strings.ToLower(strings.TrimSuffix(noun, "s")) {
	case "client":
		return CollectionClients
	case "loan":
		return CollectionLoans
	case "task", "todo":
		return CollectionTodos
	case "expense", "purchase":
		return CollectionSpending
	default:
		return CollectionIncome
	}
}

func isSpendingWord(word string) bool {
	switch strings.ToLower(word) {
	case "spending", "spent", "expense", "expenses":
		return true
	}
	return false
}

// periodRange resolves "this month" style phrases to a concrete window.
// Weeks start on Monday.
func periodRange(qualifier, unit string, now time.Time) *TimeRange {
	var start, end time.Time
	switch unit {
	case "week":
		weekday := (int(now.Weekday()) + 6) % 7
		start = time.Date(now.Year(), now.Month(), now.Day()-weekday, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 7)
		if qualifier == "last" {
			start, end = start.AddDate(0, 0, -7), start
		}
	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
		if qualifier == "last" {
			start, end = start.AddDate(0, -1, 0), start
		}
	case "year":
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(1, 0, 0)
		if qualifier == "last" {
			start, end = start.AddDate(-1, 0, 0), start
		}
	default:
		return nil
	}
	return &TimeRange{Start: start, End: end}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
