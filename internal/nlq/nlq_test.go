package nlq

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerpulse/insight/internal/model"
)

var now = time.Date(2025, time.May, 15, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) model.Date {
	return model.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestParseNaturalLanguageQuery(t *testing.T) {
	tests := []struct {
		text        string
		intent      string
		collection  string
		aggregation string
	}{
		{"Which clients haven't paid me in 60 days?", "client_inactivity", CollectionClients, ""},
		{"show my top 3 clients", "top_clients", CollectionClients, ""},
		{"expenses over $500", "spending_above", CollectionSpending, ""},
		{"income from consulting", "income_from_source", CollectionIncome, AggSum},
		{"list unpaid loans", "unpaid_loans", CollectionLoans, ""},
		{"any overdue tasks?", "overdue_todos", CollectionTodos, ""},
		{"how much did I earn this month", "period_total", CollectionIncome, AggSum},
		{"total spending last year", "period_total", CollectionSpending, AggSum},
		{"biggest 3 expenses", "largest_expenses", CollectionSpending, ""},
		{"average income", "average", CollectionIncome, AggAvg},
		{"how many clients do I have?", "count", CollectionClients, AggCount},
		{"what did I spend on software", "category_spend", CollectionSpending, AggSum},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			q := ParseNaturalLanguageQuery(tt.text, now)
			require.NotNil(t, q)
			assert.Equal(t, tt.intent, q.Intent)
			assert.Equal(t, tt.collection, q.Collection)
			assert.Equal(t, tt.aggregation, q.Aggregation)
		})
	}

	t.Run("inactivity threshold is captured", func(t *testing.T) {
		q := ParseNaturalLanguageQuery("which clients haven't paid me in 60 days?", now)
		require.NotNil(t, q)
		require.Len(t, q.Filters, 1)
		assert.Equal(t, 60.0, q.Filters[0].Value)
	})

	t.Run("spending threshold strips commas", func(t *testing.T) {
		q := ParseNaturalLanguageQuery("purchases above $1,250", now)
		require.NotNil(t, q)
		require.Len(t, q.Filters, 1)
		assert.Equal(t, 1250.0, q.Filters[0].Value)
	})

	t.Run("this month resolves to a calendar window", func(t *testing.T) {
		q := ParseNaturalLanguageQuery("how much did I earn this month", now)
		require.NotNil(t, q)
		require.NotNil(t, q.TimeRange)
		assert.Equal(t, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), q.TimeRange.Start)
		assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), q.TimeRange.End)
	})

	t.Run("keyword fallback guesses collection and aggregation", func(t *testing.T) {
		q := ParseNaturalLanguageQuery("what was my biggest cost", now)
		require.NotNil(t, q)
		assert.Equal(t, "keyword_fallback", q.Intent)
		assert.Equal(t, CollectionSpending, q.Collection)
		assert.Equal(t, AggMax, q.Aggregation)
	})

	t.Run("unrecognizable text returns nil", func(t *testing.T) {
		assert.Nil(t, ParseNaturalLanguageQuery("tell me a joke", now))
		assert.Nil(t, ParseNaturalLanguageQuery("   ", now))
	})
}

func TestExecuteLocalQuery(t *testing.T) {
	data := Dataset{
		Income: []model.IncomeRecord{
			{Date: date(2025, time.May, 2), Amount: 4000, Source: "Consulting - Orbit Media"},
			{Date: date(2025, time.May, 9), Amount: 1500, Source: "Workshop"},
			{Date: date(2025, time.April, 20), Amount: 4000, Source: "Consulting - Orbit Media"},
		},
		Spending: []model.SpendingRecord{
			{Date: date(2025, time.May, 3), Amount: 1200, Reason: "Office rent"},
			{Date: date(2025, time.May, 6), Amount: 90, Reason: "Adobe subscription"},
			{Date: date(2025, time.April, 3), Amount: 1200, Reason: "Office rent"},
		},
		Loans: []model.LoanRecord{
			{Amount: 5000, Description: "Equipment loan", IsPaid: false, Date: date(2025, time.January, 15)},
			{Amount: 2000, Description: "Bridge loan", IsPaid: true, Date: date(2024, time.November, 1)},
		},
		Todos: []model.TodoRecord{
			{Description: "File VAT return", DueDate: date(2025, time.May, 1), IsCompleted: false},
			{Description: "Renew insurance", DueDate: date(2025, time.June, 1), IsCompleted: false},
			{Description: "Send April invoices", DueDate: date(2025, time.April, 30), IsCompleted: true},
		},
	}

	t.Run("how many clients counts seven", func(t *testing.T) {
		var clientRecords []model.ClientRecord
		for i := 0; i < 7; i++ {
			clientRecords = append(clientRecords, model.ClientRecord{
				ClientID: fmt.Sprintf("c-%d", i), Name: fmt.Sprintf("Client %d", i),
			})
		}
		withClients := data
		withClients.Clients = clientRecords

		result := Run("how many clients do I have?", withClients, now)
		require.NotNil(t, result.Query)
		assert.Equal(t, CollectionClients, result.Query.Collection)
		assert.Equal(t, AggCount, result.Query.Aggregation)
		assert.Equal(t, "Count: 7", result.Summary)
	})

	t.Run("period total sums only this month", func(t *testing.T) {
		result := Run("how much did I earn this month", data, now)
		assert.Equal(t, "Total: $5500.00", result.Summary)
		assert.Equal(t, VizNumber, result.Visualization)
		assert.Len(t, result.Results, 2)
	})

	t.Run("spending above threshold filters and sorts", func(t *testing.T) {
		result := Run("expenses over $100", data, now)
		require.Len(t, result.Results, 2)
		assert.Equal(t, 1200.0, result.Results[0]["amount"])
		assert.Equal(t, "2 matching records.", result.Summary)
	})

	t.Run("unpaid loans filter on isPaid", func(t *testing.T) {
		result := Run("list unpaid loans", data, now)
		require.Len(t, result.Results, 1)
		assert.Equal(t, "Equipment loan", result.Results[0]["description"])
	})

	t.Run("overdue tasks compare due dates against now", func(t *testing.T) {
		result := Run("any overdue tasks?", data, now)
		require.Len(t, result.Results, 1)
		assert.Equal(t, "File VAT return", result.Results[0]["description"])
	})

	t.Run("income from source is a contains match", func(t *testing.T) {
		result := Run("income from orbit media", data, now)
		assert.Equal(t, "Total: $8000.00", result.Summary)
		assert.Len(t, result.Results, 2)
	})

	t.Run("client inactivity joins clients against income", func(t *testing.T) {
		withClients := data
		withClients.Clients = []model.ClientRecord{
			{ClientID: "c-1", Name: "Orbit Media"},
			{ClientID: "c-2", Name: "Dormant Co"},
		}
		result := Run("which clients haven't paid me in 60 days?", withClients, now)
		require.Len(t, result.Results, 1)
		assert.Equal(t, "Dormant Co", result.Results[0]["name"])
		assert.Contains(t, result.Summary, "1 of 2 clients")
	})

	t.Run("largest expenses limits and hints a bar chart", func(t *testing.T) {
		result := Run("biggest 2 expenses", data, now)
		require.Len(t, result.Results, 2)
		assert.Equal(t, 1200.0, result.Results[0]["amount"])
		assert.Equal(t, VizBar, result.Visualization)
	})

	t.Run("empty matches still answer", func(t *testing.T) {
		result := Run("expenses over $99999", data, now)
		assert.Equal(t, "No matching records.", result.Summary)
		assert.NotNil(t, result.Results)
		assert.Empty(t, result.Results)
	})

	t.Run("unparseable text answers with guidance", func(t *testing.T) {
		result := Run("tell me a joke", data, now)
		assert.Nil(t, result.Query)
		assert.Empty(t, result.Results)
		assert.Contains(t, result.Summary, "couldn't")
	})
}
