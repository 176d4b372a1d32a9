package expense

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerpulse/insight/internal/model"
)

func date(y int, m time.Month, d int) model.Date {
	return model.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		reason   string
		want     Category
		inferred bool
	}{
		{"Adobe subscription renewal", CategorySoftware, false},
		{"Facebook ads March", CategoryMarketing, false},
		{"office rent April", CategoryRent, false},
		{"Flight to client site", CategoryTravel, false},
		{"Team lunch", CategoryMeals, false},
		{"Contractor invoice - design", CategoryPayroll, false},
		{"Quarterly VAT payment", CategoryTaxes, false},
		{"Llama grooming", Category("Llama Grooming"), true},
		{"", CategoryOffice, false},
	}
	for _, tt := range tests {
		t.Run(tt.reason, func(t *testing.T) {
			got := Classify(tt.reason)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.inferred, got.Inferred)
		})
	}
}

func TestAnalyzeSpendingCategories(t *testing.T) {
	spending := []model.SpendingRecord{
		{Date: date(2025, time.March, 1), Amount: 1000, Reason: "Office rent"},
		{Date: date(2025, time.April, 1), Amount: 1000, Reason: "Office rent"},
		{Date: date(2025, time.March, 5), Amount: 100, Reason: "Adobe subscription"},
		{Date: date(2025, time.April, 5), Amount: 300, Reason: "Figma subscription"},
		{Date: date(2025, time.April, 9), Amount: 50, Reason: "Mystery purchase"},
	}
	breakdowns := AnalyzeSpendingCategories(spending)
	require.Len(t, breakdowns, 3)

	// Sorted by total descending.
	assert.Equal(t, string(CategoryRent), breakdowns[0].Category)
	assert.Equal(t, 2000.0, breakdowns[0].Total)
	assert.Equal(t, TrendStable, breakdowns[0].Trend)
	assert.False(t, breakdowns[0].Inferred)

	assert.Equal(t, string(CategorySoftware), breakdowns[1].Category)
	assert.Equal(t, 400.0, breakdowns[1].Total)
	assert.Equal(t, TrendIncreasing, breakdowns[1].Trend)
	assert.InDelta(t, 200, breakdowns[1].ChangePercent, 0.01)

	assert.Equal(t, "Mystery Purchase", breakdowns[2].Category)
	assert.True(t, breakdowns[2].Inferred)

	var totalShare float64
	for _, b := range breakdowns {
		totalShare += b.SharePercent
	}
	assert.InDelta(t, 100, totalShare, 0.1)
}

func TestGenerateExpenseSuggestions(t *testing.T) {
	t.Run("sharp category increase is critical with action items", func(t *testing.T) {
		spending := []model.SpendingRecord{
			{Date: date(2025, time.March, 5), Amount: 500, Reason: "Google ads"},
			{Date: date(2025, time.April, 5), Amount: 1200, Reason: "Google ads"},
		}
		suggestions := GenerateExpenseSuggestions(spending, nil)

		var found *Suggestion
		for i := range suggestions {
			if suggestions[i].Type == SuggestionCategoryIncrease {
				found = &suggestions[i]
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, SeverityCritical, found.Severity)
		assert.Equal(t, string(CategoryMarketing), found.Category)
		assert.NotEmpty(t, found.ActionItems)
	})

	t.Run("category decrease is congratulatory info", func(t *testing.T) {
		spending := []model.SpendingRecord{
			{Date: date(2025, time.March, 5), Amount: 1000, Reason: "Team lunch"},
			{Date: date(2025, time.April, 5), Amount: 400, Reason: "Team dinner"},
		}
		suggestions := GenerateExpenseSuggestions(spending, nil)

		var found *Suggestion
		for i := range suggestions {
			if suggestions[i].Type == SuggestionCategoryDecrease {
				found = &suggestions[i]
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, SeverityInfo, found.Severity)
		assert.Contains(t, found.Message, "Nice work")
	})

	t.Run("concentration needs both share and absolute floor", func(t *testing.T) {
		concentrated := []model.SpendingRecord{
			{Date: date(2025, time.April, 1), Amount: 3000, Reason: "Office rent"},
			{Date: date(2025, time.April, 5), Amount: 500, Reason: "Team lunch"},
		}
		suggestions := GenerateExpenseSuggestions(concentrated, nil)
		found := findType(suggestions, SuggestionConcentration)
		require.NotNil(t, found)
		assert.InDelta(t, 300, found.PotentialSavings, 0.01)

		tiny := []model.SpendingRecord{
			{Date: date(2025, time.April, 1), Amount: 90, Reason: "Office rent"},
			{Date: date(2025, time.April, 5), Amount: 10, Reason: "Team lunch"},
		}
		assert.Nil(t, findType(GenerateExpenseSuggestions(tiny, nil), SuggestionConcentration))
	})

	t.Run("expense ratio over 80 percent of income is critical", func(t *testing.T) {
		spending := []model.SpendingRecord{{Date: date(2025, time.April, 1), Amount: 9000, Reason: "Payroll"}}
		income := []model.IncomeRecord{{Date: date(2025, time.April, 2), Amount: 10000, Source: "Sales"}}
		suggestions := GenerateExpenseSuggestions(spending, income)

		found := findType(suggestions, SuggestionExpenseRatio)
		require.NotNil(t, found)
		assert.Equal(t, SeverityCritical, found.Severity)
		assert.InDelta(t, 1350, found.PotentialSavings, 0.01)
		// Critical sorts first.
		assert.Equal(t, SeverityCritical, suggestions[0].Severity)
	})

	t.Run("three rising months trigger a trend warning", func(t *testing.T) {
		spending := []model.SpendingRecord{
			{Date: date(2025, time.January, 1), Amount: 1000, Reason: "Office rent"},
			{Date: date(2025, time.February, 1), Amount: 1100, Reason: "Office rent"},
			{Date: date(2025, time.March, 1), Amount: 1250, Reason: "Office rent"},
			{Date: date(2025, time.April, 1), Amount: 1400, Reason: "Office rent"},
		}
		found := findType(GenerateExpenseSuggestions(spending, nil), SuggestionRisingSpend)
		require.NotNil(t, found)
		assert.Equal(t, SeverityWarning, found.Severity)
	})

	t.Run("severity ordering", func(t *testing.T) {
		spending := []model.SpendingRecord{
			{Date: date(2025, time.March, 5), Amount: 500, Reason: "Google ads"},
			{Date: date(2025, time.April, 5), Amount: 1300, Reason: "Google ads"},
			{Date: date(2025, time.March, 6), Amount: 1000, Reason: "Team lunch"},
			{Date: date(2025, time.April, 6), Amount: 300, Reason: "Team lunch"},
		}
		income := []model.IncomeRecord{{Date: date(2025, time.April, 2), Amount: 3200, Source: "Sales"}}
		suggestions := GenerateExpenseSuggestions(spending, income)
		require.NotEmpty(t, suggestions)
		for i := 1; i < len(suggestions); i++ {
			assert.LessOrEqual(t, severityRank[suggestions[i-1].Severity], severityRank[suggestions[i].Severity])
		}
	})
}

func findType(suggestions []Suggestion, typ string) *Suggestion {
	for i := range suggestions {
		if suggestions[i].Type == typ {
			return &suggestions[i]
		}
	}
	return nil
}
