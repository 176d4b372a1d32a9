package expense

import (
	"fmt"
	"sort"

	"github.com/ledgerpulse/insight/internal/model"
	"github.com/ledgerpulse/insight/internal/timeseries"
)

// Suggestion severities, in sort order.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Suggestion types.
const (
	SuggestionCategoryIncrease = "category_increase"
	SuggestionCategoryDecrease = "category_decrease"
	SuggestionConcentration    = "category_concentration"
	SuggestionExpenseRatio     = "expense_ratio"
	SuggestionRisingSpend      = "rising_spend"
)

// Thresholds driving suggestion emission.
const (
	increaseTriggerPercent  = 20
	increaseCriticalPercent = 50
	concentrationPercent    = 40
	concentrationMinDollars = 1000
	expenseRatioPercent     = 80
	risingMonthsRequired    = 3

	concentrationSavingsRate = 0.10
	ratioSavingsRate         = 0.15
)

// Suggestion is one actionable recommendation.
type Suggestion struct {
	Type             string   `json:"type"`
	Severity         string   `json:"severity"`
	Category         string   `json:"category,omitempty"`
	Title            string   `json:"title"`
	Message          string   `json:"message"`
	ActionItems      []string `json:"actionItems,omitempty"`
	PotentialSavings float64  `json:"potentialSavings,omitempty"`
}

// categoryAdvice holds the per-category explanation and action items used for
// increase suggestions.
var categoryAdvice = map[Category]struct {
	explanation string
	actions     []string
}{
	CategorySoftware: {
		"Subscription costs creep as unused seats and overlapping tools accumulate.",
		[]string{"Audit active seats on every subscription", "Cancel tools with overlapping features", "Ask vendors about annual billing discounts"},
	},
	CategoryMarketing: {
		"Rising ad spend is only healthy when revenue rises with it.",
		[]string{"Compare campaign spend against attributed revenue", "Pause the worst-performing channels", "Shift budget toward channels with proven return"},
	},
	CategoryMeals: {
		"Meals and entertainment are the most discretionary line in most budgets.",
		[]string{"Set a monthly meals budget", "Limit client entertainment to active deals"},
	},
	CategoryTravel: {
		"Travel costs respond well to earlier booking and tighter policies.",
		[]string{"Book flights further in advance", "Replace short trips with video calls where possible"},
	},
	CategoryOffice: {
		"Supply spend often hides duplicate or unmanaged ordering.",
		[]string{"Consolidate orders with one supplier", "Negotiate bulk pricing"},
	},
	CategoryPayroll: {
		"Contractor and payroll growth should track workload, not drift.",
		[]string{"Review contractor hours against deliverables", "Check for overlapping roles"},
	},
}

var defaultAdvice = struct {
	explanation string
	actions     []string
}{
	"This category is growing faster than the rest of your spending.",
	[]string{"Review the largest recent transactions in this category", "Decide whether the increase is planned or drift"},
}

var severityRank = map[string]int{SeverityCritical: 0, SeverityWarning: 1, SeverityInfo: 2}

// GenerateExpenseSuggestions reviews categorized spending against income and
// emits prioritized recommendations, sorted critical, warning, info.
func GenerateExpenseSuggestions(spending []model.SpendingRecord, income []model.IncomeRecord) []Suggestion {
	var suggestions []Suggestion

	breakdowns := AnalyzeSpendingCategories(spending)
	var totalSpend float64
	for _, b := range breakdowns {
		totalSpend += b.Total
	}

	for _, b := range breakdowns {
		switch {
		case b.ChangePercent > increaseTriggerPercent:
			severity := SeverityWarning
			if b.ChangePercent > increaseCriticalPercent {
				severity = SeverityCritical
			}
			advice, ok := categoryAdvice[Category(b.Category)]
			if !ok {
				advice = defaultAdvice
			}
			suggestions = append(suggestions, Suggestion{
				Type:     SuggestionCategoryIncrease,
				Severity: severity,
				Category: b.Category,
				Title:    fmt.Sprintf("%s spending up %.0f%%", b.Category, b.ChangePercent),
				Message: fmt.Sprintf("%s spending rose %.0f%% month over month. %s",
					b.Category, b.ChangePercent, advice.explanation),
				ActionItems: advice.actions,
			})
		case b.ChangePercent < -increaseTriggerPercent:
			suggestions = append(suggestions, Suggestion{
				Type:     SuggestionCategoryDecrease,
				Severity: SeverityInfo,
				Category: b.Category,
				Title:    fmt.Sprintf("%s spending down %.0f%%", b.Category, -b.ChangePercent),
				Message: fmt.Sprintf("Nice work: %s spending dropped %.0f%% month over month. Keep whatever changed.",
					b.Category, -b.ChangePercent),
			})
		}

		if b.SharePercent > concentrationPercent && b.Total > concentrationMinDollars {
			savings := round2(b.Total * concentrationSavingsRate)
			suggestions = append(suggestions, Suggestion{
				Type:     SuggestionConcentration,
				Severity: SeverityWarning,
				Category: b.Category,
				Title:    fmt.Sprintf("%s dominates your spending", b.Category),
				Message: fmt.Sprintf("%s accounts for %.0f%% of total spend ($%.2f). Concentrated costs are a single point of failure; a 10%% optimization here saves about $%.2f.",
					b.Category, b.SharePercent, b.Total, savings),
				ActionItems:      []string{"Get competing quotes for this category", "Negotiate with your current provider"},
				PotentialSavings: savings,
			})
		}
	}

	var totalIncome float64
	for _, r := range income {
		if r.Date.Valid() {
			totalIncome += model.SafeAmount(r.Amount)
		}
	}
	if totalIncome > 0 {
		ratio := totalSpend / totalIncome * 100
		if ratio > expenseRatioPercent {
			savings := round2(totalSpend * ratioSavingsRate)
			suggestions = append(suggestions, Suggestion{
				Type:     SuggestionExpenseRatio,
				Severity: SeverityCritical,
				Title:    "Expenses are consuming most of your income",
				Message: fmt.Sprintf("Total spending is %.0f%% of total income. Cutting 15%% of expenses would free about $%.2f.",
					ratio, savings),
				ActionItems:      []string{"Rank categories by total and cut from the top", "Defer non-essential purchases this quarter"},
				PotentialSavings: savings,
			})
		}
	}

	if rising := consecutiveRisingMonths(spending); rising >= risingMonthsRequired {
		suggestions = append(suggestions, Suggestion{
			Type:     SuggestionRisingSpend,
			Severity: SeverityWarning,
			Title:    fmt.Sprintf("Spending has risen %d months in a row", rising),
			Message:  fmt.Sprintf("Total monthly spending has increased for %d consecutive months. Small monthly creep compounds quickly.", rising),
			ActionItems: []string{
				"Compare this month's category totals against three months ago",
				"Set a monthly spending ceiling",
			},
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return severityRank[suggestions[i].Severity] < severityRank[suggestions[j].Severity]
	})
	return suggestions
}

// consecutiveRisingMonths counts how many months in a row total spend has
// increased, ending at the latest month.
func consecutiveRisingMonths(spending []model.SpendingRecord) int {
	entries := make([]timeseries.Entry, 0, len(spending))
	for _, r := range spending {
		entries = append(entries, timeseries.Entry{Date: r.Date.Time, Amount: model.SafeAmount(r.Amount)})
	}
	months := timeseries.GroupByPeriod(entries, timeseries.GranularityMonth)
	rising := 0
	for i := len(months) - 1; i > 0; i-- {
		if months[i].Total > months[i-1].Total {
			rising++
		} else {
			break
		}
	}
	return rising
}
