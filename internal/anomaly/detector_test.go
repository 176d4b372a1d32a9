package anomaly

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerpulse/insight/internal/model"
)

func date(y int, m time.Month, d int) model.Date {
	return model.NewDate(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func flatSpending(months int, perMonth float64) []model.SpendingRecord {
	var out []model.SpendingRecord
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		out = append(out, model.SpendingRecord{
			Date:   model.NewDate(start.AddDate(0, i, 9)),
			Amount: perMonth,
			Reason: "Office rent",
		})
	}
	return out
}

func flatIncome(months int, perMonth float64) []model.IncomeRecord {
	var out []model.IncomeRecord
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < months; i++ {
		out = append(out, model.IncomeRecord{
			Date:   model.NewDate(start.AddDate(0, i, 14)),
			Amount: perMonth,
			Source: "Consulting",
		})
	}
	return out
}

func findAlert(alerts []Alert, alertType string) *Alert {
	for i := range alerts {
		if alerts[i].Type == alertType {
			return &alerts[i]
		}
	}
	return nil
}

func TestDetectSpendingSpikes(t *testing.T) {
	t.Run("150 percent jump is high severity", func(t *testing.T) {
		spending := flatSpending(3, 1000)
		spending = append(spending, model.SpendingRecord{
			Date: date(2025, time.April, 10), Amount: 2500, Reason: "Office rent",
		})
		alerts := Detect(nil, spending)

		spike := findAlert(alerts, TypeSpendingSpike)
		require.NotNil(t, spike)
		assert.Equal(t, SeverityHigh, spike.Severity)
		assert.InDelta(t, 150, spike.DeviationPercent, 0.01)
		assert.Equal(t, 2500.0, spike.CurrentValue)
		assert.Equal(t, 1000.0, spike.ExpectedValue)
		assert.NotEmpty(t, spike.Recommendation)
	})

	t.Run("severity tiers", func(t *testing.T) {
		tests := []struct {
			latest   float64
			severity string
		}{
			{1400, SeverityMedium},   // +40%
			{1700, SeverityHigh},     // +70%
			{3200, SeverityCritical}, // +220%
		}
		for _, tt := range tests {
			spending := flatSpending(3, 1000)
			spending = append(spending, model.SpendingRecord{
				Date: date(2025, time.April, 10), Amount: tt.latest, Reason: "Office rent",
			})
			spike := findAlert(Detect(nil, spending), TypeSpendingSpike)
			require.NotNil(t, spike, "latest=%v", tt.latest)
			assert.Equal(t, tt.severity, spike.Severity, "latest=%v", tt.latest)
		}
	})

	t.Run("flat spending raises nothing", func(t *testing.T) {
		assert.Nil(t, findAlert(Detect(nil, flatSpending(6, 1000)), TypeSpendingSpike))
	})

	t.Run("too little data raises nothing", func(t *testing.T) {
		assert.Empty(t, Detect(nil, flatSpending(2, 1000)[:2]))
	})
}

func TestDetectCategorySpikes(t *testing.T) {
	spending := []model.SpendingRecord{
		{Date: date(2025, time.January, 5), Amount: 200, Reason: "Google ads"},
		{Date: date(2025, time.February, 5), Amount: 200, Reason: "Google ads"},
		{Date: date(2025, time.March, 5), Amount: 700, Reason: "Google ads"},
		// Stable category for contrast.
		{Date: date(2025, time.January, 1), Amount: 1000, Reason: "Office rent"},
		{Date: date(2025, time.February, 1), Amount: 1000, Reason: "Office rent"},
		{Date: date(2025, time.March, 1), Amount: 1000, Reason: "Office rent"},
	}
	alerts := Detect(nil, spending)

	spike := findAlert(alerts, TypeCategorySpike)
	require.NotNil(t, spike)
	assert.Equal(t, "Marketing & Advertising", spike.Metric)
	assert.Equal(t, SeverityHigh, spike.Severity) // +250%
	assert.InDelta(t, 250, spike.DeviationPercent, 0.01)

	t.Run("small absolute changes are ignored", func(t *testing.T) {
		tiny := []model.SpendingRecord{
			{Date: date(2025, time.January, 5), Amount: 20, Reason: "Google ads"},
			{Date: date(2025, time.February, 5), Amount: 20, Reason: "Google ads"},
			{Date: date(2025, time.March, 5), Amount: 90, Reason: "Google ads"},
		}
		assert.Nil(t, findAlert(Detect(nil, tiny), TypeCategorySpike))
	})
}

func TestDetectIncomeDrops(t *testing.T) {
	t.Run("severity tiers on the negative side", func(t *testing.T) {
		tests := []struct {
			latest   float64
			severity string
		}{
			{7000, SeverityMedium},   // -30%
			{5000, SeverityHigh},     // -50%
			{3000, SeverityCritical}, // -70%
		}
		for _, tt := range tests {
			income := flatIncome(3, 10000)
			income = append(income, model.IncomeRecord{
				Date: date(2025, time.April, 14), Amount: tt.latest, Source: "Consulting",
			})
			drop := findAlert(Detect(income, nil), TypeIncomeDrop)
			require.NotNil(t, drop, "latest=%v", tt.latest)
			assert.Equal(t, tt.severity, drop.Severity, "latest=%v", tt.latest)
		}
	})

	t.Run("transaction count collapse", func(t *testing.T) {
		var income []model.IncomeRecord
		for d := 0; d < 6; d++ {
			income = append(income, model.IncomeRecord{
				Date: date(2025, time.March, 2+d*4), Amount: 500, Source: "Shop sales",
			})
		}
		income = append(income, model.IncomeRecord{
			Date: date(2025, time.April, 10), Amount: 500, Source: "Shop sales",
		})
		freq := findAlert(Detect(income, nil), TypeFrequencyChange)
		require.NotNil(t, freq)
		assert.Equal(t, 6.0, freq.ExpectedValue)
		assert.Equal(t, 1.0, freq.CurrentValue)
	})
}

func TestDetectStructuralShifts(t *testing.T) {
	t.Run("spending growth outpacing income growth", func(t *testing.T) {
		income := []model.IncomeRecord{
			{Date: date(2025, time.March, 10), Amount: 10000, Source: "Sales"},
			{Date: date(2025, time.April, 10), Amount: 10500, Source: "Sales"}, // +5%
		}
		spending := []model.SpendingRecord{
			{Date: date(2025, time.March, 5), Amount: 4000, Reason: "Office rent"},
			{Date: date(2025, time.April, 5), Amount: 5600, Reason: "Office rent"}, // +40%
		}
		alert := findAlert(Detect(income, spending), TypeGrowthImbalance)
		require.NotNil(t, alert)
		assert.InDelta(t, 35, alert.DeviationPercent, 0.01)
	})

	t.Run("margin squeeze severity from resulting margin", func(t *testing.T) {
		income := flatIncome(4, 10000)
		spending := []model.SpendingRecord{
			{Date: date(2025, time.January, 5), Amount: 6000, Reason: "Payroll"},
			{Date: date(2025, time.February, 5), Amount: 7000, Reason: "Payroll"},
			{Date: date(2025, time.March, 5), Amount: 8500, Reason: "Payroll"},
			{Date: date(2025, time.April, 5), Amount: 9700, Reason: "Payroll"}, // margin 3%
		}
		alert := findAlert(Detect(income, spending), TypeMarginSqueeze)
		require.NotNil(t, alert)
		assert.Equal(t, SeverityCritical, alert.Severity)
	})
}

func TestAlertOrderingAndIdentity(t *testing.T) {
	income := flatIncome(3, 10000)
	income = append(income, model.IncomeRecord{Date: date(2025, time.April, 14), Amount: 3000, Source: "Consulting"})
	spending := flatSpending(3, 1000)
	spending = append(spending, model.SpendingRecord{Date: date(2025, time.April, 10), Amount: 2500, Reason: "Office rent"})

	alerts := Detect(income, spending)
	require.NotEmpty(t, alerts)

	t.Run("sorted by severity then absolute deviation", func(t *testing.T) {
		for i := 1; i < len(alerts); i++ {
			prev, cur := alerts[i-1], alerts[i]
			assert.LessOrEqual(t, severityRank[prev.Severity], severityRank[cur.Severity])
			if severityRank[prev.Severity] == severityRank[cur.Severity] {
				assert.GreaterOrEqual(t, math.Abs(prev.DeviationPercent), math.Abs(cur.DeviationPercent))
			}
		}
	})

	t.Run("deterministic ids across runs", func(t *testing.T) {
		again := Detect(income, spending)
		require.Equal(t, len(alerts), len(again))
		for i := range alerts {
			assert.Equal(t, alerts[i].ID, again[i].ID)
		}
		assert.Equal(t, alerts, again)
	})

	t.Run("ids are distinct per alert", func(t *testing.T) {
		seen := map[string]bool{}
		for _, a := range alerts {
			assert.False(t, seen[a.ID], "duplicate id %s", a.ID)
			seen[a.ID] = true
		}
	})
}
