package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerpulse/insight/internal/model"
)

func monthlyIncome(start time.Time, amounts []float64) []model.IncomeRecord {
	records := make([]model.IncomeRecord, 0, len(amounts))
	for i, amt := range amounts {
		records = append(records, model.IncomeRecord{
			Date:   model.NewDate(start.AddDate(0, i, 0)),
			Amount: amt,
			Source: "Acme Corp",
		})
	}
	return records
}

func TestGenerateRevenueForecast(t *testing.T) {
	start := time.Date(2024, time.September, 15, 0, 0, 0, 0, time.UTC)

	t.Run("flat history is stable around the mean", func(t *testing.T) {
		amounts := make([]float64, 12)
		for i := range amounts {
			amounts[i] = 10000
		}
		result := GenerateRevenueForecast(monthlyIncome(start, amounts), 6)

		require.False(t, result.InsufficientData)
		assert.Equal(t, TrendStable, result.Trend)
		assert.InDelta(t, 0, result.Metrics.GrowthRatePercent, 0.01)
		assert.Equal(t, 10000.0, result.Metrics.AverageMonthlyRevenue)
		require.Len(t, result.Forecast, 6)
		for _, p := range result.Forecast {
			assert.InDelta(t, 10000, p.Predicted, 1)
			assert.LessOrEqual(t, p.LowerBound, p.Predicted)
			assert.GreaterOrEqual(t, p.UpperBound, p.Predicted)
			// Zero volatility keeps bounds tight.
			assert.InDelta(t, p.Predicted, p.UpperBound, 10000*0.6)
		}
	})

	t.Run("confidence is non-increasing with horizon", func(t *testing.T) {
		result := GenerateRevenueForecast(monthlyIncome(start, []float64{9000, 11000, 10000, 12000, 9500, 11500}), 8)
		require.False(t, result.InsufficientData)
		for i := 1; i < len(result.Forecast); i++ {
			assert.LessOrEqual(t, result.Forecast[i].Confidence, result.Forecast[i-1].Confidence)
		}
		last := result.Forecast[len(result.Forecast)-1]
		assert.GreaterOrEqual(t, last.Confidence, 0.3)
	})

	t.Run("steady growth classifies as growing", func(t *testing.T) {
		result := GenerateRevenueForecast(monthlyIncome(start, []float64{5000, 5600, 6100, 6800, 7400, 8100}), 3)
		assert.Equal(t, TrendGrowing, result.Trend)
		assert.Greater(t, result.Metrics.GrowthRatePercent, 3.0)
	})

	t.Run("steady decline classifies as declining", func(t *testing.T) {
		result := GenerateRevenueForecast(monthlyIncome(start, []float64{8000, 7200, 6500, 5900, 5200, 4600}), 3)
		assert.Equal(t, TrendDeclining, result.Trend)
	})

	t.Run("wild swings classify as volatile", func(t *testing.T) {
		result := GenerateRevenueForecast(monthlyIncome(start, []float64{500, 9000, 700, 12000, 300, 15000}), 3)
		assert.Equal(t, TrendVolatile, result.Trend)
	})

	t.Run("two months of history is insufficient", func(t *testing.T) {
		result := GenerateRevenueForecast(monthlyIncome(start, []float64{4000, 6000}), 6)
		assert.True(t, result.InsufficientData)
		assert.Empty(t, result.Forecast)
		assert.Contains(t, result.Summary, "Insufficient data")
		// Metrics still reflect the available months.
		assert.Equal(t, 5000.0, result.Metrics.AverageMonthlyRevenue)
	})

	t.Run("no records is insufficient", func(t *testing.T) {
		result := GenerateRevenueForecast(nil, 6)
		assert.True(t, result.InsufficientData)
		assert.Empty(t, result.Forecast)
	})

	t.Run("idempotent for identical input", func(t *testing.T) {
		records := monthlyIncome(start, []float64{9000, 11000, 10000, 12000, 9500, 11500})
		a := GenerateRevenueForecast(records, 6)
		b := GenerateRevenueForecast(records, 6)
		assert.Equal(t, a, b)
	})

	t.Run("predictions never negative", func(t *testing.T) {
		result := GenerateRevenueForecast(monthlyIncome(start, []float64{9000, 5000, 2000, 500, 100, 50}), 12)
		for _, p := range result.Forecast {
			assert.GreaterOrEqual(t, p.Predicted, 0.0)
			assert.GreaterOrEqual(t, p.LowerBound, 0.0)
		}
	})

	t.Run("best and worst calendar months", func(t *testing.T) {
		jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
		result := GenerateRevenueForecast(monthlyIncome(jan, []float64{2000, 4000, 9000}), 3)
		assert.Equal(t, "March", result.Metrics.BestMonth)
		assert.Equal(t, "January", result.Metrics.WorstMonth)
	})
}
