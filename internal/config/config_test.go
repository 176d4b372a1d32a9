package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 6, c.Forecast.HorizonMonths)
	assert.Equal(t, 6, c.CashFlow.HorizonMonths)
	assert.Equal(t, 90, c.Clients.InactivityDays)
}

func TestLoad(t *testing.T) {
	t.Run("explicit values override defaults", func(t *testing.T) {
		path := writeConfig(t, `
log:
  level: debug
forecast:
  horizon_months: 12
cash_flow:
  starting_balance: 25000
`)
		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", c.Log.Level)
		assert.Equal(t, 12, c.Forecast.HorizonMonths)
		assert.Equal(t, 25000.0, c.CashFlow.StartingBalance)
		// Untouched sections keep their defaults.
		assert.Equal(t, 6, c.CashFlow.HorizonMonths)
		assert.Equal(t, 90, c.Clients.InactivityDays)
	})

	t.Run("invalid log level is rejected", func(t *testing.T) {
		path := writeConfig(t, "log:\n  level: loud\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validate config")
	})

	t.Run("out of range horizon is rejected", func(t *testing.T) {
		path := writeConfig(t, "forecast:\n  horizon_months: 99\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
