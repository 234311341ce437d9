package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_MatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 20, cfg.Metrics.MaxCyclomatic)
	assert.Equal(t, 50.0, cfg.Metrics.MinMaintainability)
	assert.Equal(t, 15, cfg.Metrics.MaxCognitive)
	assert.Equal(t, 100, cfg.Metrics.MaxLinesOfCode)

	assert.Equal(t, "hours", cfg.Debt.Unit)
	assert.Equal(t, 4.0, cfg.Debt.Multipliers[SeverityCritical])
	assert.Equal(t, 2.0, cfg.Debt.Multipliers[SeverityHigh])
	assert.Equal(t, 1.0, cfg.Debt.Multipliers[SeverityMedium])
	assert.Equal(t, 0.5, cfg.Debt.Multipliers[SeverityLow])

	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveLoad_RoundTrips(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "anteater.yaml")

	cfg := DefaultConfig()
	cfg.Metrics.MaxCyclomatic = 30
	cfg.Logging.DebugMode = true

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, loaded.Metrics.MaxCyclomatic)
	assert.True(t, loaded.Logging.DebugMode)
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMetricsThresholds(), cfg.Metrics)
}

func TestValidate_RejectsOutOfRangeThresholds(t *testing.T) {
	t.Run("non-positive cyclomatic", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics.MaxCyclomatic = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("maintainability out of [0,100]", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics.MinMaintainability = 150
		require.Error(t, cfg.Validate())
	})

	t.Run("negative debt threshold", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Debt.Threshold = -1
		require.Error(t, cfg.Validate())
	})

	t.Run("empty debt unit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Debt.Unit = ""
		require.Error(t, cfg.Validate())
	})
}

func TestDebtCostConfig_Helpers(t *testing.T) {
	cfg := DefaultDebtCostConfig()

	assert.Equal(t, 0.5, cfg.DebtCost(DebtTODOComment))
	assert.Equal(t, 0.0, cfg.DebtCost(DebtType("unknown")))

	assert.Equal(t, 4.0, cfg.SeverityMultiplier(SeverityCritical))
	assert.Equal(t, 1.0, cfg.SeverityMultiplier(DebtSeverity("unknown")))

	assert.False(t, cfg.ExceedsThreshold(10))
	assert.True(t, cfg.ExceedsThreshold(1000))
}
