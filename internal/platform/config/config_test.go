package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "JE", cfg.EntryNumberPrefix)
	assert.Equal(t, time.April, cfg.FiscalYearStartMonth)
	assert.Equal(t, 3, cfg.ReconDateToleranceDays)
	assert.True(t, cfg.ReconAmountTolerance.IsZero())
	assert.Equal(t, "3000", cfg.ClosingEquityAccountCode)
	assert.Equal(t, 5*time.Minute, cfg.AccountCacheTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("RECON_AMOUNT_TOLERANCE", "0.50")
	t.Setenv("FISCAL_YEAR_START_MONTH", "13")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CHAIN_REPORT_TTL", "bogus")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.5", cfg.ReconAmountTolerance.String())
	assert.Equal(t, time.April, cfg.FiscalYearStartMonth)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.ChainReportTTL)
}
