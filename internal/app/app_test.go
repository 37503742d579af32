package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/faceoff/internal/config"
	"github.com/fortuna/faceoff/internal/ledger"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.LedgerDSN = ":memory:"
	cfg.OutputDir = ""
	cfg.RedisURL = ""
	return cfg
}

func TestBuildRegistersLedgerCheck(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, testConfig(), Options{})
	require.NoError(t, err)
	defer a.Close()

	checks := a.HealthChecks()
	require.Contains(t, checks, "ledger")
	assert.NoError(t, checks["ledger"](ctx))
	assert.NotContains(t, checks, "redis")
}

func TestBuildWithInjectedLedgerHasNoChecks(t *testing.T) {
	a, err := Build(context.Background(), testConfig(), Options{
		Mode:   ledger.ModeReadOnly,
		Ledger: ledger.NewMemory(ledger.ModeReadOnly),
	})
	require.NoError(t, err)
	defer a.Close()

	assert.Empty(t, a.HealthChecks())
	assert.NoError(t, a.Close())
}
