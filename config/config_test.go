package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gwtypes "github.com/merakinexus/payment-gateway/types"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:7545", cfg.RPCURL)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, gwtypes.GasLegacy, cfg.GasStrategy)
	assert.Equal(t, 60*time.Second, cfg.ReceiptTimeout)
	assert.False(t, cfg.Production())
	assert.Equal(t, gwtypes.ModeDirect, cfg.Mode())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("ALCHEMY_API_URL", "https://eth-sepolia.example/v2/key")
	t.Setenv("BLOCKCHAIN_RPC_URL", "http://should-lose:8545")
	t.Setenv("CONTRACT_ADDRESS", "0xda9053D313bdE1FA8E3917aa82b0E1B2329531cd")
	t.Setenv("NODE_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("GAS_STRATEGY", "dynamic")
	t.Setenv("RECEIPT_TIMEOUT", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://eth-sepolia.example/v2/key", cfg.RPCURL, "ALCHEMY_API_URL wins")
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Production())
	assert.Equal(t, gwtypes.ModeContract, cfg.Mode())
	assert.Equal(t, gwtypes.GasDynamic, cfg.GasStrategy)
	assert.Equal(t, 90*time.Second, cfg.ReceiptTimeout)
}

func TestLoadRejectsUnknownGasStrategy(t *testing.T) {
	t.Setenv("GAS_STRATEGY", "cheapest")

	_, err := Load()
	assert.Error(t, err)
}
