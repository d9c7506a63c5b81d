// Package config loads the gateway's deployment configuration from the
// environment. Every knob has a development default so a bare process
// starts against a local node.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	gwtypes "github.com/merakinexus/payment-gateway/types"
)

const (
	defaultRPCURL         = "http://127.0.0.1:7545"
	defaultPort           = 3000
	defaultEnvironment    = "development"
	defaultGasStrategy    = string(gwtypes.GasLegacy)
	defaultReceiptTimeout = 60 * time.Second
)

// Config is the resolved deployment configuration.
type Config struct {
	// RPCURL is the JSON-RPC endpoint of the chain node. ALCHEMY_API_URL
	// takes precedence over BLOCKCHAIN_RPC_URL when both are set.
	RPCURL string

	// ContractAddress, when set, switches the gateway to contract-mediated
	// payments.
	ContractAddress string

	// SigningKey is the deployment-wide default key for server-signing
	// setups. Requests may still carry their own.
	SigningKey string

	// Environment tags the deployment; anything but "production" includes
	// raw error details in 500 responses.
	Environment string

	Port int

	GasStrategy    gwtypes.GasStrategy
	ReceiptTimeout time.Duration

	// RejectSelfPayment moves the sender != receiver rule into the
	// HTTP-layer validator.
	RejectSelfPayment bool

	LogLevel string
}

// Load reads the recognized environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("BLOCKCHAIN_RPC_URL", defaultRPCURL)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("NODE_ENV", defaultEnvironment)
	v.SetDefault("GAS_STRATEGY", defaultGasStrategy)
	v.SetDefault("RECEIPT_TIMEOUT", defaultReceiptTimeout.String())
	v.SetDefault("LOG_LEVEL", "info")

	for _, key := range []string{
		"ALCHEMY_API_URL", "BLOCKCHAIN_RPC_URL", "CONTRACT_ADDRESS",
		"PRIVATE_KEY", "NODE_ENV", "PORT", "GAS_STRATEGY",
		"RECEIPT_TIMEOUT", "REJECT_SELF_PAYMENT", "LOG_LEVEL",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	rpcURL := v.GetString("ALCHEMY_API_URL")
	if rpcURL == "" {
		rpcURL = v.GetString("BLOCKCHAIN_RPC_URL")
	}

	strategy := gwtypes.GasStrategy(v.GetString("GAS_STRATEGY"))
	switch strategy {
	case gwtypes.GasLegacy, gwtypes.GasDynamic:
	default:
		return nil, fmt.Errorf("unknown gas strategy %q", strategy)
	}

	timeout, err := time.ParseDuration(v.GetString("RECEIPT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parse RECEIPT_TIMEOUT: %w", err)
	}

	return &Config{
		RPCURL:            rpcURL,
		ContractAddress:   v.GetString("CONTRACT_ADDRESS"),
		SigningKey:        v.GetString("PRIVATE_KEY"),
		Environment:       v.GetString("NODE_ENV"),
		Port:              v.GetInt("PORT"),
		GasStrategy:       strategy,
		ReceiptTimeout:    timeout,
		RejectSelfPayment: v.GetBool("REJECT_SELF_PAYMENT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
	}, nil
}

// Production reports whether error details must be withheld from
// responses.
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// Mode derives the submission strategy from the contract address.
func (c *Config) Mode() gwtypes.SubmitMode {
	if c.ContractAddress != "" {
		return gwtypes.ModeContract
	}
	return gwtypes.ModeDirect
}
