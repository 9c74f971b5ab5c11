package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// NetworkSettings models the payment rail: where USDC lives and which
// chain settles the transfer.
type NetworkSettings struct {
	Name          string `json:"name"`
	ChainID       int64  `json:"chainId"`
	TokenAddress  string `json:"tokenAddress"`
	TokenSymbol   string `json:"tokenSymbol"`
	TokenDecimals int32  `json:"tokenDecimals"`
}

type ServiceConfig struct {
	HTTPPort           int
	ShutdownGrace      time.Duration
	LedgerWriteTimeout time.Duration
}

type FacilitatorConfig struct {
	BaseURL       string
	VerifyTimeout time.Duration
}

type FraudConfig struct {
	ReputationURL string
	Denylist      []string
}

// AppConfig ties together service, network and collaborator settings.
type AppConfig struct {
	Service     ServiceConfig
	Network     NetworkSettings
	Facilitator FacilitatorConfig
	Fraud       FraudConfig
	PostgresDSN string
}

// Defaults target Base mainnet USDC and the public x402 facilitator.
var defaultNetwork = NetworkSettings{
	Name:          "base",
	ChainID:       8453,
	TokenAddress:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	TokenSymbol:   "USDC",
	TokenDecimals: 6,
}

// Load aggregates configuration from an optional network file and the
// environment.
func Load() (*AppConfig, error) {
	network := defaultNetwork
	if path := os.Getenv("NETWORK_CONFIG_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load network config: %w", err)
		}
		if err := json.Unmarshal(raw, &network); err != nil {
			return nil, fmt.Errorf("parse network config: %w", err)
		}
	}

	cfg := &AppConfig{
		Service: ServiceConfig{
			HTTPPort:           envOrInt("API_HTTP_PORT", 3000),
			ShutdownGrace:      time.Duration(envOrInt("SHUTDOWN_GRACE_SECONDS", 10)) * time.Second,
			LedgerWriteTimeout: time.Duration(envOrInt("LEDGER_WRITE_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
		Network: network,
		Facilitator: FacilitatorConfig{
			BaseURL:       envOr("FACILITATOR_URL", ""),
			VerifyTimeout: time.Duration(envOrInt("FACILITATOR_VERIFY_TIMEOUT_MS", 10000)) * time.Millisecond,
		},
		Fraud: FraudConfig{
			ReputationURL: envOr("WALLET_REPUTATION_URL", ""),
			Denylist:      splitList(envOr("WALLET_DENYLIST", "")),
		},
		PostgresDSN: envOr("POSTGRES_DSN", ""),
	}
	return cfg, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		var parsed int
		if _, err := fmt.Sscanf(val, "%d", &parsed); err == nil {
			return parsed
		}
	}
	return fallback
}
