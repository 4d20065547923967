package config

import (
	"fmt"

	"github.com/Incrediblez7/wrapresource/pkg/types"
)

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}

	names := map[string]string{
		"contract.account":     cfg.Contract.Account,
		"contract.fee_account": cfg.Contract.FeeAccount,
		"market.account":       cfg.Market.Account,
	}
	for field, name := range names {
		if !types.Name(name).Valid() {
			return fmt.Errorf("%s: invalid account name %q", field, name)
		}
	}
	if cfg.Contract.Account == cfg.Market.Account {
		return fmt.Errorf("contract.account and market.account must differ")
	}

	primary, err := types.ParseSymbol(cfg.Contract.PrimarySymbol)
	if err != nil {
		return fmt.Errorf("contract.primary: %w", err)
	}
	secondary, err := types.ParseSymbol(cfg.Contract.SecondarySymbol)
	if err != nil {
		return fmt.Errorf("contract.secondary: %w", err)
	}
	if primary.Code == secondary.Code {
		return fmt.Errorf("contract.primary and contract.secondary must use different codes")
	}

	if cfg.Market.BytesPerToken <= 0 {
		return fmt.Errorf("market.rate must be positive, got %d", cfg.Market.BytesPerToken)
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}
