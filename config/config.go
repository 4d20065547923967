// Package config handles application configuration.
//
// Everything here is operational: which store to open, which identities the
// contract uses and how the simulated marketplace prices quota. The ledger's
// own rules (memo bound, amount range, payout split) are fixed in code.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds runtime configuration for the wraptoken contract tooling.
type Config struct {
	// DataDir is the root directory for the keyed store and logs.
	DataDir string

	Contract ContractConfig
	Market   MarketConfig
	Log      LogConfig
}

// ContractConfig identifies the contract and its token symbols.
type ContractConfig struct {
	Account         string `conf:"contract.account"`
	FeeAccount      string `conf:"contract.fee_account"`
	PrimarySymbol   string `conf:"contract.primary"`   // "precision,CODE"
	SecondarySymbol string `conf:"contract.secondary"` // "precision,CODE"
}

// MarketConfig describes the simulated resource marketplace.
type MarketConfig struct {
	Account       string `conf:"market.account"`
	BytesPerToken int64  `conf:"market.rate"` // quota bytes per smallest primary unit
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.wraptoken
//	macOS:   ~/Library/Application Support/Wraptoken
//	Windows: %APPDATA%\Wraptoken
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wraptoken"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Wraptoken")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Wraptoken")
		}
		return filepath.Join(home, "AppData", "Roaming", "Wraptoken")
	default:
		return filepath.Join(home, ".wraptoken")
	}
}

// DBDir returns the keyed-store directory.
func (c *Config) DBDir() string {
	return filepath.Join(c.DataDir, "db")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "wraptoken.conf")
}
