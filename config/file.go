package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile loads configuration from a .conf file.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key = value
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	return values, scanner.Err()
}

// ApplyFileConfig applies file configuration to a Config struct.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

// setConfigValue sets a config value by key.
func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	// Core
	case "datadir":
		cfg.DataDir = value

	// Contract identities and symbols
	case "contract.account":
		cfg.Contract.Account = value
	case "contract.fee_account":
		cfg.Contract.FeeAccount = value
	case "contract.primary":
		cfg.Contract.PrimarySymbol = value
	case "contract.secondary":
		cfg.Contract.SecondarySymbol = value

	// Marketplace
	case "market.account":
		cfg.Market.Account = value
	case "market.rate":
		rate, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		cfg.Market.BytesPerToken = rate

	// Logging
	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

// parseBool parses a boolean value.
func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a default configuration file.
func WriteDefaultConfig(path string) error {
	cfg := Default()
	content := `# Wraptoken Configuration
#
# Contract identities and marketplace settings. The payout split and ledger
# rules are fixed in code.

# Data directory for the keyed store and logs
# datadir = ` + cfg.DataDir + `

# Contract identity and fee collector
contract.account = ` + cfg.Contract.Account + `
contract.fee_account = ` + cfg.Contract.FeeAccount + `

# Token symbols as "precision,CODE"
contract.primary = ` + cfg.Contract.PrimarySymbol + `
contract.secondary = ` + cfg.Contract.SecondarySymbol + `

# Resource marketplace
market.account = ` + cfg.Market.Account + `
market.rate = ` + strconv.FormatInt(cfg.Market.BytesPerToken, 10) + `

# Logging: debug, info, warn, error
log.level = ` + cfg.Log.Level + `
# log.file =
# log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
