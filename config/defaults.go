package config

// Default returns the default configuration. Identities mirror the intended
// deployment: the contract wraps EOS deposits into WRAM at a 1 byte per
// smallest-unit marketplace rate.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		Contract: ContractConfig{
			Account:         "wrap.token",
			FeeAccount:      "stable.ly",
			PrimarySymbol:   "4,EOS",
			SecondarySymbol: "4,WRAM",
		},
		Market: MarketConfig{
			Account:       "eosio.ram",
			BytesPerToken: 1,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
