package config

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			WarmOnStartup: true,
		},
		Bulk: BulkConfig{
			Parallelism: 0,
		},
		Cartridges: CartridgesConfig{
			Root: "cartridges",
		},
		Config: MasterConfig{
			Root: "config",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
		Persistence: PersistenceConfig{
			Enabled: false,
			DSN:     "transform-audit.db",
		},
	}
}
