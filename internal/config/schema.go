package config

// Config is the full service configuration.
type Config struct {
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Bulk        BulkConfig        `yaml:"bulk" mapstructure:"bulk"`
	Cartridges  CartridgesConfig  `yaml:"cartridges" mapstructure:"cartridges"`
	Config      MasterConfig      `yaml:"config" mapstructure:"config"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Persistence PersistenceConfig `yaml:"persistence" mapstructure:"persistence"`
}

// CacheConfig controls cache warming.
type CacheConfig struct {
	WarmOnStartup bool `yaml:"warm_on_startup" mapstructure:"warm_on_startup"`
}

// BulkConfig controls bulk execution. Parallelism 0 or 1 runs records
// sequentially.
type BulkConfig struct {
	Parallelism int `yaml:"parallelism" mapstructure:"parallelism"`
}

// CartridgesConfig locates the cartridge template tree.
type CartridgesConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// MasterConfig locates the four master configuration documents.
type MasterConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// PersistenceConfig configures the audit sink.
type PersistenceConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	DSN     string `yaml:"dsn" mapstructure:"dsn"`
}
