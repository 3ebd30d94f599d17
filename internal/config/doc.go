// Package config loads service settings from an optional YAML file and
// CARTRIDGE_* environment variables, on top of DefaultConfig.
//
//	cache:
//	  warm_on_startup: true
//	bulk:
//	  parallelism: 8
//	cartridges:
//	  root: cartridges
//	config:
//	  root: config
//	http:
//	  addr: ":8080"
//	persistence:
//	  enabled: false
//	  dsn: transform-audit.db
//
// CARTRIDGE_BULK_PARALLELISM=4 overrides bulk.parallelism.
package config
