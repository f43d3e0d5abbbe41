// Package config provides configuration management for routecost.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. The configuration carries
// the model catalog, the router path, sustainability assumptions, engine
// defaults, run history storage, the HTTP server and telemetry settings.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("routecost.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("routecost.yaml")
//
// ${VAR} references inside the file are expanded before parsing.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention ROUTECOST_SECTION_FIELD.
// For example:
//
//   - ROUTECOST_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - ROUTECOST_HISTORY_SQLITE_PATH overrides history.sqlite.path
//   - ROUTECOST_SUSTAINABILITY_GRID_KG_CO2E_PER_KWH overrides sustainability.grid_kg_co2e_per_kwh
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// When no models are configured the catalog falls back to DefaultModels.
//
// # Hot Reload
//
// Watcher observes the configuration file with fsnotify and calls
// ReloadConfig after a debounce interval. Components that hold derived state
// (catalog, router path, caches) register with Subscribe:
//
//	config.Subscribe(func(cfg *config.Config) {
//		if err := svc.Apply(cfg); err != nil {
//			slog.Error("rejected configuration reload", "error", err)
//		}
//	})
//
// serve also reloads on SIGHUP through the same path.
//
// # Validation
//
// Validation collects every problem into a single ValidationError. Catalog,
// router and assumption checks reuse the domain validation of packages
// catalog, routers and sustain, so a file that loads is always usable by the
// cost engine.
package config
