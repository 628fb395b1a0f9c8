// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
// the default `.env` file in the working directory is loaded once per
// process, then `Load` parses the environment into any Go struct using
// field tags. Each successfully loaded configuration type is cached so it
// is only parsed once for the lifetime of the process.
//
// # Usage
//
// Create a struct describing your configuration and annotate its fields
// with `env` tags:
//
//	type MongoConfig struct {
//	    ConnectionURL string `env:"MONGODB_URL,required"`
//	    Database      string `env:"MONGODB_DATABASE" envDefault:"stampkit"`
//	}
//
//	var cfg MongoConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// Subsequent calls to `config.Load(&cfg)` for the same type are served from
// the in-memory cache without re-parsing. `MustLoad` panics on failure and
// suits configuration the process cannot start without.
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with `errors.Is`:
//
//   - `ErrParsingConfig`   – failed to parse env vars into struct.
//   - `ErrConfigNotLoaded` – requested config type has not been loaded yet.
//   - `ErrNilPointer`      – nil pointer passed to `Load`/`MustLoad`.
package config
