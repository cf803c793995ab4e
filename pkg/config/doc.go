// Package config loads Infrasync client configuration from the environment
// and from the optional per-user profile file.
//
// Environment variables are parsed into tagged structs via caarlos0/env,
// after a best-effort load of a local .env file. Each unique struct type is
// parsed once per process and cached, so packages can call Load for the
// config type they care about without coordinating initialization order.
//
//	var cfg config.API
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
//
// The CLI additionally merges a YAML profile (~/.infrasync.yaml) on top of
// environment defaults; see LoadProfile.
package config
