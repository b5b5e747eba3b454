// Package config loads, normalizes, and validates labelprint configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks for the
// Shopify and Zebra credentials. A .env file in the working directory is
// loaded before the environment is consulted, so credentials can live next
// to the batch files instead of in config.toml.
//
// Always obtain settings through this package and pass the resulting *Config
// to constructors; no other package reads the environment or config files.
package config
