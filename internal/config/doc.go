// Package config loads the service configuration and resolves Vault settings.
//
// The configuration file is YAML with ${VAR} and ${VAR:-default}
// substitution. A missing file is not an error: LoadOrDefault returns the
// defaults.
//
// The Vault address and AppRole identifiers are resolved per request through
// a Chain of named sources, first present value wins:
//
//	config   the vault section of the file (swapped on reload)
//	env      VAULT_ADDR, ROLE_ID, SECRET_ID (names configurable)
//	dotenv   an optional KEY=value file
//	default  http://127.0.0.1:8200 for the address only
//
// ReloadableChain rebuilds the env and dotenv sources when their settings change.
package config
