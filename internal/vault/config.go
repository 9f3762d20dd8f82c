package vault

import (
	"net/url"
	"strings"
	"time"
)

// Defaults for the AppRole exchange.
const (
	// DefaultAddress is used when no address is configured anywhere.
	DefaultAddress = "http://127.0.0.1:8200"

	// DefaultAppRoleMountPath is the default mount path for AppRole auth.
	DefaultAppRoleMountPath = "approle"

	// DefaultKVMountPath is the default mount path of the KV v2 engine.
	DefaultKVMountPath = "secret"

	// DefaultTimeout bounds each of the two Vault requests.
	DefaultTimeout = 5 * time.Second
)

// ClientType selects how the Vault protocol is spoken.
type ClientType string

// Client type constants.
const (
	// ClientHTTP issues the login and read requests directly over net/http.
	ClientHTTP ClientType = "http"

	// ClientAPI delegates the protocol to the hashicorp/vault/api client library.
	ClientAPI ClientType = "api"
)

// IsValid returns true if the client type is known.
func (t ClientType) IsValid() bool {
	switch t {
	case ClientHTTP, ClientAPI:
		return true
	default:
		return false
	}
}

// Credentials holds the AppRole role and secret identifiers.
type Credentials struct {
	RoleID   string
	SecretID string
}

// Validate checks that both identifiers are present.
func (c Credentials) Validate() error {
	switch {
	case c.RoleID == "" && c.SecretID == "":
		return NewConfigurationError("", "AppRole credentials not found in configuration or environment")
	case c.RoleID == "":
		return NewConfigurationError("roleId", "role id is required for approle authentication")
	case c.SecretID == "":
		return NewConfigurationError("secretId", "secret id is required for approle authentication")
	}
	return nil
}

// Config configures a secret fetcher.
type Config struct {
	// AuthMountPath is the mount path of the AppRole auth method.
	// Defaults to "approle".
	AuthMountPath string

	// KVMountPath is the mount path of the KV v2 secrets engine.
	// Defaults to "secret".
	KVMountPath string

	// Timeout bounds each request. Defaults to 5 seconds.
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		AuthMountPath: DefaultAppRoleMountPath,
		KVMountPath:   DefaultKVMountPath,
		Timeout:       DefaultTimeout,
	}
}

// GetAuthMountPath returns the effective AppRole mount path.
func (c *Config) GetAuthMountPath() string {
	if c != nil && c.AuthMountPath != "" {
		return strings.Trim(c.AuthMountPath, "/")
	}
	return DefaultAppRoleMountPath
}

// GetKVMountPath returns the effective KV v2 mount path.
func (c *Config) GetKVMountPath() string {
	if c != nil && c.KVMountPath != "" {
		return strings.Trim(c.KVMountPath, "/")
	}
	return DefaultKVMountPath
}

// GetTimeout returns the effective request timeout.
func (c *Config) GetTimeout() time.Duration {
	if c != nil && c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// normalizeAddress validates a base URL and strips any trailing slash.
func normalizeAddress(address string) (string, error) {
	if address == "" {
		return "", NewConfigurationError("address", "vault address is required")
	}

	u, err := url.Parse(address)
	if err != nil {
		return "", &FetchError{Kind: KindConfiguration, Op: "validate", Message: "address: invalid vault address", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", NewConfigurationError("address", "vault address must use http or https")
	}
	if u.Host == "" {
		return "", NewConfigurationError("address", "vault address must include a host")
	}

	return strings.TrimRight(address, "/"), nil
}

// normalizeSecretPath validates a secret path relative to the KV mount.
func normalizeSecretPath(path string) (string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return "", NewConfigurationError("path", "secret path is required")
	}
	if strings.Contains(path, "..") {
		return "", NewConfigurationError("path", "secret path must not contain '..'")
	}
	return path, nil
}
