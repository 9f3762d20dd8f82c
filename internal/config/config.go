package config

import (
	"time"
)

// Defaults.
const (
	DefaultConfigPath      = "configs/baocreds.yaml"
	DefaultListenAddress   = ":8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultVaultAddress    = "http://127.0.0.1:8200"
	DefaultSecretPath      = "database/demo"
	DefaultClient          = "http"
	DefaultAuthMountPath   = "approle"
	DefaultKVMountPath     = "secret"
	DefaultVaultTimeout    = 5 * time.Second
	DefaultMetricsPath     = "/metrics"
	DefaultServiceName     = "baocreds"

	DefaultAddressEnv  = "VAULT_ADDR"
	DefaultRoleIDEnv   = "ROLE_ID"
	DefaultSecretIDEnv = "SECRET_ID"
)

// Config is the root configuration of the service.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Vault   VaultConfig   `yaml:"vault" json:"vault"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string   `yaml:"address" json:"address"`
	ReadTimeout     Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout" json:"writeTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`

	// StrictErrorStatus maps fetch error kinds to 4xx/5xx status codes.
	// When false every /db-credentials response is 200.
	StrictErrorStatus bool `yaml:"strictErrorStatus" json:"strictErrorStatus"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// VaultConfig holds the explicit Vault settings. Address and the AppRole
// identifiers left empty here fall through to the environment.
type VaultConfig struct {
	Address  string `yaml:"address" json:"address"`
	RoleID   string `yaml:"roleId" json:"roleId"`
	SecretID string `yaml:"secretId" json:"-"`

	SecretPath    string   `yaml:"secretPath" json:"secretPath"`
	Client        string   `yaml:"client" json:"client"`
	AuthMountPath string   `yaml:"authMountPath" json:"authMountPath"`
	KVMountPath   string   `yaml:"kvMountPath" json:"kvMountPath"`
	Timeout       Duration `yaml:"timeout" json:"timeout"`

	// DotEnvFile is an optional file of KEY=value lines consulted after the process environment.
	DotEnvFile string `yaml:"dotenvFile" json:"dotenvFile"`

	Env EnvNames `yaml:"env" json:"env"`
}

// EnvNames names the environment variables consulted for each setting.
type EnvNames struct {
	Address  string `yaml:"address" json:"address"`
	RoleID   string `yaml:"roleId" json:"roleId"`
	SecretID string `yaml:"secretId" json:"secretId"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
	Insecure     bool    `yaml:"insecure" json:"insecure"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	Path      string `yaml:"path" json:"path"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: true},
		Tracing: TracingConfig{SamplingRate: 1.0},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with defaults. Vault address and
// credentials are never defaulted here; they are resolved per request.
func (c *Config) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = DefaultListenAddress
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(DefaultReadTimeout)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(DefaultWriteTimeout)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = Duration(DefaultShutdownTimeout)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	v := &c.Vault
	if v.SecretPath == "" {
		v.SecretPath = DefaultSecretPath
	}
	if v.Client == "" {
		v.Client = DefaultClient
	}
	if v.AuthMountPath == "" {
		v.AuthMountPath = DefaultAuthMountPath
	}
	if v.KVMountPath == "" {
		v.KVMountPath = DefaultKVMountPath
	}
	if v.Timeout == 0 {
		v.Timeout = Duration(DefaultVaultTimeout)
	}
	if v.Env.Address == "" {
		v.Env.Address = DefaultAddressEnv
	}
	if v.Env.RoleID == "" {
		v.Env.RoleID = DefaultRoleIDEnv
	}
	if v.Env.SecretID == "" {
		v.Env.SecretID = DefaultSecretIDEnv
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultServiceName
	}
}
