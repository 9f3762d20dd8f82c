package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/joho/godotenv"
)

// Setting keys understood by every Source.
const (
	KeyAddress  = "address"
	KeyRoleID   = "role_id"
	KeySecretID = "secret_id"
)

// Source names reported by Resolve.
const (
	SourceConfig  = "config"
	SourceEnv     = "env"
	SourceDotEnv  = "dotenv"
	SourceDefault = "default"
)

// Source is a named provider of settings. A setting is present when
// Lookup returns a non-empty value.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// Resolved is the outcome of resolving one setting.
type Resolved struct {
	Value  string
	Source string
}

// Present reports whether any source supplied the setting.
func (r Resolved) Present() bool {
	return r.Source != ""
}

// Chain is an ordered list of sources; the first source holding a
// non-empty value for a key wins.
type Chain []Source

// Resolve returns the first present value for key and the name of its source.
func (c Chain) Resolve(key string) Resolved {
	for _, src := range c {
		if v, ok := src.Lookup(key); ok && v != "" {
			return Resolved{Value: v, Source: src.Name()}
		}
	}
	return Resolved{}
}

// ExplicitSource serves the vault section of the configuration file.
// The section can be swapped at runtime by the config watcher.
type ExplicitSource struct {
	vault atomic.Pointer[VaultConfig]
}

// NewExplicitSource creates a source over a copy of v.
func NewExplicitSource(v VaultConfig) *ExplicitSource {
	s := &ExplicitSource{}
	s.Store(v)
	return s
}

// Store replaces the served settings.
func (s *ExplicitSource) Store(v VaultConfig) {
	s.vault.Store(&v)
}

// Load returns the currently served settings.
func (s *ExplicitSource) Load() VaultConfig {
	return *s.vault.Load()
}

// Name implements Source.
func (s *ExplicitSource) Name() string { return SourceConfig }

// Lookup implements Source.
func (s *ExplicitSource) Lookup(key string) (string, bool) {
	v := s.vault.Load()
	switch key {
	case KeyAddress:
		return v.Address, v.Address != ""
	case KeyRoleID:
		return v.RoleID, v.RoleID != ""
	case KeySecretID:
		return v.SecretID, v.SecretID != ""
	}
	return "", false
}

// EnvSource reads settings from environment variables.
type EnvSource struct {
	name   string
	names  map[string]string
	lookup func(string) (string, bool)
}

// NewEnvSource maps keys to the variables in names and reads them from the process environment.
func NewEnvSource(names EnvNames) *EnvSource {
	return &EnvSource{
		name:   SourceEnv,
		names:  envKeys(names),
		lookup: os.LookupEnv,
	}
}

// NewDotEnvSource reads a dotenv file once. A missing file yields an empty source.
func NewDotEnvSource(path string, names EnvNames) (*EnvSource, error) {
	values := map[string]string{}
	if path != "" {
		read, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read dotenv file %s: %w", path, err)
		default:
			values = read
		}
	}

	return &EnvSource{
		name:  SourceDotEnv,
		names: envKeys(names),
		lookup: func(k string) (string, bool) {
			v, ok := values[k]
			return v, ok
		},
	}, nil
}

func envKeys(names EnvNames) map[string]string {
	return map[string]string{
		KeyAddress:  names.Address,
		KeyRoleID:   names.RoleID,
		KeySecretID: names.SecretID,
	}
}

// Name implements Source.
func (s *EnvSource) Name() string { return s.name }

// Variable returns the environment variable consulted for key.
func (s *EnvSource) Variable(key string) string { return s.names[key] }

// Lookup implements Source.
func (s *EnvSource) Lookup(key string) (string, bool) {
	name, ok := s.names[key]
	if !ok || name == "" {
		return "", false
	}
	v, ok := s.lookup(name)
	return v, ok && v != ""
}

// StaticSource serves fixed values.
type StaticSource struct {
	name   string
	values map[string]string
}

// NewStaticSource creates a named source over values.
func NewStaticSource(name string, values map[string]string) *StaticSource {
	return &StaticSource{name: name, values: values}
}

// NewDefaultSource serves the built-in default address.
func NewDefaultSource() *StaticSource {
	return NewStaticSource(SourceDefault, map[string]string{KeyAddress: DefaultVaultAddress})
}

// Name implements Source.
func (s *StaticSource) Name() string { return s.name }

// Lookup implements Source.
func (s *StaticSource) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok && v != ""
}

// ReloadableChain is a Chain whose env and dotenv sources are rebuilt when
// the variable names or the dotenv file change on reload.
type ReloadableChain struct {
	Chain
	explicit *ExplicitSource
	env      *swapSource
	dotenv   *swapSource
}

// NewReloadableChain builds the chain config, env, dotenv, default.
func NewReloadableChain(explicit *ExplicitSource, vault VaultConfig) (*ReloadableChain, error) {
	dotenv, err := NewDotEnvSource(vault.DotEnvFile, vault.Env)
	if err != nil {
		return nil, err
	}

	c := &ReloadableChain{
		explicit: explicit,
		env:      newSwapSource(NewEnvSource(vault.Env)),
		dotenv:   newSwapSource(dotenv),
	}
	c.Chain = Chain{explicit, c.env, c.dotenv, NewDefaultSource()}
	return c, nil
}

// Env returns the process environment source.
func (c *ReloadableChain) Env() Source { return c.env }

// Reload stores vault in the explicit source and rebuilds the env and dotenv
// sources from it. Nothing changes when the dotenv file cannot be read.
func (c *ReloadableChain) Reload(vault VaultConfig) error {
	dotenv, err := NewDotEnvSource(vault.DotEnvFile, vault.Env)
	if err != nil {
		return err
	}

	c.explicit.Store(vault)
	c.env.src.Store(NewEnvSource(vault.Env))
	c.dotenv.src.Store(dotenv)
	return nil
}

type swapSource struct {
	src atomic.Pointer[EnvSource]
}

func newSwapSource(src *EnvSource) *swapSource {
	s := &swapSource{}
	s.src.Store(src)
	return s
}

func (s *swapSource) Name() string { return s.src.Load().Name() }

func (s *swapSource) Lookup(key string) (string, bool) { return s.src.Load().Lookup(key) }
