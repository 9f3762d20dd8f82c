package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEnvNames() EnvNames {
	return EnvNames{Address: "TEST_VAULT_ADDR", RoleID: "TEST_ROLE_ID", SecretID: "TEST_SECRET_ID"}
}

func TestChain_Precedence(t *testing.T) {
	t.Setenv("TEST_VAULT_ADDR", "http://env:8200")
	t.Setenv("TEST_ROLE_ID", "env-role")
	t.Setenv("TEST_SECRET_ID", "")

	explicit := NewExplicitSource(VaultConfig{SecretID: "cfg-secret"})
	dotenv := NewStaticSource(SourceDotEnv, map[string]string{KeyRoleID: "dot-role", KeySecretID: "dot-secret"})
	chain := Chain{explicit, NewEnvSource(testEnvNames()), dotenv, NewDefaultSource()}

	assert.Equal(t, Resolved{Value: "http://env:8200", Source: SourceEnv}, chain.Resolve(KeyAddress))
	assert.Equal(t, Resolved{Value: "env-role", Source: SourceEnv}, chain.Resolve(KeyRoleID))
	assert.Equal(t, Resolved{Value: "cfg-secret", Source: SourceConfig}, chain.Resolve(KeySecretID))

	explicit.Store(VaultConfig{Address: "http://cfg:8200"})
	assert.Equal(t, Resolved{Value: "http://cfg:8200", Source: SourceConfig}, chain.Resolve(KeyAddress))
	assert.Equal(t, Resolved{Value: "dot-secret", Source: SourceDotEnv}, chain.Resolve(KeySecretID))
}

func TestChain_DefaultAndMissing(t *testing.T) {
	chain := Chain{NewExplicitSource(VaultConfig{}), NewEnvSource(testEnvNames()), NewDefaultSource()}

	addr := chain.Resolve(KeyAddress)
	assert.Equal(t, DefaultVaultAddress, addr.Value)
	assert.Equal(t, SourceDefault, addr.Source)

	role := chain.Resolve(KeyRoleID)
	assert.False(t, role.Present())
	assert.Empty(t, role.Value)
}

func TestEnvSource_EmptyIsAbsent(t *testing.T) {
	t.Setenv("TEST_ROLE_ID", "")
	src := NewEnvSource(testEnvNames())

	_, ok := src.Lookup(KeyRoleID)
	assert.False(t, ok)
	_, ok = src.Lookup("unknown")
	assert.False(t, ok)
	assert.Equal(t, "TEST_ROLE_ID", src.Variable(KeyRoleID))
}

func TestDotEnvSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEST_ROLE_ID=dot-role\n# comment\nTEST_SECRET_ID=\"dot secret\"\n"), 0o600))

	src, err := NewDotEnvSource(path, testEnvNames())
	require.NoError(t, err)

	assert.Equal(t, SourceDotEnv, src.Name())
	v, ok := src.Lookup(KeyRoleID)
	assert.True(t, ok)
	assert.Equal(t, "dot-role", v)
	v, _ = src.Lookup(KeySecretID)
	assert.Equal(t, "dot secret", v)
	_, ok = src.Lookup(KeyAddress)
	assert.False(t, ok)
}

func TestDotEnvSource_MissingFile(t *testing.T) {
	src, err := NewDotEnvSource(filepath.Join(t.TempDir(), "none.env"), testEnvNames())

	require.NoError(t, err)
	_, ok := src.Lookup(KeyRoleID)
	assert.False(t, ok)
}

func TestNewReloadableChain_Order(t *testing.T) {
	vault := DefaultConfig().Vault
	chain, err := NewReloadableChain(NewExplicitSource(vault), vault)
	require.NoError(t, err)

	var names []string
	for _, src := range chain.Chain {
		names = append(names, src.Name())
	}
	assert.Equal(t, []string{SourceConfig, SourceEnv, SourceDotEnv, SourceDefault}, names)
}

func TestExplicitSource_Load(t *testing.T) {
	src := NewExplicitSource(VaultConfig{RoleID: "a"})
	src.Store(VaultConfig{RoleID: "b"})

	assert.Equal(t, "b", src.Load().RoleID)
}

func TestReloadableChain_Reload(t *testing.T) {
	t.Setenv("TEST_VAULT_ADDR", "http://env:8200")
	t.Setenv("ALT_VAULT_ADDR", "http://alt:8200")

	dir := t.TempDir()
	dotenvPath := filepath.Join(dir, "app.env")
	require.NoError(t, os.WriteFile(dotenvPath, []byte("TEST_ROLE_ID=dot-role\n"), 0o600))

	vault := VaultConfig{Env: testEnvNames()}
	explicit := NewExplicitSource(vault)
	chain, err := NewReloadableChain(explicit, vault)
	require.NoError(t, err)

	assert.Equal(t, Resolved{Value: "http://env:8200", Source: SourceEnv}, chain.Resolve(KeyAddress))
	assert.False(t, chain.Resolve(KeyRoleID).Present())

	names := testEnvNames()
	names.Address = "ALT_VAULT_ADDR"
	require.NoError(t, chain.Reload(VaultConfig{SecretPath: "team/db", DotEnvFile: dotenvPath, Env: names}))

	assert.Equal(t, Resolved{Value: "http://alt:8200", Source: SourceEnv}, chain.Resolve(KeyAddress))
	assert.Equal(t, Resolved{Value: "dot-role", Source: SourceDotEnv}, chain.Resolve(KeyRoleID))
	assert.Equal(t, "team/db", explicit.Load().SecretPath)

	_, ok := chain.Env().Lookup(KeyAddress)
	assert.True(t, ok)
}

func TestReloadableChain_ReloadUnreadableDotEnv(t *testing.T) {
	t.Setenv("TEST_VAULT_ADDR", "http://env:8200")

	vault := VaultConfig{SecretPath: "before", Env: testEnvNames()}
	explicit := NewExplicitSource(vault)
	chain, err := NewReloadableChain(explicit, vault)
	require.NoError(t, err)

	names := testEnvNames()
	names.Address = "UNSET_VAULT_ADDR"
	err = chain.Reload(VaultConfig{SecretPath: "after", DotEnvFile: t.TempDir(), Env: names})

	require.Error(t, err)
	assert.Equal(t, "before", explicit.Load().SecretPath)
	assert.Equal(t, Resolved{Value: "http://env:8200", Source: SourceEnv}, chain.Resolve(KeyAddress))
}
