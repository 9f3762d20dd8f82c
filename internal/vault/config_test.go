package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentials_Validate(t *testing.T) {
	tests := []struct {
		name    string
		creds   Credentials
		wantErr string
	}{
		{name: "valid", creds: Credentials{RoleID: "r", SecretID: "s"}},
		{name: "both missing", creds: Credentials{}, wantErr: "AppRole credentials not found in configuration or environment"},
		{name: "role missing", creds: Credentials{SecretID: "s"}, wantErr: "roleId"},
		{name: "secret missing", creds: Credentials{RoleID: "r"}, wantErr: "secretId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Getters(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, DefaultAppRoleMountPath, nilCfg.GetAuthMountPath())
	assert.Equal(t, DefaultKVMountPath, nilCfg.GetKVMountPath())
	assert.Equal(t, DefaultTimeout, nilCfg.GetTimeout())

	cfg := &Config{AuthMountPath: "/team-approle/", KVMountPath: "kv/", Timeout: time.Second}
	assert.Equal(t, "team-approle", cfg.GetAuthMountPath())
	assert.Equal(t, "kv", cfg.GetKVMountPath())
	assert.Equal(t, time.Second, cfg.GetTimeout())

	assert.Equal(t, DefaultTimeout, (&Config{Timeout: -1}).GetTimeout())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "approle", cfg.AuthMountPath)
	assert.Equal(t, "secret", cfg.KVMountPath)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestClientType_IsValid(t *testing.T) {
	assert.True(t, ClientHTTP.IsValid())
	assert.True(t, ClientAPI.IsValid())
	assert.False(t, ClientType("grpc").IsValid())
	assert.False(t, ClientType("").IsValid())
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://127.0.0.1:8200", want: "http://127.0.0.1:8200"},
		{in: "https://vault.example.com/", want: "https://vault.example.com"},
		{in: "https://vault.example.com//", want: "https://vault.example.com"},
		{in: "", wantErr: true},
		{in: "vault:8200", wantErr: true},
		{in: "http://", wantErr: true},
		{in: "http://bad host", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := normalizeAddress(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSecretPath(t *testing.T) {
	got, err := normalizeSecretPath("/database/demo/")
	require.NoError(t, err)
	assert.Equal(t, "database/demo", got)

	for _, bad := range []string{"", "/", "a/../b", ".."} {
		_, err := normalizeSecretPath(bad)
		assert.True(t, IsConfigurationError(err), "path %q", bad)
	}
}
