package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	vaultapi "github.com/hashicorp/vault/api"
)

// Vault readiness errors.
var (
	ErrVaultUninitialized = errors.New("vault is not initialized")
	ErrVaultSealed        = errors.New("vault is sealed")
)

// NewVaultCheck returns a check that queries sys/health on the address returned by
// address at check time. Standby nodes count as healthy.
func NewVaultCheck(address func() string, httpClient *http.Client) (CheckFunc, error) {
	cfg := vaultapi.DefaultConfig()
	if cfg.Error != nil {
		return nil, cfg.Error
	}
	if httpClient != nil {
		cfg.HttpClient = httpClient
	}
	cfg.MaxRetries = 0

	base, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault health client: %w", err)
	}
	base.ClearToken()

	return func(ctx context.Context) error {
		client, err := base.Clone()
		if err != nil {
			return err
		}
		if err := client.SetAddress(address()); err != nil {
			return fmt.Errorf("invalid vault address: %w", err)
		}

		resp, err := client.Sys().HealthWithContext(ctx)
		if err != nil {
			return fmt.Errorf("vault unreachable: %w", err)
		}
		switch {
		case !resp.Initialized:
			return ErrVaultUninitialized
		case resp.Sealed:
			return ErrVaultSealed
		}
		return nil
	}, nil
}
