package vault

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/baocreds/internal/observability"
)

// APIFetcher performs the AppRole exchange through the hashicorp/vault/api client library.
type APIFetcher struct {
	config  *Config
	base    *vaultapi.Client
	logger  observability.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// NewAPIFetcher creates a fetcher backed by a vault/api client.
// The base client is cloned for every call so tokens are never shared between calls.
func NewAPIFetcher(cfg *Config, opts ...FetcherOption) (*APIFetcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	o := applyOptions(cfg, opts)

	apiConfig := vaultapi.DefaultConfig()
	if apiConfig.Error != nil {
		return nil, &FetchError{Kind: KindConfiguration, Op: "init", Message: "failed to read vault environment", Err: apiConfig.Error}
	}
	apiConfig.Address = DefaultAddress
	apiConfig.HttpClient = o.httpClient
	apiConfig.Timeout = cfg.GetTimeout()
	apiConfig.MaxRetries = 0

	base, err := vaultapi.NewClient(apiConfig)
	if err != nil {
		return nil, &FetchError{Kind: KindConfiguration, Op: "init", Message: "failed to create vault client", Err: err}
	}
	base.ClearToken()

	return &APIFetcher{
		config:  cfg,
		base:    base,
		logger:  o.logger.With(observability.String("component", "vault"), observability.String("client", string(ClientAPI))),
		metrics: o.metrics,
		tracer:  o.tracer,
	}, nil
}

// FetchSecret implements SecretFetcher.
func (f *APIFetcher) FetchSecret(
	ctx context.Context,
	address string,
	creds Credentials,
	secretPath string,
) (data map[string]interface{}, err error) {
	defer func() { f.metrics.RecordFetch(err) }()

	base, path, err := validateRequest(address, creds, secretPath)
	if err != nil {
		return nil, err
	}

	client, err := f.base.Clone()
	if err != nil {
		return nil, &FetchError{Kind: KindConfiguration, Op: "init", Message: "failed to clone vault client", Err: err}
	}
	if err := client.SetAddress(base); err != nil {
		return nil, &FetchError{Kind: KindConfiguration, Op: "validate", Message: "address: invalid vault address", Err: err}
	}

	if err := f.login(ctx, client, creds); err != nil {
		f.logger.Warn("vault login failed", observability.Error(err))
		return nil, err
	}

	data, err = f.read(ctx, client, path)
	if err != nil {
		f.logger.Warn("vault secret read failed",
			observability.String("path", path),
			observability.Error(err),
		)
		return nil, err
	}

	f.logger.Debug("secret read",
		observability.String("path", path),
		observability.Int("keys", len(data)),
	)
	return data, nil
}

// login authenticates the cloned client; on success the client carries the token.
func (f *APIFetcher) login(ctx context.Context, client *vaultapi.Client, creds Credentials) error {
	ctx, span := f.tracer.Start(ctx, "vault.login", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	auth, err := approle.NewAppRoleAuth(
		creds.RoleID,
		&approle.SecretID{FromString: creds.SecretID},
		approle.WithMountPath(f.config.GetAuthMountPath()),
	)
	if err != nil {
		return NewConfigurationError("appRole", err.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, f.config.GetTimeout())
	defer cancel()

	start := time.Now()
	_, err = client.Auth().Login(ctx, auth)
	f.metrics.RecordRequest("login", err == nil, time.Since(start))
	if err != nil {
		var classified *FetchError
		if isTransportFailure(err) {
			classified = NewTransportError("login", "", err)
		} else {
			classified = NewAuthenticationError(responseStatus(err), "Authentication failed", err)
		}
		recordSpanError(span, classified)
		return classified
	}

	return nil
}

// read fetches the KV v2 secret with the authenticated client.
func (f *APIFetcher) read(ctx context.Context, client *vaultapi.Client, path string) (map[string]interface{}, error) {
	ctx, span := f.tracer.Start(ctx, "vault.read_secret",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("vault.path", path)),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, f.config.GetTimeout())
	defer cancel()

	start := time.Now()
	secret, err := client.Logical().ReadWithContext(ctx, fmt.Sprintf("%s/data/%s", f.config.GetKVMountPath(), path))
	f.metrics.RecordRequest("read", err == nil, time.Since(start))
	if err != nil {
		var classified *FetchError
		if isTransportFailure(err) {
			classified = NewTransportError("read", path, err)
		} else {
			classified = NewNotFoundError(path, responseStatus(err), "No secrets found", err)
		}
		recordSpanError(span, classified)
		return nil, classified
	}

	data, ok := extractKV2Data(secret)
	if !ok {
		err = NewNotFoundError(path, 0, "No secrets found", nil)
		recordSpanError(span, err)
		return nil, err
	}

	return data, nil
}

// isTransportFailure reports whether err came from the network rather than a Vault response.
func isTransportFailure(err error) bool {
	var respErr *vaultapi.ResponseError
	if errors.As(err, &respErr) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// responseStatus extracts the HTTP status from a vault/api response error.
func responseStatus(err error) int {
	var respErr *vaultapi.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	return 0
}

var _ SecretFetcher = (*APIFetcher)(nil)
