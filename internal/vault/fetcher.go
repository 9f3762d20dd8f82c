package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	vaultapi "github.com/hashicorp/vault/api"
	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/baocreds/internal/observability"
)

const (
	// VaultTokenHeader carries the client token on authenticated requests.
	VaultTokenHeader = "X-Vault-Token"

	// maxResponseBytes caps how much of a Vault response body is read.
	maxResponseBytes = 1 << 20

	tracerName = "github.com/vyrodovalexey/baocreds/internal/vault"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// SecretFetcher performs the AppRole login and KV v2 read exchange.
type SecretFetcher interface {
	// FetchSecret logs in with creds against address and returns the data map stored at secretPath.
	FetchSecret(ctx context.Context, address string, creds Credentials, secretPath string) (map[string]interface{}, error)
}

// FetcherOption is a functional option for configuring a fetcher.
type FetcherOption func(*fetcherOptions)

type fetcherOptions struct {
	httpClient *http.Client
	logger     observability.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// WithHTTPClient sets the HTTP client used for Vault requests.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(o *fetcherOptions) {
		o.httpClient = client
	}
}

// WithLogger sets the logger for the fetcher.
func WithLogger(logger observability.Logger) FetcherOption {
	return func(o *fetcherOptions) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the fetcher.
func WithMetrics(metrics *Metrics) FetcherOption {
	return func(o *fetcherOptions) {
		o.metrics = metrics
	}
}

// WithTracer sets the tracer for the fetcher.
func WithTracer(tracer trace.Tracer) FetcherOption {
	return func(o *fetcherOptions) {
		o.tracer = tracer
	}
}

func applyOptions(cfg *Config, opts []FetcherOption) fetcherOptions {
	o := fetcherOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = NewHTTPClient(cfg.GetTimeout())
	}
	if o.logger == nil {
		o.logger = observability.NopLogger()
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(tracerName)
	}
	return o
}

// NewHTTPClient returns a pooled HTTP client with a fixed request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = timeout
	return client
}

// AppRoleFetcher speaks the Vault HTTP protocol directly.
type AppRoleFetcher struct {
	config     *Config
	httpClient *http.Client
	logger     observability.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// NewAppRoleFetcher creates a fetcher that issues raw HTTP requests.
func NewAppRoleFetcher(cfg *Config, opts ...FetcherOption) *AppRoleFetcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	o := applyOptions(cfg, opts)

	return &AppRoleFetcher{
		config:     cfg,
		httpClient: o.httpClient,
		logger:     o.logger.With(observability.String("component", "vault"), observability.String("client", string(ClientHTTP))),
		metrics:    o.metrics,
		tracer:     o.tracer,
	}
}

// FetchSecret implements SecretFetcher.
func (f *AppRoleFetcher) FetchSecret(
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

	token, err := f.login(ctx, base, creds)
	if err != nil {
		f.logger.Warn("vault login failed", observability.Error(err))
		return nil, err
	}

	data, err = f.read(ctx, base, token, path)
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

// login exchanges the AppRole credentials for a client token.
func (f *AppRoleFetcher) login(ctx context.Context, base string, creds Credentials) (string, error) {
	ctx, span := f.tracer.Start(ctx, "vault.login", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	payload, err := json.Marshal(map[string]string{
		"role_id":   creds.RoleID,
		"secret_id": creds.SecretID,
	})
	if err != nil {
		return "", NewAuthenticationError(0, "failed to encode login request", err)
	}

	loginURL := fmt.Sprintf("%s/v1/auth/%s/login", base, f.config.GetAuthMountPath())
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	status, body, err := f.do(ctx, "login", http.MethodPost, loginURL, payload, header)
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		recordSpanError(span, err)
		return "", NewTransportError("login", "", err)
	}

	secret, parseErr := vaultapi.ParseSecret(bytes.NewReader(body))
	if parseErr != nil {
		err = NewAuthenticationError(status, "Authentication failed: unexpected response", parseErr)
		recordSpanError(span, err)
		return "", err
	}
	if secret == nil || secret.Auth == nil {
		err = NewAuthenticationError(status, withServerErrors("Authentication failed", body), nil)
		recordSpanError(span, err)
		return "", err
	}
	if secret.Auth.ClientToken == "" {
		err = NewAuthenticationError(status, "Authentication failed: no client token in response", nil)
		recordSpanError(span, err)
		return "", err
	}

	return secret.Auth.ClientToken, nil
}

// read fetches the KV v2 secret and unwraps the data.data envelope.
func (f *AppRoleFetcher) read(ctx context.Context, base, token, path string) (map[string]interface{}, error) {
	ctx, span := f.tracer.Start(ctx, "vault.read_secret",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("vault.path", path)),
	)
	defer span.End()

	readURL := fmt.Sprintf("%s/v1/%s/data/%s", base, f.config.GetKVMountPath(), path)
	header := http.Header{}
	header.Set(VaultTokenHeader, token)

	status, body, err := f.do(ctx, "read", http.MethodGet, readURL, nil, header)
	span.SetAttributes(attribute.Int("http.response.status_code", status))
	if err != nil {
		recordSpanError(span, err)
		return nil, NewTransportError("read", path, err)
	}

	secret, parseErr := vaultapi.ParseSecret(bytes.NewReader(body))
	if parseErr != nil {
		err = NewNotFoundError(path, status, "No secrets found: unexpected response", parseErr)
		recordSpanError(span, err)
		return nil, err
	}

	data, ok := extractKV2Data(secret)
	if !ok {
		err = NewNotFoundError(path, status, withServerErrors("No secrets found", body), nil)
		recordSpanError(span, err)
		return nil, err
	}

	return data, nil
}

// do issues a single request and returns the status code and body.
// Only transport level failures are returned as errors.
func (f *AppRoleFetcher) do(
	ctx context.Context,
	op, method, target string,
	payload []byte,
	header http.Header,
) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.config.GetTimeout())
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header = header

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.metrics.RecordRequest(op, false, time.Since(start))
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		f.metrics.RecordRequest(op, false, time.Since(start))
		return resp.StatusCode, nil, err
	}

	f.metrics.RecordRequest(op, resp.StatusCode < http.StatusBadRequest, time.Since(start))
	return resp.StatusCode, body, nil
}

// validateRequest checks all preconditions before any request is made.
func validateRequest(address string, creds Credentials, secretPath string) (base, path string, err error) {
	if err = creds.Validate(); err != nil {
		return "", "", err
	}
	if base, err = normalizeAddress(address); err != nil {
		return "", "", err
	}
	if path, err = normalizeSecretPath(secretPath); err != nil {
		return "", "", err
	}
	return base, path, nil
}

// extractKV2Data returns the inner data map of a KV v2 read response.
func extractKV2Data(secret *vaultapi.Secret) (map[string]interface{}, bool) {
	if secret == nil || secret.Data == nil {
		return nil, false
	}
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok || data == nil {
		return nil, false
	}
	return data, true
}

// withServerErrors appends the errors reported by Vault, if any, to msg.
func withServerErrors(msg string, body []byte) string {
	var resp struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Errors) == 0 {
		return msg
	}
	return msg + ": " + strings.Join(resp.Errors, "; ")
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var _ SecretFetcher = (*AppRoleFetcher)(nil)
