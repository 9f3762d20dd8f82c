package server

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/baocreds/internal/config"
	"github.com/vyrodovalexey/baocreds/internal/health"
	"github.com/vyrodovalexey/baocreds/internal/observability"
	"github.com/vyrodovalexey/baocreds/internal/vault"
)

// Env presence values reported by /config.
const (
	envPresent = "present"
	envMissing = "missing"
)

// HandlerOptions wires the dependencies of Handler.
type HandlerOptions struct {
	Fetcher  vault.SecretFetcher
	Chain    config.Chain
	Explicit *config.ExplicitSource
	Env      config.Source
	Checker  *health.Checker
	Client   vault.ClientType
	Logger   observability.Logger

	StrictErrorStatus bool
}

// Handler serves the service endpoints.
type Handler struct {
	fetcher  vault.SecretFetcher
	chain    config.Chain
	explicit *config.ExplicitSource
	env      config.Source
	checker  *health.Checker
	client   vault.ClientType
	logger   observability.Logger
	strict   atomic.Bool
}

// NewHandler creates a Handler.
func NewHandler(opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger()
	}
	if opts.Checker == nil {
		opts.Checker = health.NewChecker("")
	}

	h := &Handler{
		fetcher:  opts.Fetcher,
		chain:    opts.Chain,
		explicit: opts.Explicit,
		env:      opts.Env,
		checker:  opts.Checker,
		client:   opts.Client,
		logger:   opts.Logger.With(observability.String("component", "handler")),
	}
	h.strict.Store(opts.StrictErrorStatus)
	return h
}

// SetStrictErrorStatus switches between always-200 and kind-mapped error statuses.
func (h *Handler) SetStrictErrorStatus(strict bool) {
	h.strict.Store(strict)
}

// Register adds the service routes to r.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/", h.home)
	r.GET("/health", h.health)
	r.GET("/ready", h.ready)
	r.GET("/config", h.config)
	r.GET("/db-credentials", h.dbCredentials)
}

func (h *Handler) home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "OpenBao AppRole Demo",
		"status":  "running",
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, h.checker.Health())
}

func (h *Handler) ready(c *gin.Context) {
	resp := h.checker.Readiness(c.Request.Context())

	status := http.StatusOK
	if resp.Status != health.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// config reports where settings come from. Secret values are never included.
func (h *Handler) config(c *gin.Context) {
	addr := h.chain.Resolve(config.KeyAddress)
	explicit := h.explicit.Load()

	c.JSON(http.StatusOK, gin.H{
		"vault_url":            addr.Value,
		"vault_url_source":     addr.Source,
		"role_id_configured":   explicit.RoleID != "",
		"secret_id_configured": explicit.SecretID != "",
		"env_role_id":          h.envPresence(config.KeyRoleID),
		"env_secret_id":        h.envPresence(config.KeySecretID),
		"secret_path":          explicit.SecretPath,
		"client":               string(h.client),
	})
}

func (h *Handler) envPresence(key string) string {
	if h.env == nil {
		return envMissing
	}
	if _, ok := h.env.Lookup(key); ok {
		return envPresent
	}
	return envMissing
}

func (h *Handler) dbCredentials(c *gin.Context) {
	ctx := c.Request.Context()

	creds := vault.Credentials{
		RoleID:   h.chain.Resolve(config.KeyRoleID).Value,
		SecretID: h.chain.Resolve(config.KeySecretID).Value,
	}
	address := h.chain.Resolve(config.KeyAddress).Value
	path := h.explicit.Load().SecretPath

	data, err := h.fetcher.FetchSecret(ctx, address, creds, path)
	if err != nil {
		h.writeFetchError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

func (h *Handler) writeFetchError(c *gin.Context, err error) {
	kind, message := kindInternal, "internal error"

	var fetchErr *vault.FetchError
	if errors.As(err, &fetchErr) {
		kind = string(fetchErr.Kind)
		message = fetchErr.Message
	}

	h.logger.WithContext(c.Request.Context()).Warn("secret fetch failed",
		observability.String("type", kind),
		observability.Error(err),
	)

	_ = c.Error(err)
	c.JSON(errorStatus(vault.Kind(kind), h.strict.Load()), gin.H{
		"error": message,
		"type":  kind,
	})
}
