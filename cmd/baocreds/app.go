package main

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/baocreds/internal/config"
	"github.com/vyrodovalexey/baocreds/internal/health"
	"github.com/vyrodovalexey/baocreds/internal/observability"
	"github.com/vyrodovalexey/baocreds/internal/server"
	"github.com/vyrodovalexey/baocreds/internal/vault"
)

// application holds all application components.
type application struct {
	server   *server.Server
	handler  *server.Handler
	explicit *config.ExplicitSource
	chain    *config.ReloadableChain
	tracer   *observability.Tracer
	metrics  *observability.Metrics
	config   *config.Config
}

// newApplication wires every component from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger observability.Logger) (*application, error) {
	tracer, err := observability.NewTracer(ctx, observability.TracerConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SamplingRate:   cfg.Tracing.SamplingRate,
		Insecure:       cfg.Tracing.Insecure,
		Enabled:        cfg.Tracing.Enabled,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	var (
		metrics       *observability.Metrics
		vaultMetrics  *vault.Metrics
		healthMetrics *health.Metrics
		metricsPath   string
	)
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		metrics.SetBuildInfo(version, gitCommit, buildTime)
		vaultMetrics = vault.NewMetrics(cfg.Metrics.Namespace, metrics.Registry())
		healthMetrics = health.NewMetrics(cfg.Metrics.Namespace, metrics.Registry())
		metricsPath = cfg.Metrics.Path
	}

	explicit := config.NewExplicitSource(cfg.Vault)
	chain, err := config.NewReloadableChain(explicit, cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("failed to build settings chain: %w", err)
	}

	fetcher, err := newFetcher(cfg.Vault,
		vault.WithLogger(logger),
		vault.WithMetrics(vaultMetrics),
		vault.WithTracer(tracer.Tracer()),
	)
	if err != nil {
		return nil, err
	}

	checker := health.NewChecker(version, health.WithMetrics(healthMetrics))
	vaultCheck, err := health.NewVaultCheck(
		func() string { return chain.Resolve(config.KeyAddress).Value },
		vault.NewHTTPClient(cfg.Vault.Timeout.Duration()),
	)
	if err != nil {
		return nil, err
	}
	checker.RegisterCheck("vault", vaultCheck)

	handler := server.NewHandler(server.HandlerOptions{
		Fetcher:           fetcher,
		Chain:             chain.Chain,
		Explicit:          explicit,
		Env:               chain.Env(),
		Checker:           checker,
		Client:            vault.ClientType(cfg.Vault.Client),
		Logger:            logger,
		StrictErrorStatus: cfg.Server.StrictErrorStatus,
	})

	srv := server.New(server.Config{
		Address:      cfg.Server.Address,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration(),
		WriteTimeout: cfg.Server.WriteTimeout.Duration(),
		MetricsPath:  metricsPath,
	}, handler, server.Options{
		Logger:  logger,
		Metrics: metrics,
		Tracer:  serverTracer(tracer),
	})

	addr := chain.Resolve(config.KeyAddress)
	logger.Info("application initialized",
		observability.String("listen", cfg.Server.Address),
		observability.String("vault_address", addr.Value),
		observability.String("vault_address_source", addr.Source),
		observability.String("client", cfg.Vault.Client),
		observability.String("secret_path", cfg.Vault.SecretPath),
		observability.Bool("strict_error_status", cfg.Server.StrictErrorStatus),
		observability.Bool("metrics", cfg.Metrics.Enabled),
		observability.Bool("tracing", tracer.Enabled()),
	)

	return &application{
		server:   srv,
		handler:  handler,
		explicit: explicit,
		chain:    chain,
		tracer:   tracer,
		metrics:  metrics,
		config:   cfg,
	}, nil
}

// newFetcher creates the fetcher selected by vault.client.
func newFetcher(cfg config.VaultConfig, opts ...vault.FetcherOption) (vault.SecretFetcher, error) {
	fetcherCfg := &vault.Config{
		AuthMountPath: cfg.AuthMountPath,
		KVMountPath:   cfg.KVMountPath,
		Timeout:       cfg.Timeout.Duration(),
	}

	switch vault.ClientType(cfg.Client) {
	case vault.ClientAPI:
		f, err := vault.NewAPIFetcher(fetcherCfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create vault api client: %w", err)
		}
		return f, nil
	case vault.ClientHTTP, "":
		return vault.NewAppRoleFetcher(fetcherCfg, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported vault client %q", cfg.Client)
	}
}

func serverTracer(t *observability.Tracer) trace.Tracer {
	if !t.Enabled() {
		return nil
	}
	return t.Tracer()
}

// applyReload swaps the reloadable settings, including the env variable names
// and the dotenv file. Client, mounts and listener changes need a restart.
func (a *application) applyReload(newCfg *config.Config, logger observability.Logger) {
	old := a.explicit.Load()
	if err := a.chain.Reload(newCfg.Vault); err != nil {
		logger.Error("failed to apply reloaded vault settings", observability.Error(err))
		return
	}
	a.handler.SetStrictErrorStatus(newCfg.Server.StrictErrorStatus)

	if old.Client != newCfg.Vault.Client ||
		old.AuthMountPath != newCfg.Vault.AuthMountPath ||
		old.KVMountPath != newCfg.Vault.KVMountPath ||
		a.config.Server.Address != newCfg.Server.Address {
		logger.Warn("configuration change requires restart to take full effect",
			observability.String("client", newCfg.Vault.Client),
			observability.String("listen", newCfg.Server.Address),
		)
	}
	a.config = newCfg

	logger.Info("configuration reloaded",
		observability.String("secret_path", newCfg.Vault.SecretPath),
		observability.Bool("strict_error_status", newCfg.Server.StrictErrorStatus),
	)
}
