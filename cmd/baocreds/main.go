// Package main is the entry point for baocreds.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vyrodovalexey/baocreds/internal/config"
	"github.com/vyrodovalexey/baocreds/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Environment variables read before the configuration file.
const (
	envConfigPath = "BAOCREDS_CONFIG_PATH"
	envLogLevel   = "BAOCREDS_LOG_LEVEL"
	envLogFormat  = "BAOCREDS_LOG_FORMAT"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags(flag.CommandLine, os.Args[1:])

	if flags.showVersion {
		printVersion()
		return
	}

	cfg, fromFile, err := config.LoadOrDefault(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(flags, cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting baocreds",
		observability.String("version", version),
		observability.String("config", flags.configPath),
		observability.Bool("config_file_found", fromFile),
	)

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", observability.Error(err))
	}

	if err := run(ctx, app, flags.configPath, fromFile, logger); err != nil {
		logger.Fatal("server failed", observability.Error(err))
	}
}

// parseFlags parses command line flags. Environment variables supply the defaults.
func parseFlags(fs *flag.FlagSet, args []string) cliFlags {
	configPath := fs.String("config", getEnvOrDefault(envConfigPath, config.DefaultConfigPath),
		"Path to configuration file")
	logLevel := fs.String("log-level", getEnvOrDefault(envLogLevel, ""),
		"Log level (debug, info, warn, error); overrides logging.level")
	logFormat := fs.String("log-format", getEnvOrDefault(envLogFormat, ""),
		"Log format (json, console); overrides logging.format")
	showVersion := fs.Bool("version", false, "Show version information")
	_ = fs.Parse(args)

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("baocreds version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger builds the logger from the logging section, with flags taking precedence.
func initLogger(flags cliFlags, logging config.LoggingConfig) (observability.Logger, error) {
	cfg := observability.LogConfig{
		Level:  logging.Level,
		Format: logging.Format,
		Output: logging.Output,
	}
	if flags.logLevel != "" {
		cfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Format = flags.logFormat
	}
	return observability.NewLogger(cfg)
}
