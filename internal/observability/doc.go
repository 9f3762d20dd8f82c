// Package observability provides structured logging, Prometheus metrics and
// OpenTelemetry tracing for the service.
//
// Logging is zap behind the Logger interface. Request and trace ids stored in
// a context with ContextWithRequestID and ContextWithTraceID are attached to
// entries by Logger.WithContext.
//
// Metrics live in a private registry returned by Metrics.Registry so that
// other packages can register their own collectors next to the HTTP server
// metrics. Metrics.Handler serves the registry in the exposition format.
//
// Tracing exports spans over OTLP gRPC when enabled. When disabled, spans are
// created against the global no-op provider and cost nothing.
package observability
