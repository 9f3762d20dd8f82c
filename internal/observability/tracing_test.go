package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewTracer_Disabled(t *testing.T) {
	tracer, err := NewTracer(context.Background(), TracerConfig{ServiceName: "baocreds"}, nil)

	require.NoError(t, err)
	assert.False(t, tracer.Enabled())
	assert.NotNil(t, tracer.Tracer())
	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestNewTracer_EnabledWithoutExporter(t *testing.T) {
	tracer, err := NewTracer(context.Background(), TracerConfig{
		ServiceName:    "baocreds",
		ServiceVersion: "test",
		SamplingRate:   1,
		Enabled:        true,
	}, NopLogger())
	require.NoError(t, err)
	defer func() { _ = tracer.Shutdown(context.Background()) }()

	assert.True(t, tracer.Enabled())

	_, span := tracer.Tracer().Start(context.Background(), "vault.login")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.SpanContext().IsSampled())
}

func TestCreateSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), createSampler(1.5).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), createSampler(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), createSampler(0.25).Description())
}

func TestExporterOptions(t *testing.T) {
	secure := exporterOptions(TracerConfig{OTLPEndpoint: "collector:4317"})
	insecure := exporterOptions(TracerConfig{OTLPEndpoint: "collector:4317", Insecure: true})

	assert.Len(t, insecure, len(secure)+1)
}
