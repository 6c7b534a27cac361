package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestTLSConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{
			name:        "disabled",
			cfg:         Config{},
			expectError: false,
		},
		{
			name:        "TLS with insecure skip verify",
			cfg:         Config{Enabled: true, Endpoint: "localhost:4317", TLSInsecure: true},
			expectError: false,
		},
		{
			name:        "TLS with missing CA certificate",
			cfg:         Config{Enabled: true, Endpoint: "localhost:4317", TLSCAPath: "/path/to/ca.crt"},
			expectError: true,
		},
		{
			name:        "plaintext",
			cfg:         Config{Enabled: true, Endpoint: "localhost:4317"},
			expectError: false,
		},
		{
			name:        "missing endpoint",
			cfg:         Config{Enabled: true},
			expectError: true,
		},
		{
			name:        "unknown exporter",
			cfg:         Config{Enabled: true, Exporter: "zipkin"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })
			provider, err := NewTracingProvider(tt.cfg)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Enabled, provider.IsEnabled())
			require.NoError(t, provider.Stop(context.Background()))
		})
	}
}

func TestStdoutExporterWritesSpans(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	var buf bytes.Buffer
	provider, err := NewTracingProvider(Config{Enabled: true, Exporter: ExporterStdout, Writer: &buf})
	require.NoError(t, err)

	_, span := provider.GetTracer("test").Start(context.Background(), "scenario.case")
	span.End()
	require.NoError(t, provider.Stop(context.Background()))

	assert.Contains(t, buf.String(), `"Name": "scenario.case"`)
	assert.Contains(t, buf.String(), "pagecheck")
}
