// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

var otelEnvKeys = []string{
	"OTEL_SERVICE_NAME",
	"OTEL_SERVICE_VERSION",
	"OTEL_EXPORTER_OTLP_PROTOCOL",
	"OTEL_EXPORTER_OTLP_ENDPOINT",
	"OTEL_EXPORTER_OTLP_INSECURE",
	"OTEL_TRACES_EXPORTER",
	"OTEL_TRACES_SAMPLE_RATIO",
	"OTEL_METRICS_EXPORTER",
	"OTEL_LOGS_EXPORTER",
}

func clearOTelEnv(t *testing.T) {
	t.Helper()
	for _, key := range otelEnvKeys {
		t.Setenv(key, "")
	}
}

// disabledOTelConfig is what the admin server runs with when no collector is configured.
func disabledOTelConfig() OTelConfig {
	return OTelConfig{
		ServiceName:       defaultServiceName,
		Protocol:          OTelProtocolGRPC,
		TracesExporter:    OTelExporterNone,
		TracesSampleRatio: 1.0,
		MetricsExporter:   OTelExporterNone,
		LogsExporter:      OTelExporterNone,
	}
}

func TestOTelConfigFromEnv_ZoomAdminDefaults(t *testing.T) {
	clearOTelEnv(t)

	cfg := OTelConfigFromEnv()

	assert.Equal(t, disabledOTelConfig(), cfg)
	assert.Equal(t, "lfx-v2-zoom-admin", cfg.ServiceName)
}

func TestOTelConfigFromEnv_CollectorOverHTTP(t *testing.T) {
	clearOTelEnv(t)
	t.Setenv("OTEL_SERVICE_NAME", "zoom-admin-staging")
	t.Setenv("OTEL_SERVICE_VERSION", "0.4.0")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://otel.example.org:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")
	t.Setenv("OTEL_TRACES_EXPORTER", "otlp")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "0.25")
	t.Setenv("OTEL_METRICS_EXPORTER", "otlp")
	t.Setenv("OTEL_LOGS_EXPORTER", "otlp")

	assert.Equal(t, OTelConfig{
		ServiceName:       "zoom-admin-staging",
		ServiceVersion:    "0.4.0",
		Protocol:          OTelProtocolHTTP,
		Endpoint:          "https://otel.example.org:4318",
		Insecure:          true,
		TracesExporter:    OTelExporterOTLP,
		TracesSampleRatio: 0.25,
		MetricsExporter:   OTelExporterOTLP,
		LogsExporter:      OTelExporterOTLP,
	}, OTelConfigFromEnv())
}

func TestOTelConfigFromEnv_Normalization(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		value  string
		verify func(t *testing.T, cfg OTelConfig)
	}{
		{"unknown protocol falls back to grpc", "OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf", func(t *testing.T, cfg OTelConfig) {
			assert.Equal(t, OTelProtocolGRPC, cfg.Protocol)
		}},
		{"console exporter is not supported", "OTEL_TRACES_EXPORTER", "console", func(t *testing.T, cfg OTelConfig) {
			assert.Equal(t, OTelExporterNone, cfg.TracesExporter)
		}},
		{"upper case exporter is not recognized", "OTEL_METRICS_EXPORTER", "OTLP", func(t *testing.T, cfg OTelConfig) {
			assert.Equal(t, OTelExporterNone, cfg.MetricsExporter)
		}},
		{"ratio above one", "OTEL_TRACES_SAMPLE_RATIO", "1.5", func(t *testing.T, cfg OTelConfig) {
			assert.Equal(t, 1.0, cfg.TracesSampleRatio)
		}},
		{"negative ratio", "OTEL_TRACES_SAMPLE_RATIO", "-0.1", func(t *testing.T, cfg OTelConfig) {
			assert.Equal(t, 1.0, cfg.TracesSampleRatio)
		}},
		{"ratio not a number", "OTEL_TRACES_SAMPLE_RATIO", "half", func(t *testing.T, cfg OTelConfig) {
			assert.Equal(t, 1.0, cfg.TracesSampleRatio)
		}},
		{"ratio zero samples nothing", "OTEL_TRACES_SAMPLE_RATIO", "0", func(t *testing.T, cfg OTelConfig) {
			assert.Equal(t, 0.0, cfg.TracesSampleRatio)
		}},
		{"insecure needs literal true", "OTEL_EXPORTER_OTLP_INSECURE", "1", func(t *testing.T, cfg OTelConfig) {
			assert.False(t, cfg.Insecure)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearOTelEnv(t)
			t.Setenv(tt.key, tt.value)
			tt.verify(t, OTelConfigFromEnv())
		})
	}
}

func TestEndpointIsURL(t *testing.T) {
	assert.True(t, endpointIsURL("http://localhost:4318"))
	assert.True(t, endpointIsURL("https://otel.example.org"))
	assert.False(t, endpointIsURL("localhost:4317"))
	assert.False(t, endpointIsURL(""))
}

func TestNewResource_ServiceAttributes(t *testing.T) {
	attrs := func(cfg OTelConfig) map[string]string {
		res, err := newResource(cfg)
		require.NoError(t, err)
		out := map[string]string{}
		for _, kv := range res.Attributes() {
			out[string(kv.Key)] = kv.Value.Emit()
		}
		return out
	}

	withVersion := attrs(OTelConfig{ServiceName: defaultServiceName, ServiceVersion: "1.2.0"})
	assert.Equal(t, defaultServiceName, withVersion["service.name"])
	assert.Equal(t, "1.2.0", withVersion["service.version"])
	assert.Equal(t, "opentelemetry", withVersion["telemetry.sdk.name"])
	assert.Equal(t, "go", withVersion["telemetry.sdk.language"])

	withoutVersion := attrs(OTelConfig{ServiceName: defaultServiceName})
	assert.NotContains(t, withoutVersion, "service.version")
}

func TestNewPropagator_CarriesW3CAndJaeger(t *testing.T) {
	fields := newPropagator().Fields()

	for _, field := range []string{"traceparent", "tracestate", "baggage", "uber-trace-id"} {
		assert.Contains(t, fields, field)
	}
}

func TestSetupOTelSDKWithConfig_ExportersDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := SetupOTelSDKWithConfig(ctx, disabledOTelConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.Contains(t, otel.GetTextMapPropagator().Fields(), "uber-trace-id")

	// the serve command may call it from more than one shutdown path
	assert.NoError(t, shutdown(ctx))
	assert.NoError(t, shutdown(ctx))
}

func TestSetupOTelSDK_FromEnv(t *testing.T) {
	clearOTelEnv(t)
	ctx := context.Background()

	shutdown, err := SetupOTelSDK(ctx)
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))
}
