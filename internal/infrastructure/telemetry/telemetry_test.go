package telemetry

import (
	"testing"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(t.Context(), config.TelemetryConfig{Enabled: false}, "test", zap.NewNop())
	require.NoError(t, err)

	assert.NotNil(t, tel.Meter("storefront"))
	assert.False(t, tel.LogCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, tel.Shutdown(t.Context()))
}

func TestSetup_ProfilingRequiresURL(t *testing.T) {
	tel := &Telemetry{logger: zap.NewNop()}

	err := tel.setupProfiler(config.TelemetryConfig{ProfilingEnabled: true})
	assert.ErrorContains(t, err, "pyroscope_url")
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestLevelFilterCore(t *testing.T) {
	core := &levelFilterCore{Core: zapcore.NewNopCore(), minLevel: zapcore.WarnLevel}
	assert.False(t, core.Enabled(zapcore.InfoLevel))

	inner := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(discard{}), zapcore.DebugLevel)
	core = &levelFilterCore{Core: inner, minLevel: zapcore.WarnLevel}
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
	assert.True(t, core.With(nil).Enabled(zapcore.WarnLevel))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
