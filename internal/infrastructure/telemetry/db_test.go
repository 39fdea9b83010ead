package telemetry

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint
	Name string
}

func TestInstrumentGorm_RecordsQueryDurations(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	cfg := config.TelemetryConfig{DBSlowQueryThresh: time.Hour}
	require.NoError(t, InstrumentGorm(db, cfg, meter, zap.NewNop()))

	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
	var got []widget
	require.NoError(t, db.Find(&got).Error)

	data := collect(t, reader)

	durations, ok := data["db.client.operation.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	ops := map[string]uint64{}
	for _, dp := range durations.DataPoints {
		op, _ := dp.Attributes.Value(AttrDBOperation)
		ops[op.AsString()] += dp.Count
	}
	assert.Equal(t, uint64(1), ops["insert"])
	assert.Equal(t, uint64(1), ops["select"])

	_, ok = data["db.client.connections.open"].(metricdata.Gauge[int64])
	assert.True(t, ok)
}
