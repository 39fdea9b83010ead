package telemetry

import (
	"context"
	"testing"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTiming_WithoutHeaderIsNoop(t *testing.T) {
	timing := StartTiming(context.Background(), "db")

	require.NotNil(t, timing)
	assert.NotPanics(t, timing.Stop)

	var nilTiming *Timing
	assert.NotPanics(t, nilTiming.Stop)
}

func TestStartTiming_RecordsMetric(t *testing.T) {
	h := &servertiming.Header{}
	ctx := servertiming.NewContext(context.Background(), h)

	StartTiming(ctx, "cache", "product cache").Stop()
	StartTiming(ctx, "db").Stop()

	require.Len(t, h.Metrics, 2)
	assert.Equal(t, "cache", h.Metrics[0].Name)
	assert.Equal(t, "product cache", h.Metrics[0].Desc)
	assert.Equal(t, "db", h.Metrics[1].Name)
	assert.Contains(t, h.String(), "cache")
}
