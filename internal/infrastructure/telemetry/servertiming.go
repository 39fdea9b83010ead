package telemetry

import (
	"context"

	servertiming "github.com/mitchellh/go-server-timing"
)

// Timing is a running Server-Timing metric. The zero value is a no-op.
type Timing struct {
	metric *servertiming.Metric
}

// Stop ends the measurement
func (t *Timing) Stop() {
	if t != nil && t.metric != nil {
		t.metric.Stop()
	}
}

// StartTiming starts a Server-Timing metric on the request header carried by
// ctx. Without a header in ctx it returns a no-op Timing.
func StartTiming(ctx context.Context, name string, desc ...string) *Timing {
	h := servertiming.FromContext(ctx)
	if h == nil {
		return &Timing{}
	}
	m := h.NewMetric(name)
	if len(desc) > 0 && desc[0] != "" {
		m = m.WithDesc(desc[0])
	}
	return &Timing{metric: m.Start()}
}
