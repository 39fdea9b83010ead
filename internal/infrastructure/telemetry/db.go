package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSlowQueryThreshold = 200 * time.Millisecond
	startedAtKey              = "telemetry:started_at"
)

// Attribute keys shared by the HTTP and database instruments
var (
	AttrHTTPMethod     = attribute.Key("http.request.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.response.status_code")
	AttrDBOperation    = attribute.Key("db.operation.name")
	AttrDBTable        = attribute.Key("db.collection.name")
	AttrDBSlowQuery    = attribute.Key("db.slow_query")
)

// Histogram buckets in seconds
var (
	HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	DBDurationBuckets   = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
)

// InstrumentGorm adds otelgorm tracing, query duration metrics with slow
// query marking, and connection pool gauges to db
func InstrumentGorm(db *gorm.DB, cfg config.TelemetryConfig, meter metric.Meter, logger *zap.Logger) error {
	if cfg.Enabled && cfg.DBTraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("storefront")}
		if !cfg.DBLogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("register otelgorm: %w", err)
		}
	}

	thresh := cfg.DBSlowQueryThresh
	if thresh <= 0 {
		thresh = defaultSlowQueryThreshold
	}
	q, err := newQueryTimer(meter, thresh)
	if err != nil {
		return err
	}
	if err := q.register(db); err != nil {
		return err
	}
	if err := registerPoolGauges(db, meter); err != nil {
		return err
	}

	logger.Debug("Database instrumented",
		zap.Bool("tracing", cfg.Enabled && cfg.DBTraceEnabled),
		zap.Duration("slow_query_threshold", thresh))
	return nil
}

type queryTimer struct {
	duration metric.Float64Histogram
	thresh   time.Duration
}

func newQueryTimer(meter metric.Meter, thresh time.Duration) (*queryTimer, error) {
	h, err := meter.Float64Histogram("db.client.operation.duration",
		metric.WithDescription("Duration of database operations"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DBDurationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("create db duration histogram: %w", err)
	}
	return &queryTimer{duration: h, thresh: thresh}, nil
}

func (q *queryTimer) register(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("telemetry:before_create", q.start) },
		func() error { return cb.Create().After("gorm:create").Register("telemetry:after_create", q.finish("insert")) },
		func() error { return cb.Query().Before("gorm:query").Register("telemetry:before_query", q.start) },
		func() error { return cb.Query().After("gorm:query").Register("telemetry:after_query", q.finish("select")) },
		func() error { return cb.Update().Before("gorm:update").Register("telemetry:before_update", q.start) },
		func() error { return cb.Update().After("gorm:update").Register("telemetry:after_update", q.finish("update")) },
		func() error { return cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", q.start) },
		func() error { return cb.Delete().After("gorm:delete").Register("telemetry:after_delete", q.finish("delete")) },
		func() error { return cb.Row().Before("gorm:row").Register("telemetry:before_row", q.start) },
		func() error { return cb.Row().After("gorm:row").Register("telemetry:after_row", q.finish("row")) },
		func() error { return cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", q.start) },
		func() error { return cb.Raw().After("gorm:raw").Register("telemetry:after_raw", q.finish("raw")) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return fmt.Errorf("register query timer: %w", err)
		}
	}
	return nil
}

func (q *queryTimer) start(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (q *queryTimer) finish(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(started)

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		q.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
			AttrDBOperation.String(operation),
			AttrDBTable.String(db.Statement.Table),
		))

		if elapsed >= q.thresh {
			trace.SpanFromContext(ctx).SetAttributes(AttrDBSlowQuery.Bool(true))
		}
	}
}

func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	open, err := meter.Int64ObservableGauge("db.client.connections.open",
		metric.WithDescription("Open database connections"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("db.client.connections.in_use",
		metric.WithDescription("Database connections in use"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.wait_count",
		metric.WithDescription("Total waits for a free connection"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, waits)
	return err
}
