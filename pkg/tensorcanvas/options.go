package tensorcanvas

import (
	"log/slog"

	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/backend"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/layout"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/observability"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/op"
	"github.com/randalmurphal/tensorcanvas/pkg/tensorcanvas/valuestore"
)

// builderConfig holds configuration for a Builder.
type builderConfig struct {
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
	layout         layout.Layout
	registry       *op.Registry
	values         valuestore.Store
}

// defaultBuilderConfig returns the default builder configuration.
func defaultBuilderConfig() builderConfig {
	return builderConfig{
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		layout:   layout.Default(),
		registry: op.New(),
	}
}

// Option configures a Builder.
type Option func(*builderConfig)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *builderConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *builderConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans for Compile and Run using the
// global tracer provider.
func WithTracing(enabled bool) Option {
	return func(c *builderConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithLayout sets the node geometry used for hit testing and rendering.
func WithLayout(l layout.Layout) Option {
	return func(c *builderConfig) {
		c.layout = l
	}
}

// WithRegistry sets the operation registry.
func WithRegistry(r *op.Registry) Option {
	return func(c *builderConfig) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithValueStore keeps every bound variable's value after each Run.
func WithValueStore(s valuestore.Store) Option {
	return func(c *builderConfig) {
		c.values = s
	}
}

// placeConfig holds per-placement settings.
type placeConfig struct {
	shape backend.Shape
}

// PlaceOption configures a single placement.
type PlaceOption func(*placeConfig)

// WithShape overrides the output shape of a Variable or Input placement.
// Place panics if the operation infers its shape or the shape is not positive.
func WithShape(shape backend.Shape) PlaceOption {
	return func(c *placeConfig) {
		c.shape = shape
	}
}
