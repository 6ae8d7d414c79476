package featprep

import (
	"github.com/featprep/featprep/codec"
	"github.com/featprep/featprep/persistence"
	"github.com/featprep/featprep/resource"
)

type options struct {
	codec            codec.Codec
	compression      string
	metricsCollector MetricsCollector
	logger           *Logger
	controller       *resource.Controller
}

func defaultOptions() options {
	return options{
		codec:            codec.Default,
		compression:      persistence.CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
}

// Option configures pipeline constructor/load behavior.
type Option func(*options)

// WithCodec configures the codec used for encoding model documents.
//
// If nil is passed, codec.Default is used. Loading is unaffected: model
// documents are self-describing and record the codec they were written with.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures the compression applied to saved model
// documents. Accepts persistence.CompressionNone, persistence.CompressionZstd
// or persistence.CompressionLZ4.
func WithCompression(name string) Option {
	return func(o *options) {
		if name == "" {
			name = persistence.CompressionNone
		}
		o.compression = name
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(o *options) {
		if collector == nil {
			collector = NoopMetricsCollector{}
		}
		o.metricsCollector = collector
	}
}

// WithLogger configures structured logging. Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithResourceController bounds the scratch memory and worker parallelism the
// pipeline may consume. A nil controller leaves usage unbounded.
func WithResourceController(controller *resource.Controller) Option {
	return func(o *options) {
		o.controller = controller
	}
}
