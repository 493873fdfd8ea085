package graphio

import (
	"log/slog"

	"github.com/klauspost/compress/zstd"

	"github.com/hupe1980/poolgraph/internal/resource"
)

type options struct {
	codec      Codec
	zstdLevel  zstd.EncoderLevel
	controller *resource.Controller
	logger     *slog.Logger
}

// Option configures Export and Import.
type Option func(*options)

// WithCodec sets the body compression used by Export. Import reads the codec
// from the stream header.
func WithCodec(c Codec) Option {
	return func(o *options) {
		o.codec = c
	}
}

// WithZstdLevel sets the Zstandard encoder level.
func WithZstdLevel(level zstd.EncoderLevel) Option {
	return func(o *options) {
		o.zstdLevel = level
	}
}

// WithIOLimit throttles the stream to bytesPerSec.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		if bytesPerSec > 0 {
			o.controller = resource.NewController(resource.Config{IOLimitBytesPerSec: bytesPerSec})
		}
	}
}

// WithController shares a resource controller whose IO limit throttles the stream.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func applyOptions(opts []Option) options {
	o := options{
		codec:     CodecZSTD,
		zstdLevel: zstd.SpeedDefault,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}
