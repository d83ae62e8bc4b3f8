package session

import "go.uber.org/zap"

// Option configures session loaders.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger logs file activity to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}

	return o
}
