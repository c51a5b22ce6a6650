package interpreter

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	// ApiKey gates the verbs that need a generation credential. Only its
	// presence matters here; the generator holds the credential itself.
	ApiKey  string
	Now     func() time.Time
	Logger  *zap.Logger
	Context context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Now:     time.Now,
		Logger:  zap.NewNop(),
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
