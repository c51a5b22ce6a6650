package store

import (
	"context"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	Location string
	Logger   *zap.Logger
	Context  context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Logger:  zap.NewNop(),
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
