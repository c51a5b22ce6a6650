package http

import (
	"context"

	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	Address string
	Logger  *zap.Logger
	Context context.Context
}

func WithAddress(address string) Option {
	return func(o *Options) {
		o.Address = address
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Address: ":8080",
		Logger:  zap.NewNop(),
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
