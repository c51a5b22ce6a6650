package reconciler

import (
	"context"

	"github.com/cameronkarthik/synapse-mind-vault-main/store"
	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	Store store.Store
	// HideHistory starts the session view empty even though history loads.
	HideHistory bool
	Logger      *zap.Logger
	Context     context.Context
}

func WithStore(st store.Store) Option {
	return func(o *Options) {
		o.Store = st
	}
}

func WithHideHistory(hide bool) Option {
	return func(o *Options) {
		o.HideHistory = hide
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
