package synapse

import (
	"context"
	"time"

	"github.com/cameronkarthik/synapse-mind-vault-main/settings"
	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	ApiKey string
	// HideHistory starts the session view empty. Overridden by the settings
	// file when one is configured.
	HideHistory bool
	Settings    *settings.File
	Logger      *zap.Logger
	Now         func() time.Time
	Context     context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithHideHistory(hide bool) Option {
	return func(o *Options) {
		o.HideHistory = hide
	}
}

func WithSettings(file *settings.File) Option {
	return func(o *Options) {
		o.Settings = file
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Logger:  zap.NewNop(),
		Now:     time.Now,
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
