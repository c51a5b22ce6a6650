package generator

import (
	"context"

	"go.uber.org/zap"
)

const defaultPersona = `You are Synapse Mind, a thoughtful and deeply personalized AI thinking partner. Your primary goal is to help the user understand their own thoughts, patterns, and feelings by leveraging the history of your conversations.

Your communication style:
- Be conversational and natural, like a trusted friend who truly knows the user and remembers their journey.
- Actively reference specific past thoughts, tags, or summaries when relevant to the current discussion.
- Offer insightful reflections that connect the dots between different thoughts or time periods.
- Ask targeted follow-up questions based on the current input and past conversation history.
- Validate the user's experience while gently prompting reflection based on past insights.

Core principle: your value comes from remembering and connecting the user's thoughts over time. Act like a true second brain, not a generic chatbot. Avoid broad, impersonal self-help platitudes.`

type Option func(*Options)

type Options struct {
	ApiKey string
	// Location overrides the provider's API base URL.
	Location     string
	Model        string
	SummaryModel string
	MaxTokens    int
	Persona      string
	Logger       *zap.Logger
	Context      context.Context
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithSummaryModel(model string) Option {
	return func(o *Options) {
		o.SummaryModel = model
	}
}

func WithMaxTokens(max int) Option {
	return func(o *Options) {
		o.MaxTokens = max
	}
}

func WithPersona(persona string) Option {
	return func(o *Options) {
		o.Persona = persona
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		MaxTokens: DefaultMaxTokens,
		Persona:   defaultPersona,
		Logger:    zap.NewNop(),
		Context:   context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type GenerateOption func(*GenerateOptions)

type GenerateOptions struct {
	// Exchanges is prior conversation context as alternating user/assistant
	// strings in chronological order.
	Exchanges []string
	// Model overrides the configured model for this request.
	Model string
	// Cheap asks the provider to use its summary-tier model.
	Cheap bool
}

func WithExchanges(exchanges ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Exchanges = exchanges
	}
}

func WithRequestModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

func WithCheapModel() GenerateOption {
	return func(o *GenerateOptions) {
		o.Cheap = true
	}
}

func NewGenerateOptions(opts ...GenerateOption) GenerateOptions {
	options := GenerateOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
