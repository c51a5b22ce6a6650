package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/cameronkarthik/synapse-mind-vault-main/generator"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	defaultModel        = "gpt-4o"
	defaultSummaryModel = "gpt-3.5-turbo"

	responseMaxTokens = 1500
	summaryMaxTokens  = 60
	tagsMaxTokens     = 30
)

type openAIGenerator struct {
	options generator.Options
	client  *openai.Client
}

func (g *openAIGenerator) Generate(ctx context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
	if len(g.options.ApiKey) == 0 {
		return "", generator.ErrMissingApiKey
	}

	options := generator.NewGenerateOptions(opts...)

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: g.options.Persona,
		},
	}

	used := generator.EstimateTokens(g.options.Persona)

	selected, used := generator.SelectExchanges(options.Exchanges, used, g.options.MaxTokens)
	for i, text := range selected {
		role := openai.ChatMessageRoleUser
		if i%2 == 1 {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: text})
	}

	prompt, err := generator.FitPrompt(prompt, used, g.options.MaxTokens)
	if err != nil {
		return "", err
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	g.options.Logger.Debug(
		"openai generate",
		zap.Int("messages", len(messages)),
		zap.Int("estimatedTokens", used+generator.EstimateTokens(prompt)),
	)

	req := openai.ChatCompletionRequest{
		Model:       g.model(options),
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   responseMaxTokens,
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrap(err)
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", &generator.GenerationError{Provider: "openai", Err: errors.New("no response from OpenAI")}
	}

	return rsp.Choices[0].Message.Content, nil
}

func (g *openAIGenerator) Summarize(ctx context.Context, text string) (string, error) {
	return g.instruct(
		ctx,
		"Generate a concise 1-sentence summary (max 15 words) of the following text:",
		text,
		summaryMaxTokens,
	)
}

func (g *openAIGenerator) ExtractTags(ctx context.Context, text string) ([]string, error) {
	raw, err := g.instruct(
		ctx,
		"Extract 1-3 relevant tags from the following text. Return only the tags as a comma-separated list with no hashtag symbols, lowercase:",
		text,
		tagsMaxTokens,
	)
	if err != nil {
		return nil, err
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if len(tag) > 0 {
			tags = append(tags, tag)
		}
	}

	if len(tags) > 3 {
		tags = tags[:3]
	}

	return tags, nil
}

func (g *openAIGenerator) instruct(ctx context.Context, instruction string, text string, maxTokens int) (string, error) {
	if len(g.options.ApiKey) == 0 {
		return "", generator.ErrMissingApiKey
	}

	req := openai.ChatCompletionRequest{
		Model: g.summaryModel(),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: instruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	}

	rsp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", wrap(err)
	}

	if len(rsp.Choices) == 0 || len(rsp.Choices[0].Message.Content) == 0 {
		return "", &generator.GenerationError{Provider: "openai", Err: errors.New("no response from OpenAI")}
	}

	return rsp.Choices[0].Message.Content, nil
}

func (g *openAIGenerator) model(options generator.GenerateOptions) string {
	if len(options.Model) > 0 {
		return options.Model
	}
	if options.Cheap {
		return g.summaryModel()
	}
	if len(g.options.Model) > 0 {
		return g.options.Model
	}
	return defaultModel
}

func (g *openAIGenerator) summaryModel() string {
	if len(g.options.SummaryModel) > 0 {
		return g.options.SummaryModel
	}
	return defaultSummaryModel
}

// wrap surfaces the provider's own error message where the API returned one.
func wrap(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &generator.GenerationError{Provider: "openai", Err: errors.New(apiErr.Message)}
	}
	return &generator.GenerationError{Provider: "openai", Err: err}
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &openAIGenerator{
		options: options,
	}

	cfg := openai.DefaultConfig(options.ApiKey)
	if len(options.Location) > 0 {
		cfg.BaseURL = options.Location
	}

	g.client = openai.NewClientWithConfig(cfg)

	return g
}
