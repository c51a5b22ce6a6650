package anthropic

import (
	"context"
	"errors"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cameronkarthik/synapse-mind-vault-main/generator"
)

const (
	defaultModel        = "claude-sonnet-4-20250514"
	defaultSummaryModel = "claude-3-5-haiku-latest"

	responseMaxTokens = 1500
	summaryMaxTokens  = 60
	tagsMaxTokens     = 30
)

type anthropicGenerator struct {
	options generator.Options
	client  *anthropic.Client
}

func (g *anthropicGenerator) Generate(ctx context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
	if len(g.options.ApiKey) == 0 {
		return "", generator.ErrMissingApiKey
	}

	options := generator.NewGenerateOptions(opts...)

	used := generator.EstimateTokens(g.options.Persona)

	selected, used := generator.SelectExchanges(options.Exchanges, used, g.options.MaxTokens)

	prompt, err := generator.FitPrompt(prompt, used, g.options.MaxTokens)
	if err != nil {
		return "", err
	}

	var messages []anthropic.MessageParam
	for i, text := range selected {
		if i%2 == 0 {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
		} else {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
		}
	}

	// The persona rides as a prefix on the final user turn.
	fullPrompt := g.options.Persona + "\n\n" + prompt
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(fullPrompt)))

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model(options)),
		MaxTokens: responseMaxTokens,
		Messages:  messages,
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", &generator.GenerationError{Provider: "anthropic", Err: err}
	}

	return extractText(rsp)
}

func (g *anthropicGenerator) Summarize(ctx context.Context, text string) (string, error) {
	return g.instruct(
		ctx,
		"Generate a concise 1-sentence summary (max 15 words) of the following text:",
		text,
		summaryMaxTokens,
	)
}

func (g *anthropicGenerator) ExtractTags(ctx context.Context, text string) ([]string, error) {
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

func (g *anthropicGenerator) instruct(ctx context.Context, instruction string, text string, maxTokens int64) (string, error) {
	if len(g.options.ApiKey) == 0 {
		return "", generator.ErrMissingApiKey
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.summaryModel()),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(instruction + "\n\n" + text)),
		},
	}

	rsp, err := g.client.Messages.New(ctx, req)
	if err != nil {
		return "", &generator.GenerationError{Provider: "anthropic", Err: err}
	}

	return extractText(rsp)
}

func (g *anthropicGenerator) model(options generator.GenerateOptions) string {
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

func (g *anthropicGenerator) summaryModel() string {
	if len(g.options.SummaryModel) > 0 {
		return g.options.SummaryModel
	}
	return defaultSummaryModel
}

func extractText(rsp *anthropic.Message) (string, error) {
	var b strings.Builder
	for _, content := range rsp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	result := b.String()
	if len(result) == 0 {
		return "", &generator.GenerationError{Provider: "anthropic", Err: errors.New("no response from Anthropic")}
	}

	return result, nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &anthropicGenerator{
		options: options,
	}

	clientOpts := []anthropicopt.RequestOption{
		anthropicopt.WithAPIKey(options.ApiKey),
	}
	if len(options.Location) > 0 {
		clientOpts = append(clientOpts, anthropicopt.WithBaseURL(options.Location))
	}

	client := anthropic.NewClient(clientOpts...)

	g.client = &client

	return g
}
