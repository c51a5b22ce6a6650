package google

import (
	"context"
	"errors"
	"strings"

	"github.com/cameronkarthik/synapse-mind-vault-main/generator"
	"github.com/google/generative-ai-go/genai"
	genaiopt "google.golang.org/api/option"
)

const (
	defaultModel        = "gemini-1.5-pro"
	defaultSummaryModel = "gemini-1.5-flash"
)

type googleGenerator struct {
	options generator.Options
	client  *genai.Client
}

func (g *googleGenerator) Generate(ctx context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
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

	model := g.client.GenerativeModel(g.model(options))
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(1500)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(g.options.Persona)},
	}

	chat := model.StartChat()
	for i, text := range selected {
		role := "user"
		if i%2 == 1 {
			role = "model"
		}
		chat.History = append(chat.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(text)},
		})
	}

	rsp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", &generator.GenerationError{Provider: "google", Err: err}
	}

	return extractText(rsp)
}

func (g *googleGenerator) Summarize(ctx context.Context, text string) (string, error) {
	return g.instruct(
		ctx,
		"Generate a concise 1-sentence summary (max 15 words) of the following text:",
		text,
		60,
	)
}

func (g *googleGenerator) ExtractTags(ctx context.Context, text string) ([]string, error) {
	raw, err := g.instruct(
		ctx,
		"Extract 1-3 relevant tags from the following text. Return only the tags as a comma-separated list with no hashtag symbols, lowercase:",
		text,
		30,
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

func (g *googleGenerator) instruct(ctx context.Context, instruction string, text string, maxTokens int32) (string, error) {
	if len(g.options.ApiKey) == 0 {
		return "", generator.ErrMissingApiKey
	}

	model := g.client.GenerativeModel(g.summaryModel())
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(maxTokens)

	rsp, err := model.GenerateContent(ctx, genai.Text(instruction+"\n\n"+text))
	if err != nil {
		return "", &generator.GenerationError{Provider: "google", Err: err}
	}

	return extractText(rsp)
}

func (g *googleGenerator) model(options generator.GenerateOptions) string {
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

func (g *googleGenerator) summaryModel() string {
	if len(g.options.SummaryModel) > 0 {
		return g.options.SummaryModel
	}
	return defaultSummaryModel
}

func extractText(rsp *genai.GenerateContentResponse) (string, error) {
	if len(rsp.Candidates) == 0 || rsp.Candidates[0].Content == nil || len(rsp.Candidates[0].Content.Parts) == 0 {
		return "", &generator.GenerationError{Provider: "google", Err: errors.New("no response from Google")}
	}

	var b strings.Builder
	for _, part := range rsp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return b.String(), nil
}

func NewGenerator(opts ...generator.Option) generator.Generator {
	options := generator.NewOptions(opts...)

	g := &googleGenerator{
		options: options,
	}

	client, err := genai.NewClient(
		options.Context,
		genaiopt.WithAPIKey(options.ApiKey),
	)
	if err != nil {
		panic(err)
	}

	g.client = client

	return g
}
