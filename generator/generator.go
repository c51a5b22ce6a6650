package generator

import "context"

// Generator turns a prompt (plus optional prior exchange context) into
// generated text, staying within a hard token budget.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (string, error)
	// Summarize produces a one-sentence gist on the cheaper model.
	Summarize(ctx context.Context, text string) (string, error)
	// ExtractTags returns 1-3 lowercase tags for the text.
	ExtractTags(ctx context.Context, text string) ([]string, error)
}
