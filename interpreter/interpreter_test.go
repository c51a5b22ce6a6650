package interpreter_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronkarthik/synapse-mind-vault-main/generator"
	"github.com/cameronkarthik/synapse-mind-vault-main/interpreter"
	"github.com/cameronkarthik/synapse-mind-vault-main/store"
	"github.com/cameronkarthik/synapse-mind-vault-main/store/memory"
)

type fakeGenerator struct {
	generateCalls []generateCall
	generateErr   error
	response      string
}

type generateCall struct {
	prompt string
	cheap  bool
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
	options := generator.NewGenerateOptions(opts...)
	g.generateCalls = append(g.generateCalls, generateCall{prompt: prompt, cheap: options.Cheap})
	if g.generateErr != nil {
		return "", g.generateErr
	}
	if len(g.response) > 0 {
		return g.response, nil
	}
	return fmt.Sprintf("response %d", len(g.generateCalls)), nil
}

func (g *fakeGenerator) Summarize(_ context.Context, _ string) (string, error) {
	return "a short gist", nil
}

func (g *fakeGenerator) ExtractTags(_ context.Context, _ string) ([]string, error) {
	return []string{"auto"}, nil
}

func TestExtractCommand(t *testing.T) {
	tests := []struct {
		input   string
		verb    string
		content string
		ok      bool
	}{
		{"/recall #work", "recall", "#work", true},
		{"/summarize last 7 days", "summarize", "last 7 days", true},
		{"  /help  ", "help", "", true},
		{"//", "//", "", true},
		{"// anything", "//", "anything", true},
		{"just a thought", "", "", false},
		{"not /a command", "", "", false},
	}

	for _, tc := range tests {
		verb, content, ok := interpreter.ExtractCommand(tc.input)
		assert.Equal(t, tc.ok, ok, tc.input)
		assert.Equal(t, tc.verb, verb, tc.input)
		assert.Equal(t, tc.content, content, tc.input)
	}
}

func TestUnknownCommand(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{})

	_, err := i.Process(context.Background(), "bogus", "")

	var unknown *interpreter.UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Error(), "/bogus")
}

func TestRecallByTag(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	_, err := st.Save(ctx, store.Thought{
		Timestamp: time.Now(),
		Input:     "project kickoff notes",
		Output:    "Noted.",
		Tags:      []string{"work"},
		Summary:   "Kickoff planning",
	})
	require.NoError(t, err)

	i := interpreter.New(st, &fakeGenerator{})

	out, err := i.Process(ctx, "recall", "#work")
	require.NoError(t, err)
	assert.Contains(t, out, `tag "work"`)
	assert.Contains(t, out, "Kickoff planning")
}

func TestRecallNoResults(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{})

	out, err := i.Process(context.Background(), "recall", "#nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No thoughts found")
}

func TestRecallEmptyContent(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{})

	_, err := i.Process(context.Background(), "recall", "")

	var invalid *interpreter.InvalidCommandFormatError
	require.ErrorAs(t, err, &invalid)
}

func TestRecallFiltersCommandRecords(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	_, err := st.Save(ctx, store.Thought{
		Timestamp: time.Now(),
		Input:     "a real thought about planning",
		Output:    "Good plan.",
	})
	require.NoError(t, err)
	_, err = st.Save(ctx, store.Thought{
		Timestamp: time.Now(),
		Input:     "/recall planning",
		Output:    "Found 1 thoughts...",
	})
	require.NoError(t, err)

	i := interpreter.New(st, &fakeGenerator{})

	out, err := i.Process(ctx, "find", "planning")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 thoughts")
}

func TestSummarizeRequiresApiKey(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{})

	_, err := i.Process(context.Background(), "summarize", "last 7 days")
	assert.ErrorIs(t, err, interpreter.ErrMissingApiKey)
}

func TestSummarizeRequiresTimePeriod(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{}, interpreter.WithApiKey("key"))

	_, err := i.Process(context.Background(), "summarize", "everything please")

	var invalid *interpreter.InvalidCommandFormatError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Error(), "last 7 days")
}

func TestSummarizeDirect(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	for n := 0; n < 5; n++ {
		_, err := st.Save(ctx, store.Thought{
			Timestamp: now.Add(-time.Duration(n) * time.Hour),
			Input:     fmt.Sprintf("thought %d", n),
			Output:    "ok",
		})
		require.NoError(t, err)
	}
	// Outside the window, must not appear in the prompt.
	_, err := st.Save(ctx, store.Thought{
		Timestamp: now.AddDate(0, 0, -10),
		Input:     "ancient thought",
		Output:    "ok",
	})
	require.NoError(t, err)

	gen := &fakeGenerator{response: "your week in review"}
	i := interpreter.New(st, gen,
		interpreter.WithApiKey("key"),
		interpreter.WithClock(func() time.Time { return now }),
	)

	out, err := i.Process(ctx, "summarize", "last 7 days")
	require.NoError(t, err)
	assert.Equal(t, "your week in review", out)

	require.Len(t, gen.generateCalls, 1)
	assert.False(t, gen.generateCalls[0].cheap)
	assert.Contains(t, gen.generateCalls[0].prompt, "thought 3")
	assert.NotContains(t, gen.generateCalls[0].prompt, "ancient thought")
}

func TestSummarizeChunked(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	for n := 0; n < 25; n++ {
		_, err := st.Save(ctx, store.Thought{
			Timestamp: now.Add(-time.Duration(n) * time.Minute),
			Input:     fmt.Sprintf("thought %d", n),
			Output:    "ok",
		})
		require.NoError(t, err)
	}

	gen := &fakeGenerator{}
	i := interpreter.New(st, gen,
		interpreter.WithApiKey("key"),
		interpreter.WithClock(func() time.Time { return now }),
	)

	_, err := i.Process(ctx, "summarize", "last 1 day")
	require.NoError(t, err)

	// 25 records split into chunks of 10 means three cheap chunk calls plus
	// one full-model synthesis call.
	require.Len(t, gen.generateCalls, 4)
	for n := 0; n < 3; n++ {
		assert.True(t, gen.generateCalls[n].cheap, "chunk calls use the cheap model")
	}
	final := gen.generateCalls[3]
	assert.False(t, final.cheap)
	assert.Contains(t, final.prompt, "Chunk 3 Summary")
}

func TestSummarizeChunkFailureUsesPlaceholder(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()
	now := time.Now()

	for n := 0; n < 25; n++ {
		_, err := st.Save(ctx, store.Thought{
			Timestamp: now.Add(-time.Duration(n) * time.Minute),
			Input:     fmt.Sprintf("thought %d", n),
			Output:    "ok",
		})
		require.NoError(t, err)
	}

	gen := &failingChunksGenerator{}
	i := interpreter.New(st, gen, interpreter.WithApiKey("key"))

	out, err := i.Process(ctx, "summarize", "last 1 day")
	require.NoError(t, err, "one bad chunk does not fail the whole summary")
	assert.NotEmpty(t, out)
	assert.Contains(t, gen.finalPrompt, "[Error summarizing chunk 1]")
}

func TestTagSavesThought(t *testing.T) {
	st := memory.NewStore()
	ctx := context.Background()

	gen := &fakeGenerator{response: "An insightful reply."}
	i := interpreter.New(st, gen, interpreter.WithApiKey("key"))

	out, err := i.Process(ctx, "tag", "crypto Bitcoin hit a new high today")
	require.NoError(t, err)
	assert.Equal(t, "An insightful reply.", out)

	saved, err := st.GetByTag(ctx, "crypto")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Bitcoin hit a new high today", saved[0].Input)
	assert.Equal(t, "An insightful reply.", saved[0].Output)
	assert.Equal(t, "a short gist", saved[0].Summary)
}

func TestTagInvalidFormat(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{}, interpreter.WithApiKey("key"))

	_, err := i.Process(context.Background(), "tag", "loneword")

	var invalid *interpreter.InvalidCommandFormatError
	require.ErrorAs(t, err, &invalid)
}

func TestImport(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{})
	ctx := context.Background()

	out, err := i.Process(ctx, "import", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Ready to import")

	out, err = i.Process(ctx, "import", "from:notes.txt tag:reading")
	require.NoError(t, err)
	assert.Contains(t, out, `"notes.txt"`)
	assert.Contains(t, out, "/recall #reading")

	out, err = i.Process(ctx, "import", "from:photo.png type:image")
	require.NoError(t, err)
	assert.Contains(t, out, "Image")
}

func TestHelp(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{})
	ctx := context.Background()

	out, err := i.Process(ctx, "help", "")
	require.NoError(t, err)
	assert.Contains(t, out, "/recall #tag")

	alias, err := i.Process(ctx, "//", "")
	require.NoError(t, err)
	assert.Equal(t, out, alias)
}

func TestNote(t *testing.T) {
	i := interpreter.New(memory.NewStore(), &fakeGenerator{})
	ctx := context.Background()

	out, err := i.Process(ctx, "journal", "today was good")
	require.NoError(t, err)
	assert.Equal(t, "Your journal has been saved.", out)

	_, err = i.Process(ctx, "note", "")
	var invalid *interpreter.InvalidCommandFormatError
	require.ErrorAs(t, err, &invalid)
}

// failingChunksGenerator fails every cheap call and records the final prompt.
type failingChunksGenerator struct {
	finalPrompt string
}

func (g *failingChunksGenerator) Generate(_ context.Context, prompt string, opts ...generator.GenerateOption) (string, error) {
	options := generator.NewGenerateOptions(opts...)
	if options.Cheap {
		return "", errors.New("cheap model unavailable")
	}
	g.finalPrompt = prompt
	return "final summary", nil
}

func (g *failingChunksGenerator) Summarize(_ context.Context, _ string) (string, error) {
	return "", errors.New("unused")
}

func (g *failingChunksGenerator) ExtractTags(_ context.Context, _ string) ([]string, error) {
	return nil, errors.New("unused")
}
