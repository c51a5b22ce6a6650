package generator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronkarthik/synapse-mind-vault-main/generator"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, generator.EstimateTokens(""))
	assert.Equal(t, 1, generator.EstimateTokens("abc"))
	assert.Equal(t, 1, generator.EstimateTokens("abcd"))
	assert.Equal(t, 2, generator.EstimateTokens("abcde"))
}

func TestSelectExchangesKeepsChronologicalOrder(t *testing.T) {
	exchanges := []string{
		"first question", "first answer",
		"second question", "second answer",
	}

	selected, used := generator.SelectExchanges(exchanges, 0, generator.DefaultMaxTokens)

	assert.Equal(t, exchanges, selected)
	assert.Positive(t, used)
}

func TestSelectExchangesSkipsCommandsAndEmptyPairs(t *testing.T) {
	exchanges := []string{
		"keep me", "kept answer",
		"/recall #work", "Found 3 thoughts",
		"pending question", "",
	}

	selected, _ := generator.SelectExchanges(exchanges, 0, generator.DefaultMaxTokens)

	assert.Equal(t, []string{"keep me", "kept answer"}, selected)
}

func TestSelectExchangesStopsAtBudgetShare(t *testing.T) {
	big := strings.Repeat("x", 2000)
	exchanges := []string{
		"old question", "old answer",
		big, big,
	}

	// Budget of 1000 tokens leaves a 700-token context share; the most recent
	// pair alone estimates at 1000 tokens, so nothing fits beyond it and the
	// walk stops before reaching the older pair.
	selected, used := generator.SelectExchanges(exchanges, 0, 1000)

	assert.Empty(t, selected)
	assert.Zero(t, used)
}

func TestSelectExchangesCapsMessageCount(t *testing.T) {
	var exchanges []string
	for n := 0; n < 30; n++ {
		exchanges = append(exchanges, "q", "a")
	}

	selected, _ := generator.SelectExchanges(exchanges, 0, generator.DefaultMaxTokens)

	assert.Len(t, selected, 20)
}

func TestFitPromptPassesThroughWhenUnderBudget(t *testing.T) {
	prompt := "short prompt"

	fitted, err := generator.FitPrompt(prompt, 0, generator.DefaultMaxTokens)

	require.NoError(t, err)
	assert.Equal(t, prompt, fitted)
}

func TestFitPromptTruncatesWithMarker(t *testing.T) {
	// 1000-token budget: the prompt share is 900 tokens, so an oversized
	// prompt is cut to 3600 characters plus the marker.
	prompt := strings.Repeat("y", 5000)

	fitted, err := generator.FitPrompt(prompt, 0, 1000)

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(fitted, generator.TruncationMarker))
	assert.Equal(t, 3600+len(generator.TruncationMarker), len(fitted))
}

func TestFitPromptFailsWhenAllowanceTooSmall(t *testing.T) {
	prompt := strings.Repeat("z", 1000)

	_, err := generator.FitPrompt(prompt, 850, 1000)

	var tooLarge *generator.ContextTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, 850, tooLarge.Used)
	assert.Equal(t, 1000, tooLarge.Budget)
}
