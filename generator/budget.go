package generator

import "strings"

const (
	// DefaultMaxTokens is the hard budget for a single request.
	DefaultMaxTokens = 30000
	// approxCharsPerToken is the character-count approximation of a token.
	approxCharsPerToken = 4
	// contextShare caps how much of the budget prior exchanges may consume.
	contextShare = 0.7
	// promptShare caps the running total once the prompt is added.
	promptShare = 0.9
	// minPromptTokens is the minimum allowance a prompt must have left.
	minPromptTokens = 100
	// maxContextMessages bounds included context to the most recent pairs.
	maxContextMessages = 20

	// TruncationMarker is appended to a prompt cut down to fit the budget.
	TruncationMarker = "... [Content truncated due to token limits]"
)

// EstimateTokens approximates the token count of s as ceil(len/4).
func EstimateTokens(s string) int {
	return (len(s) + approxCharsPerToken - 1) / approxCharsPerToken
}

// SelectExchanges walks the provided context from most recent backward,
// keeping whole user/assistant pairs while they are non-empty, the user side
// is not itself a command, and the running estimate stays under the context
// share of the budget. Included pairs are returned in their original
// chronological order. The second result is the updated running estimate.
func SelectExchanges(exchanges []string, used int, budget int) ([]string, int) {
	var selected []string

	limit := int(float64(budget) * contextShare)

	for i := len(exchanges) - 1; i >= 1 && len(selected) < maxContextMessages; i -= 2 {
		user := exchanges[i-1]
		assistant := exchanges[i]

		if len(user) == 0 || len(assistant) == 0 || strings.HasPrefix(user, "/") {
			continue
		}

		pairTokens := EstimateTokens(user) + EstimateTokens(assistant)
		if used+pairTokens > limit {
			break
		}

		selected = append([]string{user, assistant}, selected...)
		used += pairTokens
	}

	return selected, used
}

// FitPrompt checks whether the prompt pushes the running estimate past the
// prompt share of the budget and truncates it to the remaining allowance if
// so, appending the truncation marker. It fails with ContextTooLargeError
// when even a minimal prompt cannot fit.
func FitPrompt(prompt string, used int, budget int) (string, error) {
	limit := int(float64(budget) * promptShare)

	if used+EstimateTokens(prompt) <= limit {
		return prompt, nil
	}

	available := limit - used
	if available < minPromptTokens {
		return "", &ContextTooLargeError{Used: used, Budget: budget}
	}

	availableChars := available * approxCharsPerToken
	if len(prompt) <= availableChars {
		return prompt, nil
	}

	return prompt[:availableChars] + TruncationMarker, nil
}
