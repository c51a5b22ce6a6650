package interpreter

import (
	"strings"

	"github.com/cameronkarthik/synapse-mind-vault-main/store"
)

// FilterMeaningful drops records that are commands, errors, or system
// entries. This shapes display counts and listings only; the records stay in
// the store and the history view untouched.
func FilterMeaningful(thoughts []store.Thought) []store.Thought {
	var meaningful []store.Thought

	for _, t := range thoughts {
		if strings.HasPrefix(strings.TrimSpace(t.Input), "/") {
			continue
		}
		if t.HasTag("error") || t.HasTag("system") {
			continue
		}
		output := strings.ToLower(t.Output)
		if strings.Contains(output, "error:") || strings.Contains(output, "failed to") {
			continue
		}
		meaningful = append(meaningful, t)
	}

	return meaningful
}
