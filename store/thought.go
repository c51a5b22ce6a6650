package store

import (
	"strings"
	"time"
)

// Thought is the unit of persistence and display: one user input paired with
// the response produced for it.
type Thought struct {
	// Id is assigned by the store; zero until the record has been persisted.
	Id int64 `json:"id,omitempty"`
	// Timestamp is the creation instant. It doubles as the business key for
	// matching and as the sort key, and never changes once the record is
	// visible.
	Timestamp time.Time `json:"timestamp"`
	Input     string    `json:"input"`
	// Output is the produced response. Empty string means the response has
	// not arrived yet.
	Output  string   `json:"output"`
	Tags    []string `json:"tags,omitempty"`
	Summary string   `json:"summary,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Pending reports whether the thought is still awaiting its response.
func (t Thought) Pending() bool {
	return len(t.Output) == 0
}

// HasTag reports whether the tag set contains the exact given tag.
func (t Thought) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with the receiver.
func (t Thought) Clone() Thought {
	cpy := t
	if t.Tags != nil {
		cpy.Tags = make([]string, len(t.Tags))
		copy(cpy.Tags, t.Tags)
	}
	return cpy
}

// MatchesContent reports whether the case-insensitive query occurs in the
// input, output, or summary.
func (t Thought) MatchesContent(query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Input), q) ||
		strings.Contains(strings.ToLower(t.Output), q) ||
		strings.Contains(strings.ToLower(t.Summary), q)
}
