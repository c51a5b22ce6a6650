// Package reconciler owns the two in-memory views of thought records: the
// current session and the all-time history. It decides what is a duplicate
// versus a new entry and matches asynchronously resolved responses back to
// the record that originated them, so a pending-then-resolved pair always
// converges into one visible entry.
package reconciler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cameronkarthik/synapse-mind-vault-main/store"
	"go.uber.org/zap"
)

const (
	// nearDuplicateWindow is how close two creations with equal input have
	// to be before the second is treated as a retry or double-submit.
	nearDuplicateWindow = 3 * time.Second
	// approxTolerance bounds timestamp drift between the record that
	// originated a request and the record carrying its resolved output.
	approxTolerance = 5 * time.Millisecond
	recencyCacheSize = 10
)

// The thresholds above are behavioral: loosening or tightening them changes
// which submissions are visibly suppressed or converged. Do not tune.

type recentEntry struct {
	timestamp time.Time
	input     string
}

// Reconciler maintains the ordered session and history views. It never
// persists; callers write to the store independently and the in-memory views
// stay the source of truth for rendering regardless of persistence outcome.
type Reconciler struct {
	options Options

	mtx            sync.RWMutex
	current        []store.Thought
	all            []store.Thought
	sessionCleared bool
	recent         []recentEntry
}

// Load populates the history view from the store unconditionally and the
// session view only when history is not hidden.
func (r *Reconciler) Load(ctx context.Context) error {
	if r.options.Store == nil {
		return nil
	}

	loaded, err := r.options.Store.GetAll(ctx)
	if err != nil {
		return err
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.all = append([]store.Thought{}, loaded...)

	if r.options.HideHistory {
		r.current = nil
		r.sessionCleared = true
	} else {
		r.current = append([]store.Thought{}, loaded...)
		r.sessionCleared = false
	}

	r.options.Logger.Debug(
		"loaded thoughts",
		zap.Int("count", len(loaded)),
		zap.Bool("hideHistory", r.options.HideHistory),
	)

	return nil
}

// Add appends the thought to each view it is not already present in. The
// duplicate decision is made per view, so a record that already exists in
// history (loaded at boot) can still enter a cleared session view.
func (r *Reconciler) Add(t store.Thought) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	inAll := r.isDuplicate(r.all, t)
	inCurrent := r.isDuplicate(r.current, t)

	if !inAll && !inCurrent {
		r.recent = append(r.recent, recentEntry{timestamp: t.Timestamp, input: t.Input})
		if len(r.recent) > recencyCacheSize {
			r.recent = r.recent[1:]
		}
	}

	if !inAll {
		r.all = append(r.all, t.Clone())
	} else {
		r.options.Logger.Debug("suppressed duplicate in history", zap.Time("timestamp", t.Timestamp))
	}

	if !inCurrent {
		r.current = append(r.current, t.Clone())
	} else {
		r.options.Logger.Debug("suppressed duplicate in session", zap.Time("timestamp", t.Timestamp))
	}
}

// Update locates the record the incoming thought resolves and replaces it in
// place: exact timestamp first in either view, then an approximate match
// within a few milliseconds where the inputs agree. On an approximate match
// the original stored timestamp is retained so future matching does not
// drift. An update that matches nothing is appended as new; updates are
// never dropped.
func (r *Reconciler) Update(t store.Thought) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	matched := false
	resolved := t.Clone()

	if i := exactIndex(r.current, t.Timestamp); i >= 0 {
		r.current[i] = resolved.Clone()
		matched = true
	}

	if i := exactIndex(r.all, t.Timestamp); i >= 0 {
		r.all[i] = resolved.Clone()
		matched = true
	}

	if !matched {
		if i := approxIndex(r.current, t); i >= 0 {
			// Keep the original timestamp to prevent future mismatches.
			resolved.Timestamp = r.current[i].Timestamp
			r.current[i] = resolved.Clone()
			matched = true
		} else if i := approxIndex(r.all, t); i >= 0 {
			resolved.Timestamp = r.all[i].Timestamp
			r.all[i] = resolved.Clone()
			matched = true
		}

		if matched {
			// Mirror the resolution into the other view so the two stay
			// consistent once the retained timestamp is known.
			if i := exactIndex(r.current, resolved.Timestamp); i >= 0 {
				r.current[i] = resolved.Clone()
			}
			if i := exactIndex(r.all, resolved.Timestamp); i >= 0 {
				r.all[i] = resolved.Clone()
			}
			r.options.Logger.Debug("approximate update match", zap.Time("timestamp", resolved.Timestamp))
		}
	}

	if !matched {
		r.options.Logger.Debug("no update match, appending as new", zap.Time("timestamp", t.Timestamp))
		r.current = append(r.current, resolved.Clone())
		r.all = append(r.all, resolved.Clone())
	}
}

// ClearCurrent empties the session view and marks the session cleared.
// History is untouched.
func (r *Reconciler) ClearCurrent() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.current = nil
	r.sessionCleared = true
}

// Reset drops both views and the recency cache. Used after the store itself
// has been cleared by explicit user action.
func (r *Reconciler) Reset() {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.current = nil
	r.all = nil
	r.recent = nil
	r.sessionCleared = false
}

// Current returns a copy of the session view.
func (r *Reconciler) Current() []store.Thought {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return snapshot(r.current)
}

// All returns a copy of the history view.
func (r *Reconciler) All() []store.Thought {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return snapshot(r.all)
}

func (r *Reconciler) SessionCleared() bool {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return r.sessionCleared
}

// isDuplicate applies the three tests in order of precedence: exact
// timestamp, recency cache, then content plus close timestamp. The recency
// cache catches races that land before the collections have been updated.
func (r *Reconciler) isDuplicate(thoughts []store.Thought, t store.Thought) bool {
	for _, existing := range thoughts {
		if existing.Timestamp.Equal(t.Timestamp) {
			return true
		}
	}

	input := strings.TrimSpace(t.Input)

	for _, rec := range r.recent {
		if strings.TrimSpace(rec.input) == input && within(rec.timestamp, t.Timestamp, nearDuplicateWindow) {
			return true
		}
	}

	for _, existing := range thoughts {
		if strings.TrimSpace(existing.Input) == input && within(existing.Timestamp, t.Timestamp, nearDuplicateWindow) {
			return true
		}
	}

	return false
}

func exactIndex(thoughts []store.Thought, ts time.Time) int {
	for i, existing := range thoughts {
		if existing.Timestamp.Equal(ts) {
			return i
		}
	}
	return -1
}

// approxIndex matches when the timestamps are within tolerance and either
// side's input is empty or both inputs agree after trimming.
func approxIndex(thoughts []store.Thought, t store.Thought) int {
	input := strings.TrimSpace(t.Input)
	for i, existing := range thoughts {
		delta := existing.Timestamp.Sub(t.Timestamp)
		if delta < 0 {
			delta = -delta
		}
		if delta > approxTolerance {
			continue
		}
		existingInput := strings.TrimSpace(existing.Input)
		if len(existingInput) == 0 || len(input) == 0 || existingInput == input {
			return i
		}
	}
	return -1
}

func within(a, b time.Time, window time.Duration) bool {
	delta := a.Sub(b)
	if delta < 0 {
		delta = -delta
	}
	return delta < window
}

func snapshot(thoughts []store.Thought) []store.Thought {
	cpy := make([]store.Thought, 0, len(thoughts))
	for _, t := range thoughts {
		cpy = append(cpy, t.Clone())
	}
	return cpy
}

func New(opts ...Option) *Reconciler {
	options := NewOptions(opts...)

	return &Reconciler{
		options:        options,
		sessionCleared: options.HideHistory,
	}
}
