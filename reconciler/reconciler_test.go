package reconciler_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cameronkarthik/synapse-mind-vault-main/reconciler"
	"github.com/cameronkarthik/synapse-mind-vault-main/store"
)

func thoughtAt(ts time.Time, input string) store.Thought {
	return store.Thought{
		Timestamp: ts,
		Input:     input,
		Output:    "...",
	}
}

func TestAddIdempotent(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	r.Add(thoughtAt(ts, "remember the milk"))
	r.Add(thoughtAt(ts, "remember the milk"))

	assert.Len(t, r.Current(), 1)
	assert.Len(t, r.All(), 1)
}

func TestAddSuppressesNearDuplicateInput(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	r.Add(thoughtAt(ts, "double submit"))
	r.Add(thoughtAt(ts.Add(2*time.Second), "double submit"))

	assert.Len(t, r.Current(), 1, "same input within the window is a retry")
	assert.Len(t, r.All(), 1)
}

func TestAddAllowsSameInputOutsideWindow(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	r.Add(thoughtAt(ts, "daily standup"))
	r.Add(thoughtAt(ts.Add(3*time.Second), "daily standup"))

	assert.Len(t, r.Current(), 2, "three seconds apart is deliberate repetition")
	assert.Len(t, r.All(), 2)
}

func TestAddDistinctInputsWithinWindow(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	r.Add(thoughtAt(ts, "first idea"))
	r.Add(thoughtAt(ts.Add(time.Second), "second idea"))

	assert.Len(t, r.Current(), 2)
	assert.Len(t, r.All(), 2)
}

func TestRecencyCacheEvictsOldest(t *testing.T) {
	r := reconciler.New()
	base := time.Now()

	for i := 0; i < 11; i++ {
		r.Add(thoughtAt(base.Add(time.Duration(i)*time.Minute), fmt.Sprintf("entry %d", i)))
	}

	// The first entry has been evicted from the cache, but it still lives in
	// the collections, so a near-duplicate is caught there instead.
	r.Add(thoughtAt(base.Add(time.Second), "entry 0"))

	assert.Len(t, r.All(), 11)
}

func TestUpdateExactTimestampReplacesInBothViews(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	pending := thoughtAt(ts, "what is recursion")
	pending.Output = ""
	r.Add(pending)

	resolved := thoughtAt(ts, "what is recursion")
	resolved.Output = "A function calling itself."
	r.Update(resolved)

	current := r.Current()
	all := r.All()
	require.Len(t, current, 1)
	require.Len(t, all, 1)
	assert.Equal(t, "A function calling itself.", current[0].Output)
	assert.Equal(t, "A function calling itself.", all[0].Output)
}

func TestUpdateApproximateMatchRetainsOriginalTimestamp(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	pending := thoughtAt(ts, "drifting clock")
	pending.Output = ""
	r.Add(pending)

	resolved := thoughtAt(ts.Add(3*time.Millisecond), "drifting clock")
	resolved.Output = "done"
	r.Update(resolved)

	current := r.Current()
	require.Len(t, current, 1, "resolved record must converge, not duplicate")
	assert.Equal(t, "done", current[0].Output)
	assert.True(t, current[0].Timestamp.Equal(ts), "original timestamp is retained")

	all := r.All()
	require.Len(t, all, 1)
	assert.True(t, all[0].Timestamp.Equal(ts))
}

func TestUpdateApproximateMatchEmptyInput(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	r.Add(thoughtAt(ts, "note to self"))

	resolved := store.Thought{Timestamp: ts.Add(5 * time.Millisecond), Output: "resolved"}
	r.Update(resolved)

	current := r.Current()
	require.Len(t, current, 1, "empty input matches anything within tolerance")
	assert.Equal(t, "resolved", current[0].Output)
}

func TestUpdateBeyondToleranceAppends(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	r.Add(thoughtAt(ts, "too far"))

	resolved := thoughtAt(ts.Add(6*time.Millisecond), "too far")
	resolved.Output = "late"
	r.Update(resolved)

	assert.Len(t, r.Current(), 2, "updates outside tolerance are never dropped")
	assert.Len(t, r.All(), 2)
}

func TestUpdateNoMatchAppendsToBothViews(t *testing.T) {
	r := reconciler.New()

	r.Update(thoughtAt(time.Now(), "orphan resolution"))

	assert.Len(t, r.Current(), 1)
	assert.Len(t, r.All(), 1)
}

func TestClearCurrentPreservesHistory(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()

	r.Add(thoughtAt(ts, "before clear"))
	r.ClearCurrent()

	assert.Empty(t, r.Current())
	assert.Len(t, r.All(), 1)
	assert.True(t, r.SessionCleared())
}

func TestAddAfterClearEntersSessionOnly(t *testing.T) {
	ts := time.Now()
	existing := thoughtAt(ts, "already in history")
	st := &stubStore{thoughts: []store.Thought{existing}}

	r := reconciler.New(
		reconciler.WithStore(st),
		reconciler.WithHideHistory(true),
	)
	require.NoError(t, r.Load(context.Background()))

	r.Add(existing)

	assert.Len(t, r.Current(), 1, "a historical record can re-enter a cleared session")
	assert.Len(t, r.All(), 1, "history does not gain a duplicate")
}

func TestResetDropsEverything(t *testing.T) {
	r := reconciler.New()

	r.Add(thoughtAt(time.Now(), "gone"))
	r.Reset()

	assert.Empty(t, r.Current())
	assert.Empty(t, r.All())
	assert.False(t, r.SessionCleared())
}

func TestLoadHideHistoryKeepsSessionEmpty(t *testing.T) {
	ts := time.Now()
	st := &stubStore{thoughts: []store.Thought{thoughtAt(ts, "persisted")}}

	r := reconciler.New(
		reconciler.WithStore(st),
		reconciler.WithHideHistory(true),
	)
	require.NoError(t, r.Load(context.Background()))

	assert.Empty(t, r.Current())
	assert.Len(t, r.All(), 1)
	assert.True(t, r.SessionCleared())
}

func TestLoadPopulatesBothViews(t *testing.T) {
	earlier := time.Now().Add(-time.Hour)
	later := time.Now()
	st := &stubStore{thoughts: []store.Thought{
		thoughtAt(earlier, "first"),
		thoughtAt(later, "second"),
	}}

	r := reconciler.New(reconciler.WithStore(st))
	require.NoError(t, r.Load(context.Background()))

	current := r.Current()
	require.Len(t, current, 2)
	assert.Equal(t, "first", current[0].Input)
	assert.Equal(t, "second", current[1].Input)
}

func TestViewsReturnCopies(t *testing.T) {
	r := reconciler.New()
	ts := time.Now()
	r.Add(thoughtAt(ts, "immutable"))

	got := r.Current()
	got[0].Output = "tampered"

	assert.Equal(t, "...", r.Current()[0].Output)
}

type stubStore struct {
	thoughts []store.Thought
}

func (s *stubStore) Save(_ context.Context, _ store.Thought) (int64, error) { return 0, nil }

func (s *stubStore) GetAll(_ context.Context) ([]store.Thought, error) {
	return s.thoughts, nil
}

func (s *stubStore) GetByTag(_ context.Context, _ string) ([]store.Thought, error) {
	return nil, nil
}

func (s *stubStore) SearchByContent(_ context.Context, _ string) ([]store.Thought, error) {
	return nil, nil
}

func (s *stubStore) GetRecent(_ context.Context, _ int) ([]store.Thought, error) {
	return nil, nil
}

func (s *stubStore) ClearAll(_ context.Context) error { return nil }

func (s *stubStore) Close() error { return nil }
