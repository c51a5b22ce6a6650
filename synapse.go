// Package synapse wires the record store, the thought reconciler, the
// command interpreter, and the generation client into one vault. Each
// component is constructed separately and passed in; nothing here is global.
package synapse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cameronkarthik/synapse-mind-vault-main/generator"
	"github.com/cameronkarthik/synapse-mind-vault-main/interpreter"
	"github.com/cameronkarthik/synapse-mind-vault-main/reconciler"
	"github.com/cameronkarthik/synapse-mind-vault-main/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Vault struct {
	options     Options
	store       store.Store
	generator   generator.Generator
	reconciler  *reconciler.Reconciler
	interpreter *interpreter.Interpreter
	sessionId   string
}

func New(st store.Store, gen generator.Generator, opts ...Option) (*Vault, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}

	if gen == nil {
		return nil, errors.New("generator is required")
	}

	options := NewOptions(opts...)

	hide := options.HideHistory
	if options.Settings != nil {
		loaded, err := options.Settings.Load()
		if err != nil {
			return nil, err
		}
		hide = loaded.HideChatHistory
	}

	v := &Vault{
		options:   options,
		store:     st,
		generator: gen,
		reconciler: reconciler.New(
			reconciler.WithStore(st),
			reconciler.WithHideHistory(hide),
			reconciler.WithLogger(options.Logger),
		),
		interpreter: interpreter.New(
			st,
			gen,
			interpreter.WithApiKey(options.ApiKey),
			interpreter.WithClock(options.Now),
			interpreter.WithLogger(options.Logger),
		),
		sessionId: uuid.New().String(),
	}

	return v, nil
}

// Load pulls persisted history into the reconciler. Call once at startup;
// the store handle is already resolved, so there is nothing to poll for.
func (v *Vault) Load(ctx context.Context) error {
	return v.reconciler.Load(ctx)
}

// Process takes one line of user input through the full flow: a provisional
// record becomes visible immediately, the command interpreter or generation
// client produces the response, and the resolved record converges onto the
// provisional one and is persisted. The user's input is preserved and
// visible whatever happens downstream; only persistence failures come back
// as the error.
func (v *Vault) Process(ctx context.Context, input string) (store.Thought, error) {
	if len(strings.TrimSpace(input)) == 0 {
		return store.Thought{}, errors.New("user input is required")
	}

	if verb, content, ok := interpreter.ExtractCommand(input); ok {
		return v.processCommand(ctx, input, verb, content)
	}

	return v.processThought(ctx, input)
}

func (v *Vault) processCommand(ctx context.Context, input string, verb string, content string) (store.Thought, error) {
	provisional := store.Thought{
		Timestamp: v.options.Now().UTC(),
		Input:     input,
		Output:    "",
		Tags:      []string{verb},
		Summary:   fmt.Sprintf("/%s command", verb),
	}

	v.reconciler.Add(provisional)

	resolved := provisional.Clone()
	resolved.Summary = fmt.Sprintf("Used the /%s command", verb)

	output, err := v.interpreter.Process(ctx, verb, content)
	switch {
	case err == nil:
		resolved.Output = output
	case isGuidance(err):
		// Format and usage problems render as plain text, not failures.
		resolved.Output = err.Error()
	default:
		resolved = fail(resolved, err)
	}

	return v.resolve(ctx, resolved)
}

func (v *Vault) processThought(ctx context.Context, input string) (store.Thought, error) {
	cleaned, inlineTags := ParseTags(input)
	if len(cleaned) == 0 {
		cleaned = input
	}

	provisional := store.Thought{
		Timestamp: v.options.Now().UTC(),
		Input:     input,
		Output:    "",
		Tags:      inlineTags,
	}

	v.reconciler.Add(provisional)

	resolved := provisional.Clone()

	response, err := v.generator.Generate(
		ctx,
		cleaned,
		generator.WithExchanges(v.exchanges()...),
	)
	if err != nil {
		return v.resolve(ctx, fail(resolved, err))
	}

	resolved.Output = response

	// Summary and tags are best-effort enrichment; their failure never
	// blocks the response.
	if summary, err := v.generator.Summarize(ctx, cleaned); err == nil {
		resolved.Summary = summary
	} else {
		v.options.Logger.Warn("summary generation failed", zap.String("session", v.sessionId), zap.Error(err))
	}

	if tags, err := v.generator.ExtractTags(ctx, cleaned+" "+response); err == nil {
		resolved.Tags = mergeTags(resolved.Tags, tags)
	} else {
		v.options.Logger.Warn("tag extraction failed", zap.String("session", v.sessionId), zap.Error(err))
	}

	return v.resolve(ctx, resolved)
}

// resolve persists the record and converges it onto the provisional entry.
// The in-memory views stay authoritative for rendering even when the write
// fails; the StorageError is returned rather than masked.
func (v *Vault) resolve(ctx context.Context, resolved store.Thought) (store.Thought, error) {
	id, err := v.store.Save(ctx, resolved)
	if err != nil {
		v.options.Logger.Error("persist failed", zap.String("session", v.sessionId), zap.Error(err))
	} else {
		resolved.Id = id
	}

	v.reconciler.Update(resolved)

	return resolved, err
}

// exchanges flattens the resolved session view into alternating user and
// assistant strings, oldest first, for generation context.
func (v *Vault) exchanges() []string {
	var out []string
	for _, t := range v.reconciler.Current() {
		if t.Pending() {
			continue
		}
		out = append(out, t.Input, t.Output)
	}
	return out
}

// Current returns the session view.
func (v *Vault) Current() []store.Thought {
	return v.reconciler.Current()
}

// History returns the all-time view.
func (v *Vault) History() []store.Thought {
	return v.reconciler.All()
}

func (v *Vault) Search(ctx context.Context, query string) ([]store.Thought, error) {
	return v.store.SearchByContent(ctx, query)
}

func (v *Vault) Recent(ctx context.Context, limit int) ([]store.Thought, error) {
	return v.store.GetRecent(ctx, limit)
}

// ClearSession empties the session view without touching history, and
// records the preference so the next boot starts with history hidden.
func (v *Vault) ClearSession() error {
	v.reconciler.ClearCurrent()

	if v.options.Settings == nil {
		return nil
	}

	loaded, err := v.options.Settings.Load()
	if err != nil {
		return err
	}

	loaded.HideChatHistory = true

	return v.options.Settings.Save(loaded)
}

// ClearHistory destroys every persisted record. Explicit user action only.
func (v *Vault) ClearHistory(ctx context.Context) error {
	if err := v.store.ClearAll(ctx); err != nil {
		return err
	}

	v.reconciler.Reset()

	return nil
}

func (v *Vault) SessionId() string {
	return v.sessionId
}

func (v *Vault) Close() error {
	return v.store.Close()
}

// fail converts a downstream error into a terminal error record. The
// original input survives; the output carries the error marker and the tag
// set gains "error".
func fail(t store.Thought, err error) store.Thought {
	t.Output = "Error: " + errText(err)
	t.Error = err.Error()
	t.Tags = mergeTags(t.Tags, []string{"error"})
	return t
}

// errText prefers the provider's own message over wrapper noise.
func errText(err error) string {
	var genErr *generator.GenerationError
	if errors.As(err, &genErr) {
		return genErr.Err.Error()
	}
	return err.Error()
}

// isGuidance reports whether the error is user guidance (usage, format,
// missing credential) rather than a component failure.
func isGuidance(err error) bool {
	var invalid *interpreter.InvalidCommandFormatError
	var unknown *interpreter.UnknownCommandError
	return errors.As(err, &invalid) ||
		errors.As(err, &unknown) ||
		errors.Is(err, interpreter.ErrMissingApiKey) ||
		errors.Is(err, generator.ErrMissingApiKey)
}
