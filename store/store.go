package store

import "context"

// Store is durable CRUD plus indexed lookup for thought records. It carries
// no business logic; deciding what is a duplicate or how records converge is
// the reconciler's job.
type Store interface {
	// Save persists the record and returns the store-assigned identifier.
	Save(ctx context.Context, thought Thought) (int64, error)
	// GetAll returns every record ordered ascending by timestamp.
	GetAll(ctx context.Context) ([]Thought, error)
	// GetByTag returns all records whose tag set contains the exact tag.
	GetByTag(ctx context.Context, tag string) ([]Thought, error)
	// SearchByContent does a case-insensitive substring match against
	// input, output, and summary. No ranking.
	SearchByContent(ctx context.Context, query string) ([]Thought, error)
	// GetRecent returns records sorted descending by timestamp, truncated
	// to limit.
	GetRecent(ctx context.Context, limit int) ([]Thought, error)
	// ClearAll removes every record. Explicit user action only.
	ClearAll(ctx context.Context) error
	Close() error
}
