package store

import (
	"context"
	"time"

	"github.com/cognicore/napkin/pkg/napkin/category"
)

// NoLimit passed to TopN returns every entry of a table.
const NoLimit = -1

// Store is the persistent aggregation backend: one ranked frequency table per
// category plus a flat statistics map.
type Store interface {
	Close() error

	// Ping checks connectivity. Callers run it once before any work.
	Ping(ctx context.Context) error

	// Frequency tables
	Increment(ctx context.Context, cat category.Category, term string) error
	TopN(ctx context.Context, cat category.Category, n int) ([]Entry, error)

	// Statistics
	IncrementStat(ctx context.Context, name string) error
	SetTokenCount(ctx context.Context, n int64) error
	Stats(ctx context.Context) (map[string]int64, error)

	// Reset clears every frequency table and counter. Run history is kept.
	Reset(ctx context.Context) error

	// Run history
	RecordRun(ctx context.Context, r Run) error
	Runs(ctx context.Context, limit int) ([]Run, error)
}

// Entry is one ranked (term, count) pair.
type Entry struct {
	Term  string
	Count int64
}

// Run records one completed invocation against the store.
type Run struct {
	ID        string
	Source    string
	Lang      string
	Flushed   bool
	Tokens    int64
	StartedAt time.Time
}
