// Package napkin classifies annotated documents into per-category frequency
// tables and reads them back as ranked reports.
package napkin

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	log "log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/classify"
	"github.com/cognicore/napkin/pkg/napkin/export"
	"github.com/cognicore/napkin/pkg/napkin/internalerr"
	"github.com/cognicore/napkin/pkg/napkin/store"
	"github.com/cognicore/napkin/pkg/napkin/token"
)

// Napkin is the engine facade. It owns its store for the lifetime of one
// run: Open, Process and Report, then Close.
type Napkin struct {
	store      store.Store
	classifier *classify.Classifier
	now        func() time.Time
	entropy    *ulid.MonotonicEntropy
}

// Options configures a Napkin instance
type Options struct {
	Store      store.Store
	Classifier *classify.Classifier

	// Backend names the store in diagnostics.
	Backend string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Open checks store connectivity and returns a ready engine. When the store
// cannot be reached it is closed and a StoreUnavailableError is returned.
func Open(ctx context.Context, opts Options) (*Napkin, error) {
	if opts.Store == nil {
		return nil, &internalerr.ConfigError{Field: "store", Reason: "no store configured"}
	}
	if err := opts.Store.Ping(ctx); err != nil {
		opts.Store.Close()
		var unavailable *internalerr.StoreUnavailableError
		if errors.As(err, &unavailable) {
			return nil, err
		}
		return nil, &internalerr.StoreUnavailableError{Backend: opts.Backend, Err: err}
	}

	c := opts.Classifier
	if c == nil {
		c = classify.New(classify.Options{})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Napkin{
		store:      opts.Store,
		classifier: c,
		now:        now,
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Close releases the store.
func (n *Napkin) Close() error {
	return n.store.Close()
}

// RunOptions configures one Process call.
type RunOptions struct {
	// Source identifies the input in the run history.
	Source string
	Lang   string

	// Flush resets every table and counter before processing. When false,
	// counts accumulate on top of earlier runs.
	Flush bool

	// SpanTarget enables sentence lookup for a term.
	SpanTarget string

	// Progress, when set, is called after each token.
	Progress func(done, total int)
}

// Summary describes one processed document.
type Summary struct {
	RunID    string
	Tokens   int
	Dropped  int
	Entities int

	// Counts holds the stats increments of this run per category.
	Counts map[category.Category]int64
}

// Process classifies doc and writes the results to the store.
func (n *Napkin) Process(ctx context.Context, doc token.Doc, opts RunOptions) (Summary, error) {
	var span *classify.SpanLocator
	if opts.SpanTarget != "" {
		// Rejected before the store is touched.
		loc, err := classify.NewSpanLocator(opts.SpanTarget, doc)
		if err != nil {
			return Summary{}, err
		}
		span = loc
	}

	started := n.now()
	if opts.Flush {
		if err := n.store.Reset(ctx); err != nil {
			return Summary{}, fmt.Errorf("reset store: %w", err)
		}
		log.Debug("store reset")
	}

	sum := Summary{
		Tokens: len(doc.Tokens),
		Counts: make(map[category.Category]int64),
	}

	for i, tok := range doc.Tokens {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		if res, ok := n.classifier.Classify(tok); ok {
			if err := n.record(ctx, res, sum.Counts); err != nil {
				return Summary{}, err
			}
		} else {
			sum.Dropped++
		}
		if span != nil {
			if res, ok := span.Locate(i); ok {
				if err := n.record(ctx, res, sum.Counts); err != nil {
					return Summary{}, err
				}
			}
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(doc.Tokens))
		}
	}

	for _, ent := range doc.Entities {
		results := n.classifier.ClassifyEntity(ent)
		if len(results) == 0 {
			continue
		}
		sum.Entities++
		for _, res := range results {
			if err := n.record(ctx, res, sum.Counts); err != nil {
				return Summary{}, err
			}
		}
	}

	if err := n.store.SetTokenCount(ctx, int64(len(doc.Tokens))); err != nil {
		return Summary{}, fmt.Errorf("set token count: %w", err)
	}

	sum.RunID = ulid.MustNew(ulid.Timestamp(started), n.entropy).String()
	run := store.Run{
		ID:        sum.RunID,
		Source:    opts.Source,
		Lang:      opts.Lang,
		Flushed:   opts.Flush,
		Tokens:    int64(len(doc.Tokens)),
		StartedAt: started,
	}
	if err := n.store.RecordRun(ctx, run); err != nil {
		return Summary{}, fmt.Errorf("record run: %w", err)
	}

	log.Debug("document processed", "run", sum.RunID, "tokens", sum.Tokens, "dropped", sum.Dropped, "entities", sum.Entities)
	return sum, nil
}

func (n *Napkin) record(ctx context.Context, res classify.Result, counts map[category.Category]int64) error {
	if err := n.store.IncrementStat(ctx, res.Category.String()); err != nil {
		return fmt.Errorf("increment stat %s: %w", res.Category, err)
	}
	counts[res.Category]++
	if res.StatsOnly {
		return nil
	}
	if err := n.store.Increment(ctx, res.Category, res.Term); err != nil {
		return fmt.Errorf("increment %s: %w", res.Category, err)
	}
	return nil
}

// Categories resolves a report filter. All selects the fixed categories,
// then span, then the label:<TYPE> tables when full-label mode is on.
func (n *Napkin) Categories(filter category.Category) ([]category.Category, error) {
	switch filter {
	case "", category.All:
		cats := append(category.Base(), category.Span)
		return append(cats, n.classifier.LabelCategories()...), nil
	case category.Space:
		return nil, &internalerr.ConfigError{Field: "category", Reason: "space is tracked in stats only"}
	}
	if filter.IsLabel() && !n.classifier.FullLabels() {
		return nil, &internalerr.ConfigError{Field: "category", Reason: "per-label tables require full-label mode"}
	}
	return []category.Category{filter}, nil
}

// Report reads the ranked entries of the filtered categories. limit follows
// store.TopN; store.NoLimit returns every entry.
func (n *Napkin) Report(ctx context.Context, filter category.Category, limit int) (export.Report, error) {
	cats, err := n.Categories(filter)
	if err != nil {
		return export.Report{}, err
	}
	rep := export.Report{Limit: limit}
	for _, c := range cats {
		entries, err := n.store.TopN(ctx, c, limit)
		if err != nil {
			return export.Report{}, fmt.Errorf("top %s: %w", c, err)
		}
		rep.Sections = append(rep.Sections, export.Section{Category: c, Entries: entries})
	}
	return rep, nil
}

// Stats returns the statistics counters, including the token total.
func (n *Napkin) Stats(ctx context.Context) (map[string]int64, error) {
	return n.store.Stats(ctx)
}

// Runs returns the run history, newest first.
func (n *Napkin) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	return n.store.Runs(ctx, limit)
}
