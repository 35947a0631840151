package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	log "log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cognicore/napkin/internal/textfile"
	"github.com/cognicore/napkin/pkg/napkin"
	"github.com/cognicore/napkin/pkg/napkin/annotate"
	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/config"
	"github.com/cognicore/napkin/pkg/napkin/export"
	"github.com/cognicore/napkin/pkg/napkin/internalerr"
	"github.com/cognicore/napkin/pkg/napkin/store"
	"github.com/cognicore/napkin/pkg/napkin/store/memstore"
	"github.com/cognicore/napkin/pkg/napkin/store/redisstore"
	"github.com/cognicore/napkin/pkg/napkin/store/sqlite"
	"github.com/cognicore/napkin/pkg/napkin/token"
)

func execute(ctx context.Context, opts *options, ui UI) error {
	loader := config.Loader{ConfigPath: opts.configPath, LexiconPath: opts.lexicon}
	comp, err := loader.Load()
	if err != nil {
		return err
	}
	cfg := comp.Config
	applyFlags(&cfg, opts)
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := export.ParseFormat(cfg.Report.Format)
	if err != nil {
		return err
	}
	renderer, err := export.New(format, export.Options{Style: cfg.Report.Style, NoColor: opts.noColor})
	if err != nil {
		return err
	}
	filter, err := category.Parse(opts.category)
	if err != nil {
		return &internalerr.ConfigError{Field: "a", Reason: err.Error()}
	}

	// The store is checked before the input is read or annotated.
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	engine, err := napkin.Open(ctx, napkin.Options{
		Store:      st,
		Classifier: cfg.NewClassifier(),
		Backend:    cfg.Store.Backend,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	// Reject bad filters before the store is touched.
	if _, err := engine.Categories(filter); err != nil {
		return err
	}

	input, err := textfile.Load(opts.input)
	if err != nil {
		return err
	}
	adapter, err := selectAnnotator(opts.annotator, input.Kind, comp)
	if err != nil {
		return err
	}
	doc, err := adapter.Annotate(ctx, input.Text)
	if err != nil {
		return fmt.Errorf("annotate %s: %w", input.Path, err)
	}
	if err := annotate.CheckLanguage(doc, cfg.Lang); err != nil {
		return err
	}
	log.Debug("document annotated", "path", input.Path, "kind", input.Kind, "tokens", len(doc.Tokens), "entities", len(doc.Entities), "lang", doc.Lang)

	runOpts := napkin.RunOptions{
		Source:     input.Path,
		Lang:       cfg.Lang,
		Flush:      opts.flush,
		SpanTarget: opts.span,
	}
	stop := func() {}
	if opts.progress {
		runOpts.Progress, stop = progressBar(ui.Err, doc)
	}
	sum, err := engine.Process(ctx, doc, runOpts)
	stop()
	if err != nil {
		return err
	}
	log.Info("run recorded", "run", sum.RunID, "tokens", sum.Tokens, "dropped", sum.Dropped)

	rep, err := engine.Report(ctx, filter, cfg.Report.Limit)
	if err != nil {
		return err
	}
	if err := renderer.Render(ui.Out, rep); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	// Keep stdout a single document for JSON output.
	extra := ui.Out
	if format == export.JSON {
		extra = ui.Err
	}
	if opts.stats {
		stats, err := engine.Stats(ctx)
		if err != nil {
			return fmt.Errorf("read stats: %w", err)
		}
		if err := printStats(extra, stats, format); err != nil {
			return err
		}
	}
	if opts.runs != 0 {
		runs, err := engine.Runs(ctx, opts.runs)
		if err != nil {
			return fmt.Errorf("read run history: %w", err)
		}
		if err := printRuns(extra, runs, format); err != nil {
			return err
		}
	}
	return nil
}

// applyFlags overrides configuration values with the flags given on the
// command line.
func applyFlags(cfg *config.Config, opts *options) {
	if opts.set["t"] {
		cfg.Report.Limit = opts.limit
	}
	if opts.set["o"] {
		cfg.Report.Format = opts.format
	}
	if opts.set["style"] {
		cfg.Report.Style = opts.style
	}
	if opts.set["l"] {
		cfg.Lang = opts.lang
	}
	if opts.set["verbatim"] {
		cfg.Classify.Verbatim = opts.verbatim
	}
	if opts.set["full-labels"] {
		cfg.Classify.FullLabels = opts.fullLabels
	}
	if opts.set["backend"] {
		cfg.Store.Backend = opts.backend
	}
	if opts.set["db"] {
		cfg.Store.Path = opts.dbPath
	}
	if opts.set["redis"] {
		cfg.Store.Redis.Address = opts.redisAddr
	}
	if opts.set["redis-db"] {
		cfg.Store.Redis.DB = opts.redisDB
	}
	if opts.set["ns"] {
		cfg.Store.Redis.Namespace = opts.namespace
	}
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		st, err := sqlite.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, &internalerr.StoreUnavailableError{Backend: cfg.Backend, Err: err}
		}
		return st, nil
	case config.BackendRedis:
		if strings.HasPrefix(cfg.Redis.Address, "redis://") || strings.HasPrefix(cfg.Redis.Address, "rediss://") {
			st, err := redisstore.OpenURL(cfg.Redis.Address, cfg.Redis.Namespace)
			if err != nil {
				return nil, &internalerr.ConfigError{Field: "redis", Reason: err.Error()}
			}
			return st, nil
		}
		return redisstore.Open(redisstore.Options{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			Namespace: cfg.Redis.Namespace,
		}), nil
	case config.BackendMemory:
		return memstore.New(), nil
	}
	return nil, &internalerr.ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", cfg.Backend)}
}

func selectAnnotator(name string, kind textfile.Kind, comp *config.Components) (annotate.Adapter, error) {
	switch strings.ToLower(name) {
	case "":
		if kind == textfile.Annotated {
			return annotate.JSON{}, nil
		}
		return comp.NewTextAnnotator()
	case "json":
		return annotate.JSON{}, nil
	case "text":
		return comp.NewTextAnnotator()
	}
	return nil, &internalerr.ConfigError{Field: "annotator", Reason: fmt.Sprintf("unknown annotator %q (supported: text, json)", name)}
}

func progressBar(w io.Writer, doc token.Doc) (func(done, total int), func()) {
	p := uiprogress.New()
	p.SetOut(w)
	bar := p.AddBar(len(doc.Tokens))
	bar.AppendCompleted()
	bar.PrependElapsed()
	p.Start()
	return func(done, total int) { bar.Set(done) }, p.Stop
}

func printStats(w io.Writer, stats map[string]int64, format export.Format) error {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	if format != export.Readable {
		if _, err := fmt.Fprintf(w, "# Stats\n"); err != nil {
			return err
		}
		for _, name := range names {
			if _, err := fmt.Fprintf(w, "stats,%s,%d\n", name, stats[name]); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "#\n\n")
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Stats")
	t.AppendHeader(table.Row{"name", "count"})
	for _, name := range names {
		t.AppendRow(table.Row{name, stats[name]})
	}
	_, err := fmt.Fprintf(w, "%s\n", t.Render())
	return err
}

// printRuns writes the run history, newest first.
func printRuns(w io.Writer, runs []store.Run, format export.Format) error {
	if format != export.Readable {
		if _, err := fmt.Fprintf(w, "# Runs\n"); err != nil {
			return err
		}
		cw := csv.NewWriter(w)
		for _, r := range runs {
			record := []string{
				"run", r.ID, r.Source, r.Lang,
				strconv.FormatBool(r.Flushed),
				strconv.FormatInt(r.Tokens, 10),
				r.StartedAt.UTC().Format(time.RFC3339),
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "#\n\n")
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Runs")
	t.AppendHeader(table.Row{"id", "source", "lang", "flushed", "tokens", "started"})
	for _, r := range runs {
		t.AppendRow(table.Row{r.ID, r.Source, r.Lang, r.Flushed, r.Tokens, r.StartedAt.UTC().Format(time.RFC3339)})
	}
	_, err := fmt.Fprintf(w, "%s\n", t.Render())
	return err
}
