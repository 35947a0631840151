package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cognicore/napkin/internal/logging"
	"github.com/cognicore/napkin/pkg/napkin/export"
)

// UI holds the output streams of the command.
type UI struct {
	Out io.Writer
	Err io.Writer
}

type options struct {
	input      string
	limit      int
	format     string
	lang       string
	verbatim   bool
	flush      bool
	stats      bool
	runs       int
	category   string
	span       string
	style      string
	noColor    bool
	fullLabels bool
	annotator  string
	backend    string
	dbPath     string
	redisAddr  string
	redisDB    int
	namespace  string
	configPath string
	lexicon    string
	verbose    bool
	progress   bool

	// set records the flags given on the command line; only those
	// override the configuration file.
	set map[string]bool
}

func main() {
	ui := UI{Out: os.Stdout, Err: os.Stderr}
	os.Exit(run(context.Background(), os.Args[1:], ui))
}

func newFlagSet(opts *options, w io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("napkin", flag.ContinueOnError)
	fs.SetOutput(w)

	fs.StringVar(&opts.input, "f", "", "Input file: plain text, HTML, or annotated JSON (required)")
	fs.IntVar(&opts.limit, "t", 100, "Top N entries per category (-1 for all)")
	fs.StringVar(&opts.format, "o", "csv", "Output format: "+strings.Join(export.SupportedFormats(), " | "))
	fs.StringVar(&opts.lang, "l", "en", "Document language")
	fs.BoolVar(&opts.verbatim, "verbatim", false, "Store verbs and nouns as written instead of their lemma")
	fs.BoolVar(&opts.flush, "flush", true, "Reset the store before processing (-flush=false accumulates across runs)")
	fs.BoolVar(&opts.stats, "stats", false, "Print the statistics counters")
	fs.IntVar(&opts.runs, "runs", 0, "Print the N most recent runs recorded in the store (-1 for all)")
	fs.StringVar(&opts.category, "a", "all", "Category to report, or all")
	fs.StringVar(&opts.span, "span", "", "Count the sentences containing this term")
	fs.StringVar(&opts.style, "style", "default", "Table style for readable output: "+strings.Join(export.SupportedStyles(), ", "))
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable bold headers in readable output")
	fs.BoolVar(&opts.fullLabels, "full-labels", false, "Track entity text per entity type")
	fs.StringVar(&opts.annotator, "annotator", "", "Annotator: text | json (default: json for .json input, text otherwise)")
	fs.StringVar(&opts.backend, "backend", "sqlite", "Store backend: sqlite | redis | memory")
	fs.StringVar(&opts.dbPath, "db", "napkin.db", "SQLite database path")
	fs.StringVar(&opts.redisAddr, "redis", "localhost:6380", "Redis address")
	fs.IntVar(&opts.redisDB, "redis-db", 5, "Redis database number")
	fs.StringVar(&opts.namespace, "ns", "napkin", "Redis key namespace")
	fs.StringVar(&opts.configPath, "config", "", "Optional YAML configuration file")
	fs.StringVar(&opts.lexicon, "lexicon", "", "Optional YAML word list for the text annotator")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	fs.BoolVar(&opts.progress, "progress", false, "Show a progress bar on stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: napkin -f <file> [options]\n\n")
		fmt.Fprintf(fs.Output(), "Classify the tokens of a document and report the most frequent terms per category.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses the command line. A nil options with a nil error means
// usage was printed and the command should exit successfully.
func parseArgs(args []string, w io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}
	fs := newFlagSet(opts, w)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil
		}
		return nil, err
	}
	if opts.input == "" {
		fs.Usage()
		return nil, nil
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

func run(ctx context.Context, args []string, ui UI) int {
	opts, err := parseArgs(args, ui.Err)
	if err != nil {
		fmt.Fprintf(ui.Err, "napkin: %v\n", err)
		return 2
	}
	if opts == nil {
		return 0
	}

	logging.Configure(ui.Err, opts.verbose)

	if err := execute(ctx, opts, ui); err != nil {
		fmt.Fprintf(ui.Err, "napkin: %v\n", err)
		return 1
	}
	return 0
}
