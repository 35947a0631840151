package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/export"
)

const annotatedDoc = `{
  "lang": "en",
  "tokens": [
    {"text": "Dogs", "lemma": "dog", "pos": "NOUN", "sent": 0},
    {"text": "love", "lemma": "love", "pos": "VERB", "sent": 0},
    {"text": "#vacay", "pos": "X", "is_oov": true, "sent": 0},
    {"text": ".", "pos": "PUNCT", "is_punct": true, "sent": 0},
    {"text": "The", "lemma": "the", "pos": "DET", "sent": 1},
    {"text": "dog", "lemma": "dog", "pos": "NOUN", "sent": 1},
    {"text": "won", "lemma": "win", "pos": "VERB", "sent": 1}
  ],
  "ents": [{"text": "Ada Lovelace", "label": "PERSON"}],
  "sents": [
    {"text": "Dogs love #vacay.", "start": 0, "end": 4},
    {"text": "The dog won", "start": 4, "end": 7}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, UI{Out: &out, Err: &errOut})
	return code, out.String(), errOut.String()
}

func TestMissingInputPrintsUsage(t *testing.T) {
	code, out, errOut := runCmd(t)
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if out != "" {
		t.Errorf("nothing should be written to stdout, got %q", out)
	}
	if !strings.Contains(errOut, "Usage: napkin") {
		t.Errorf("usage not printed: %q", errOut)
	}
}

func TestParseArgs(t *testing.T) {
	opts, err := parseArgs([]string{"-f", "doc.json", "-t", "5", "-flush=false", "-full-labels"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if opts.input != "doc.json" || opts.limit != 5 || opts.flush || !opts.fullLabels {
		t.Errorf("unexpected options: %+v", opts)
	}
	if !opts.set["t"] || opts.set["o"] {
		t.Errorf("set flags = %v", opts.set)
	}

	if _, err := parseArgs([]string{"-f", "doc.json", "extra"}, &bytes.Buffer{}); err == nil {
		t.Error("stray arguments should be rejected")
	}
}

func TestBadFlag(t *testing.T) {
	if code, _, _ := runCmd(t, "-nope"); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestRunCSV(t *testing.T) {
	doc := writeFile(t, "doc.json", annotatedDoc)
	code, out, errOut := runCmd(t, "-f", doc, "-backend", "memory", "-t", "2")
	if code != 0 {
		t.Fatalf("exit code = %d: %s", code, errOut)
	}

	for _, want := range []string{
		"# Top 2 of noun\nnoun,dog,2\n#\n\n",
		"# Top 2 of verb\nverb,love,1\nverb,win,1\n#\n\n",
		"hashtag,vacay,1\n",
		"punct,.,1\n",
		"labels,PERSON,1\n",
		"# Top 2 of span\n#\n\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "label:PERSON") {
		t.Errorf("per-label tables require -full-labels:\n%s", out)
	}
}

func TestRunSingleCategoryWithFullLabels(t *testing.T) {
	doc := writeFile(t, "doc.json", annotatedDoc)
	code, out, errOut := runCmd(t, "-f", doc, "-backend", "memory", "-full-labels", "-a", "label:person")
	if code != 0 {
		t.Fatalf("exit code = %d: %s", code, errOut)
	}
	want := "# Top 100 of label:PERSON\nlabel:PERSON,Ada Lovelace,1\n#\n\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRunSpan(t *testing.T) {
	doc := writeFile(t, "doc.json", annotatedDoc)
	code, out, errOut := runCmd(t, "-f", doc, "-backend", "memory", "-span", "dog", "-a", "span")
	if code != 0 {
		t.Fatalf("exit code = %d: %s", code, errOut)
	}
	if !strings.Contains(out, "span,The dog won,1\n") {
		t.Errorf("span missing:\n%s", out)
	}
}

func TestRunSpanWithoutSegmentation(t *testing.T) {
	doc := writeFile(t, "doc.json", `{"lang":"en","tokens":[{"text":"dog","lemma":"dog","pos":"NOUN"}]}`)
	code, _, errOut := runCmd(t, "-f", doc, "-backend", "memory", "-span", "dog")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(errOut, "napkin: ") || !strings.Contains(errOut, "segmentation") {
		t.Errorf("diagnostic = %q", errOut)
	}
}

func TestRunJSONWithStats(t *testing.T) {
	doc := writeFile(t, "doc.json", annotatedDoc)
	code, out, errOut := runCmd(t, "-f", doc, "-backend", "memory", "-o", "json", "-a", "noun", "-stats")
	if code != 0 {
		t.Fatalf("exit code = %d: %s", code, errOut)
	}

	rep, err := export.DecodeJSON(strings.NewReader(out))
	if err != nil {
		t.Fatalf("stdout is not a report document: %v\n%s", err, out)
	}
	if len(rep.Sections) != 1 || rep.Sections[0].Category != category.Noun {
		t.Errorf("sections = %+v", rep.Sections)
	}
	if !strings.Contains(errOut, "stats,token,7\n") || !strings.Contains(errOut, "stats,noun,2\n") {
		t.Errorf("stats should go to stderr for json output: %q", errOut)
	}
}

func TestRunReadable(t *testing.T) {
	doc := writeFile(t, "doc.json", annotatedDoc)
	code, out, errOut := runCmd(t, "-f", doc, "-backend", "memory", "-o", "readable", "-style", "light", "-no-color", "-a", "verb")
	if code != 0 {
		t.Fatalf("exit code = %d: %s", code, errOut)
	}
	if !strings.Contains(out, "Top 100 of verb") || strings.Count(out, "1 occurrences") != 1 {
		t.Errorf("unexpected readable output:\n%s", out)
	}
}

func TestRunAccumulatesWithSQLite(t *testing.T) {
	doc := writeFile(t, "doc.json", annotatedDoc)
	db := filepath.Join(t.TempDir(), "napkin.db")

	if code, _, errOut := runCmd(t, "-f", doc, "-db", db, "-a", "noun"); code != 0 {
		t.Fatalf("first run exit code = %d: %s", code, errOut)
	}
	code, out, errOut := runCmd(t, "-f", doc, "-db", db, "-a", "noun", "-flush=false")
	if code != 0 {
		t.Fatalf("second run exit code = %d: %s", code, errOut)
	}
	if !strings.Contains(out, "noun,dog,4\n") {
		t.Errorf("counts should accumulate:\n%s", out)
	}

	code, out, _ = runCmd(t, "-f", doc, "-db", db, "-a", "noun")
	if code != 0 || !strings.Contains(out, "noun,dog,2\n") {
		t.Errorf("flush should reset counts:\n%s", out)
	}
}

func TestRunPrintsRunHistory(t *testing.T) {
	doc := writeFile(t, "doc.json", annotatedDoc)
	db := filepath.Join(t.TempDir(), "napkin.db")

	if code, _, errOut := runCmd(t, "-f", doc, "-db", db, "-a", "noun"); code != 0 {
		t.Fatalf("first run exit code = %d: %s", code, errOut)
	}
	tests := []struct {
		name   string
		args   []string
		header string
		rows   int
	}{
		{"csv latest", []string{"-runs", "1"}, "# Runs\n", 1},
		{"csv all", []string{"-runs", "-1", "-flush=false"}, "# Runs\n", 3},
		{"readable", []string{"-runs", "2", "-o", "readable", "-no-color"}, "Runs", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"-f", doc, "-db", db, "-a", "noun"}, tt.args...)
			code, out, errOut := runCmd(t, args...)
			if code != 0 {
				t.Fatalf("exit code = %d: %s", code, errOut)
			}
			if !strings.Contains(out, tt.header) {
				t.Errorf("run history missing:\n%s", out)
			}
			if got := strings.Count(out, doc); got != tt.rows {
				t.Errorf("source listed %d times, want %d:\n%s", got, tt.rows, out)
			}
		})
	}
}

func TestRunTextInput(t *testing.T) {
	doc := writeFile(t, "notes.txt", "Loving #golang with @gopher! Mail a@b.com about it.")
	code, out, errOut := runCmd(t, "-f", doc, "-backend", "memory")
	if code != 0 {
		t.Fatalf("exit code = %d: %s", code, errOut)
	}
	for _, want := range []string{"hashtag,golang,1\n", "mention,gopher,1\n", "email,a@b.com,1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunFailures(t *testing.T) {
	doc := writeFile(t, "doc.json", annotatedDoc)
	french := writeFile(t, "fr.json", `{"lang":"fr","tokens":[]}`)
	cfg := writeFile(t, "napkin.yaml", "store:\n  backend: mongo\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"store unreachable", []string{"-f", doc, "-backend", "redis", "-redis", "127.0.0.1:1"}, "store unavailable"},
		{"language mismatch", []string{"-f", french, "-backend", "memory"}, "differs from configured language"},
		{"unsupported language", []string{"-f", doc, "-backend", "memory", "-l", "xx"}, "unsupported language"},
		{"unknown format", []string{"-f", doc, "-backend", "memory", "-o", "xml"}, "unknown output format"},
		{"unknown category", []string{"-f", doc, "-backend", "memory", "-a", "adverb"}, "unknown category"},
		{"space has no table", []string{"-f", doc, "-backend", "memory", "-a", "space"}, "stats only"},
		{"missing file", []string{"-f", filepath.Join(t.TempDir(), "nope.txt"), "-backend", "memory"}, "read file"},
		{"invalid config", []string{"-f", doc, "-config", cfg}, "store.backend"},
		{"unknown annotator", []string{"-f", doc, "-backend", "memory", "-annotator", "spacy"}, "unknown annotator"},
		{"label table without full labels", []string{"-f", doc, "-backend", "memory", "-a", "label:person"}, "full-label mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCmd(t, tt.args...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if out != "" {
				t.Errorf("no report expected on failure, got %q", out)
			}
			if !strings.HasPrefix(errOut, "napkin: ") || !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr = %q, want it to mention %q", errOut, tt.want)
			}
		})
	}
}
