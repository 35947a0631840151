package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/store"
)

// Format selects a renderer.
type Format int

const (
	CSV Format = iota
	JSON
	Readable
)

var formatNames = map[Format]string{
	CSV:      "csv",
	JSON:     "json",
	Readable: "readable",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// SupportedFormats lists the accepted format names.
func SupportedFormats() []string {
	return []string{"csv", "json", "readable"}
}

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown output format %q (supported: %s)", s, strings.Join(SupportedFormats(), ", "))
}

// Section is the ranked result of one category.
type Section struct {
	Category category.Category
	Entries  []store.Entry
}

// Report is everything a renderer needs. Limit is the requested top-N,
// -1 meaning unlimited.
type Report struct {
	Limit    int
	Sections []Section
}

// Renderer writes a report. Rendering is a pure function of the report.
type Renderer interface {
	Render(w io.Writer, rep Report) error
}

// Options tunes renderers that support it.
type Options struct {
	// Style is the table style name of the readable renderer.
	Style string
	// NoColor disables ANSI bold in the readable renderer.
	NoColor bool
}

// New returns the renderer for f.
func New(f Format, opts Options) (Renderer, error) {
	switch f {
	case CSV:
		return CSVRenderer{}, nil
	case JSON:
		return JSONRenderer{Indent: "  "}, nil
	case Readable:
		style, err := ParseStyle(opts.Style)
		if err != nil {
			return nil, err
		}
		return ReadableRenderer{Style: style, NoColor: opts.NoColor}, nil
	}
	return nil, fmt.Errorf("unsupported format %v", f)
}

func limitLabel(limit int) string {
	if limit < 0 {
		return "all"
	}
	return strconv.Itoa(limit)
}
