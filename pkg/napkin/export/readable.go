package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cognicore/napkin/pkg/napkin/store"
)

// Group is a run of consecutive ranked entries sharing one count.
type Group struct {
	Count int64
	Terms []string
}

// Header is the line introducing the group.
func (g Group) Header() string {
	return fmt.Sprintf("%d occurrences", g.Count)
}

// GroupByCount splits ranked entries into groups. A new group starts
// whenever the count differs from the previous entry's count; terms keep
// their ranked order.
func GroupByCount(entries []store.Entry) []Group {
	var groups []Group
	for i, e := range entries {
		if i == 0 || e.Count != entries[i-1].Count {
			groups = append(groups, Group{Count: e.Count})
		}
		last := &groups[len(groups)-1]
		last.Terms = append(last.Terms, e.Term)
	}
	return groups
}

// Style is a named table style.
type Style struct {
	Name     string
	Markdown bool
	table    table.Style
}

var styles = map[string]Style{
	"default":  {Name: "default", table: table.StyleDefault},
	"ascii":    {Name: "ascii", table: table.StyleDefault},
	"light":    {Name: "light", table: table.StyleLight},
	"bold":     {Name: "bold", table: table.StyleBold},
	"double":   {Name: "double", table: table.StyleDouble},
	"rounded":  {Name: "rounded", table: table.StyleRounded},
	"markdown": {Name: "markdown", Markdown: true, table: table.StyleDefault},
}

// SupportedStyles lists the accepted style names, sorted.
func SupportedStyles() []string {
	names := make([]string, 0, len(styles))
	for name := range styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseStyle resolves a style name; the empty name selects "default".
func ParseStyle(name string) (Style, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "default"
	}
	s, ok := styles[name]
	if !ok {
		return Style{}, fmt.Errorf("unknown table style %q (supported: %s)", name, strings.Join(SupportedStyles(), ", "))
	}
	return s, nil
}

// NoEntries fills the table of a category without entries.
const NoEntries = "no entries"

// ReadableRenderer draws one table per category with rows grouped by
// descending occurrence count.
type ReadableRenderer struct {
	Style   Style
	NoColor bool
}

// Render implements Renderer.
func (r ReadableRenderer) Render(w io.Writer, rep Report) error {
	style := r.Style
	if style.Name == "" {
		style = styles["default"]
	}

	for _, sec := range rep.Sections {
		title := fmt.Sprintf("Top %s of %s", limitLabel(rep.Limit), sec.Category)

		t := table.NewWriter()
		t.SetStyle(style.table)
		// The title wraps at the column width otherwise.
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, WidthMin: text.RuneWidthWithoutEscSequences(title)}})
		if len(sec.Entries) == 0 {
			t.AppendRow(table.Row{NoEntries})
		}
		for i, g := range GroupByCount(sec.Entries) {
			if i > 0 {
				t.AppendSeparator()
			}
			t.AppendRow(table.Row{r.bold(g.Header(), style)})
			for _, term := range g.Terms {
				t.AppendRow(table.Row{term})
			}
		}

		var out string
		if style.Markdown {
			out = fmt.Sprintf("**%s**\n\n%s", title, t.RenderMarkdown())
		} else {
			t.SetTitle(r.bold(title, style))
			out = t.Render()
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", out); err != nil {
			return err
		}
	}
	return nil
}

func (r ReadableRenderer) bold(s string, style Style) string {
	if r.NoColor || style.Markdown {
		return s
	}
	return text.Bold.Sprint(s)
}
