// Package textfile loads input documents from disk.
package textfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/cognicore/napkin/pkg/napkin/annotate"
	"github.com/cognicore/napkin/pkg/napkin/internalerr"
)

// Kind is the detected input type.
type Kind int

const (
	Text Kind = iota
	HTML
	// Annotated is a document already annotated upstream (JSON token stream).
	Annotated
)

func (k Kind) String() string {
	switch k {
	case HTML:
		return "html"
	case Annotated:
		return "annotated"
	}
	return "text"
}

// Document is a loaded input file.
type Document struct {
	Path string
	Kind Kind
	Text string
}

// KindOf infers the input type from the file extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return Annotated
	case ".html", ".htm":
		return HTML
	}
	return Text
}

// Load reads path fully into memory. HTML is reduced to its text content.
// Text and HTML inputs are capped at annotate.MaxLength characters.
func Load(path string) (Document, error) {
	if path == "" {
		return Document{}, internalerr.ErrMissingInput
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read file %s: %w", path, err)
	}

	doc := Document{Path: path, Kind: KindOf(path), Text: string(data)}
	switch doc.Kind {
	case Annotated:
		return doc, nil
	case HTML:
		doc.Text = StripHTML(doc.Text)
	}
	if err := annotate.CheckLength(doc.Text); err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// blockElements end a line of text.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "table": true, "blockquote": true,
	"pre": true, "section": true, "article": true, "header": true, "footer": true,
	"title": true, "dt": true, "dd": true, "hr": true,
}

// StripHTML returns the text content of an HTML document, skipping script
// and style elements. Block elements start a new line; blank lines are
// dropped and each line is trimmed.
func StripHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		// Fallback to string if parsing fails
		return s
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
		if block {
			buf.WriteByte('\n')
		}
	}
	extractText(doc)

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
