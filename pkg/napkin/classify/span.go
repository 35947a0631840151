package classify

import (
	"strings"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/internalerr"
	"github.com/cognicore/napkin/pkg/napkin/token"
)

// SpanLocator yields the sentences containing a target term.
type SpanLocator struct {
	target string
	doc    token.Doc
}

// NewSpanLocator binds a locator to doc. It fails when the annotator did not
// segment the document, so the caller can reject the option before touching
// the store.
func NewSpanLocator(target string, doc token.Doc) (*SpanLocator, error) {
	if target == "" {
		return nil, &internalerr.ConfigError{Field: "span", Reason: "empty target term"}
	}
	if !doc.Segmented() {
		return nil, &internalerr.ConfigError{Field: "span", Reason: "annotator did not provide sentence segmentation"}
	}
	return &SpanLocator{target: target, doc: doc}, nil
}

// Locate returns a span result when the token at index i matches the target.
func (l *SpanLocator) Locate(i int) (Result, bool) {
	if i < 0 || i >= len(l.doc.Tokens) || l.doc.Tokens[i].Text != l.target {
		return Result{}, false
	}
	s, ok := l.doc.SentenceOf(i)
	if !ok {
		return Result{}, false
	}
	return Result{Category: category.Span, Term: strings.TrimSpace(s.Text)}, true
}
