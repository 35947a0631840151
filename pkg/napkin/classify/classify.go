package classify

import (
	"strings"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/token"
)

// Result is one classification outcome.
type Result struct {
	Category category.Category
	Term     string

	// StatsOnly results bump the category counter but store no term.
	StatsOnly bool
}

// Options configures a Classifier.
type Options struct {
	// Verbatim stores the surface text of verbs and nouns instead of the lemma.
	Verbatim bool

	// FullLabels enables per-entity-type tables for allow-listed labels.
	FullLabels bool

	// Labels is the entity-type allow-list; nil means category.DefaultLabels.
	Labels []string
}

// Classifier maps tokens and entities to categories.
type Classifier struct {
	verbatim   bool
	fullLabels bool
	labels     category.LabelSet
}

// New creates a classifier.
func New(opts Options) *Classifier {
	labels := opts.Labels
	if labels == nil {
		labels = category.DefaultLabels
	}
	return &Classifier{
		verbatim:   opts.Verbatim,
		fullLabels: opts.FullLabels,
		labels:     category.NewLabelSet(labels),
	}
}

// FullLabels reports whether per-entity-type tracking is on.
func (c *Classifier) FullLabels() bool { return c.fullLabels }

// LabelCategories returns the label:<TYPE> categories tracked in full-label
// mode, sorted. It is empty when full-label mode is off.
func (c *Classifier) LabelCategories() []category.Category {
	if !c.fullLabels {
		return nil
	}
	return c.labels.Categories()
}

// Classify returns the category of tok. Rules are evaluated in order and the
// first match wins. ok is false for tokens outside the tracked classes.
func (c *Classifier) Classify(tok token.Token) (Result, bool) {
	if !Tracked(tok) {
		return Result{}, false
	}
	if !tok.IsOOV {
		switch tok.Pos {
		case token.Verb:
			return Result{Category: category.Verb, Term: c.term(tok)}, true
		case token.Noun:
			return Result{Category: category.Noun, Term: c.term(tok)}, true
		}
		return Result{Category: category.Punct, Term: tok.Text}, true
	}

	// A bare marker has no term and is kept as oov.
	text := tok.Text
	switch {
	case strings.HasPrefix(text, "#") && len(text) > 1:
		return Result{Category: category.Hashtag, Term: text[1:]}, true
	case strings.HasPrefix(text, "@") && len(text) > 1:
		return Result{Category: category.Mention, Term: text[1:]}, true
	case tok.IsDigit:
		return Result{Category: category.Digit, Term: text}, true
	case tok.IsSpace:
		return Result{Category: category.Space, StatsOnly: true}, true
	case tok.LikeURL:
		return Result{Category: category.URL, Term: text}, true
	case tok.LikeEmail:
		return Result{Category: category.Email, Term: text}, true
	}
	return Result{Category: category.OOV, Term: text}, true
}

// ClassifyEntity returns the increments for one entity: always the generic
// labels counter, plus label:<TYPE> keyed by the entity text in full-label
// mode when the type is allow-listed.
func (c *Classifier) ClassifyEntity(ent token.Entity) []Result {
	label := strings.ToUpper(strings.TrimSpace(ent.Label))
	if label == "" {
		return nil
	}
	out := []Result{{Category: category.Labels, Term: label}}
	if c.fullLabels && c.labels.Contains(label) {
		out = append(out, Result{Category: category.Label(label), Term: ent.Text})
	}
	return out
}

func (c *Classifier) term(tok token.Token) string {
	if c.verbatim || tok.Lemma == "" {
		return tok.Text
	}
	return tok.Lemma
}

// Tracked is the filter policy: it reports whether tok belongs to a tracked
// class. In-vocabulary tokens that are neither verbs, nouns nor punctuation,
// and one-character verbs and nouns, are dropped without any stats update.
func Tracked(tok token.Token) bool {
	if tok.IsOOV {
		return true
	}
	switch tok.Pos {
	case token.Verb, token.Noun:
		return tok.Len() > 1
	case token.Punct:
		return true
	}
	return false
}
