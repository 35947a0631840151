package category

import (
	"fmt"
	"sort"
	"strings"
)

// Category names one frequency table.
type Category string

const (
	Verb    Category = "verb"
	Noun    Category = "noun"
	Punct   Category = "punct"
	Hashtag Category = "hashtag"
	Mention Category = "mention"
	Digit   Category = "digit"
	URL     Category = "url"
	Email   Category = "email"
	OOV     Category = "oov"
	Space   Category = "space"
	Labels  Category = "labels"
	Span    Category = "span"

	// All is the report filter selecting every category.
	All Category = "all"
)

// TokenStat is the stats key holding the total token count of a run.
const TokenStat = "token"

const labelPrefix = "label:"

// DefaultLabels is the allow-list of entity types tracked in full-label mode.
var DefaultLabels = []string{
	"EVENT", "DATE", "ORG", "PERSON", "GPE", "LOC", "MONEY", "ORDINAL",
	"CARDINAL", "NORP", "FAC", "PRODUCT", "WORK_OF_ART", "LAW", "LANGUAGE",
	"TIME", "PERCENT", "QUANTITY",
}

// base lists the fixed categories in report order. Space is stats-only and
// never has a table.
var base = []Category{Verb, Noun, Punct, Hashtag, Mention, Digit, URL, Email, OOV, Labels}

// Base returns the fixed report categories in order.
func Base() []Category {
	out := make([]Category, len(base))
	copy(out, base)
	return out
}

// Label returns the per-entity-type category for t.
func Label(t string) Category {
	return Category(labelPrefix + strings.ToUpper(strings.TrimSpace(t)))
}

// LabelType returns the entity type of a label category.
func (c Category) LabelType() (string, bool) {
	s := string(c)
	if !strings.HasPrefix(s, labelPrefix) || len(s) == len(labelPrefix) {
		return "", false
	}
	return s[len(labelPrefix):], true
}

// IsLabel reports whether c is a per-entity-type category.
func (c Category) IsLabel() bool {
	_, ok := c.LabelType()
	return ok
}

func (c Category) String() string { return string(c) }

// Parse converts a user-supplied name into a Category.
func Parse(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch c := Category(name); c {
	case All, Span, Space:
		return c, nil
	}
	for _, c := range base {
		if Category(name) == c {
			return c, nil
		}
	}
	if strings.HasPrefix(name, labelPrefix) && len(name) > len(labelPrefix) {
		return Label(name[len(labelPrefix):]), nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// LabelSet is a normalized entity-type allow-list.
type LabelSet map[string]struct{}

// NewLabelSet builds a set from labels, upper-casing each entry.
func NewLabelSet(labels []string) LabelSet {
	set := make(LabelSet, len(labels))
	for _, l := range labels {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		set[l] = struct{}{}
	}
	return set
}

// Contains reports whether label is allow-listed (case-insensitive).
func (s LabelSet) Contains(label string) bool {
	_, ok := s[strings.ToUpper(strings.TrimSpace(label))]
	return ok
}

// Categories returns the label categories of the set, sorted by type.
func (s LabelSet) Categories() []Category {
	types := make([]string, 0, len(s))
	for t := range s {
		types = append(types, t)
	}
	sort.Strings(types)
	out := make([]Category, len(types))
	for i, t := range types {
		out[i] = Label(t)
	}
	return out
}
