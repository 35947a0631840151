package annotate

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"

	"github.com/cognicore/napkin/pkg/napkin/token"
)

// TextOptions configures the built-in annotator.
type TextOptions struct {
	// Lexicon, when non-empty, is the in-vocabulary word list; alphabetic
	// words outside it (and outside the stopword list) are out-of-vocabulary.
	// When empty every alphabetic word is in-vocabulary.
	Lexicon []string

	// NoSegment disables sentence segmentation.
	NoSegment bool
}

// Text is a lightweight rule-based annotator for plain text. It segments
// sentences with a Punkt model, stems words for lemmas, detects the
// language by stopword coverage and tags a coarse part of speech. It is a
// fallback for documents that were not run through a full NLP pipeline.
type Text struct {
	segmenter *sentences.DefaultSentenceTokenizer
	lexicon   map[string]struct{}
}

// NewText builds a text annotator.
func NewText(opts TextOptions) (*Text, error) {
	t := &Text{}
	if !opts.NoSegment {
		seg, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			return nil, err
		}
		t.segmenter = seg
	}
	if len(opts.Lexicon) > 0 {
		t.lexicon = make(map[string]struct{}, len(opts.Lexicon))
		for _, w := range opts.Lexicon {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				t.lexicon[w] = struct{}{}
			}
		}
	}
	return t, nil
}

// Annotate implements Adapter.
func (t *Text) Annotate(ctx context.Context, text string) (token.Doc, error) {
	if err := CheckLength(text); err != nil {
		return token.Doc{}, err
	}

	lang := DetectLanguage(text)
	a := &textRun{
		lang:    lang,
		lexicon: t.lexicon,
		stops:   make(map[string]bool),
	}

	doc := token.Doc{Lang: lang}

	var chunks []string
	if t.segmenter != nil {
		for _, s := range t.segmenter.Tokenize(text) {
			chunks = append(chunks, s.Text)
		}
	} else {
		chunks = []string{text}
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return token.Doc{}, err
		}
		start := len(doc.Tokens)
		for _, tok := range a.tokenize(chunk) {
			tok.Sent = i
			doc.Tokens = append(doc.Tokens, tok)
		}
		if t.segmenter != nil {
			doc.Sentences = append(doc.Sentences, token.Sentence{Text: chunk, Start: start, End: len(doc.Tokens)})
		}
		doc.Entities = append(doc.Entities, findEntities(chunk)...)
	}
	return doc, nil
}

type textRun struct {
	lang    string
	lexicon map[string]struct{}
	stops   map[string]bool
}

// tokenize splits one sentence into tokens. Whitespace runs containing a
// line break or more than one character become space tokens.
func (a *textRun) tokenize(s string) []token.Token {
	var out []token.Token
	runes := []rune(s)
	i := 0
	for i < len(runes) {
		if unicode.IsSpace(runes[i]) {
			j := i
			for j < len(runes) && unicode.IsSpace(runes[j]) {
				j++
			}
			ws := string(runes[i:j])
			if j-i > 1 || strings.ContainsRune(ws, '\n') {
				out = append(out, token.Token{Text: ws, Lemma: ws, Pos: "SPACE", IsSpace: true, IsOOV: true})
			}
			i = j
			continue
		}
		j := i
		for j < len(runes) && !unicode.IsSpace(runes[j]) {
			j++
		}
		out = append(out, a.chunk(string(runes[i:j]))...)
		i = j
	}
	return out
}

// chunk splits a whitespace-delimited chunk into leading punctuation, a core
// word and trailing punctuation.
func (a *textRun) chunk(c string) []token.Token {
	runes := []rune(c)
	lo, hi := 0, len(runes)
	for lo < hi && isPunctRune(runes[lo]) && !isMarker(runes, lo) {
		lo++
	}
	for hi > lo && isPunctRune(runes[hi-1]) && !(runes[hi-1] == '%' && hi-1 > lo) {
		hi--
	}

	var out []token.Token
	for _, r := range runes[:lo] {
		out = append(out, a.annotate(string(r)))
	}
	if lo < hi {
		out = append(out, a.annotate(string(runes[lo:hi])))
	}
	for _, r := range runes[hi:] {
		out = append(out, a.annotate(string(r)))
	}
	return out
}

var (
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[A-Za-z]{2,}$`)
	domainRe = regexp.MustCompile(`^[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)*\.(com|org|net|io|edu|gov|co|uk|de|fr|es|it|nl|pt|info|dev|app)(/\S*)?$`)
)

func (a *textRun) annotate(text string) token.Token {
	tok := token.Token{Text: text, Lemma: text}
	lower := strings.ToLower(text)

	switch {
	case allRunes(text, unicode.IsPunct):
		tok.Pos = token.Punct
		tok.IsPunct = true
	case allRunes(text, unicode.IsSymbol):
		tok.Pos = "SYM"
	case allRunes(text, unicode.IsDigit):
		tok.Pos = "NUM"
		tok.IsDigit = true
		tok.IsOOV = true
	case strings.HasPrefix(text, "#") || strings.HasPrefix(text, "@"):
		tok.Pos = "X"
		tok.IsOOV = true
	case emailRe.MatchString(text):
		tok.Pos = "X"
		tok.LikeEmail = true
		tok.IsOOV = true
	case looksLikeURL(lower):
		tok.Pos = "X"
		tok.LikeURL = true
		tok.IsOOV = true
	case isWord(text):
		tok.Lemma = a.lemma(lower)
		if a.isStopword(lower) {
			tok.Pos = token.Other
			break
		}
		tok.Pos = a.guessPOS(lower)
		if a.lexicon != nil {
			if _, ok := a.lexicon[lower]; !ok {
				tok.IsOOV = true
			}
		}
	default:
		// Mixed letters, digits and symbols: "gr8", "covid19".
		tok.Pos = "X"
		tok.IsOOV = true
	}
	return tok
}

func looksLikeURL(s string) bool {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "www.") {
		return true
	}
	return strings.Contains(s, "://") || domainRe.MatchString(s)
}

// guessPOS tags content words. English gets a suffix rule for verbs; other
// languages tag every content word as a noun.
func (a *textRun) guessPOS(lower string) token.POS {
	if a.lang == "en" || a.lang == "" {
		n := len([]rune(lower))
		if n > 4 && (strings.HasSuffix(lower, "ing") || strings.HasSuffix(lower, "ed")) {
			return token.Verb
		}
	}
	return token.Noun
}

var snowballLanguages = map[string]string{
	"en": "english",
	"fr": "french",
	"es": "spanish",
}

func (a *textRun) lemma(lower string) string {
	lang, ok := snowballLanguages[a.lang]
	if !ok {
		return lower
	}
	stem, err := snowball.Stem(lower, lang, true)
	if err != nil || stem == "" {
		return lower
	}
	return stem
}

func (a *textRun) isStopword(lower string) bool {
	if a.lang == "" {
		return false
	}
	if v, ok := a.stops[lower]; ok {
		return v
	}
	v := isStopword(lower, a.lang)
	a.stops[lower] = v
	return v
}

func isPunctRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// isMarker keeps '#' and '@' attached when they prefix a word.
func isMarker(runes []rune, i int) bool {
	if runes[i] != '#' && runes[i] != '@' {
		return false
	}
	return i+1 < len(runes) && (unicode.IsLetter(runes[i+1]) || unicode.IsDigit(runes[i+1]))
}

func isWord(s string) bool {
	letters := 0
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case r == '\'' || r == '’' || r == '-':
		default:
			return false
		}
	}
	return letters > 0
}

func allRunes(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

var entityPatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"MONEY", regexp.MustCompile(`[$€£¥]\s?\d[\d,]*(\.\d+)?`)},
	{"PERCENT", regexp.MustCompile(`\d[\d,]*(\.\d+)?\s?%`)},
	{"DATE", regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{2,4})\b`)},
	{"ORDINAL", regexp.MustCompile(`\b\d+(st|nd|rd|th)\b`)},
	{"CARDINAL", regexp.MustCompile(`\b\d[\d,]*(\.\d+)?\b`)},
}

// findEntities extracts numeric entities. Patterns are tried in order and a
// later match overlapping an earlier one is discarded.
func findEntities(s string) []token.Entity {
	type span struct {
		start, end int
		label      string
	}
	var taken []span
	overlaps := func(start, end int) bool {
		for _, t := range taken {
			if start < t.end && t.start < end {
				return true
			}
		}
		return false
	}

	for _, p := range entityPatterns {
		for _, loc := range p.re.FindAllStringIndex(s, -1) {
			if overlaps(loc[0], loc[1]) {
				continue
			}
			taken = append(taken, span{loc[0], loc[1], p.label})
		}
	}

	// Document order.
	for i := 1; i < len(taken); i++ {
		for j := i; j > 0 && taken[j].start < taken[j-1].start; j-- {
			taken[j], taken[j-1] = taken[j-1], taken[j]
		}
	}

	out := make([]token.Entity, 0, len(taken))
	for _, t := range taken {
		out = append(out, token.Entity{Text: s[t.start:t.end], Label: t.label})
	}
	return out
}
