package token

import "unicode/utf8"

// POS is a coarse universal part-of-speech tag as emitted by the annotator.
type POS string

const (
	Verb  POS = "VERB"
	Noun  POS = "NOUN"
	Punct POS = "PUNCT"
	Other POS = "X"
)

// Token represents one annotated position of the document. The annotator
// produces it once; the classifier consumes it by value.
type Token struct {
	// The unmodified word
	Text string `json:"text"`

	// The lemma of the word
	Lemma string `json:"lemma"`

	Pos POS `json:"pos"`

	IsOOV     bool `json:"is_oov"`
	IsDigit   bool `json:"is_digit"`
	IsSpace   bool `json:"is_space"`
	IsPunct   bool `json:"is_punct"`
	LikeURL   bool `json:"like_url"`
	LikeEmail bool `json:"like_email"`

	// Length of Text in runes. Zero means "not provided"; see Len.
	Length int `json:"length,omitempty"`

	// Index of the sentence containing the token, starting at 0.
	Sent int `json:"sent"`
}

// Len returns the surface length in runes, computing it when the annotator
// did not provide one.
func (t Token) Len() int {
	if t.Length > 0 {
		return t.Length
	}
	return utf8.RuneCountInString(t.Text)
}

// Entity is a named-entity span.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Sentence is a segmented sentence. Start and End are token offsets,
// End exclusive.
type Sentence struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Doc is the full annotator output for one input document.
type Doc struct {
	Lang      string     `json:"lang"`
	Tokens    []Token    `json:"tokens"`
	Entities  []Entity   `json:"ents"`
	Sentences []Sentence `json:"sents"`
}

// Segmented reports whether the annotator produced sentence boundaries.
func (d Doc) Segmented() bool {
	return len(d.Sentences) > 0
}

// SentenceOf returns the sentence containing the token at index i.
func (d Doc) SentenceOf(i int) (Sentence, bool) {
	if i < 0 || i >= len(d.Tokens) {
		return Sentence{}, false
	}
	idx := d.Tokens[i].Sent
	if idx >= 0 && idx < len(d.Sentences) {
		s := d.Sentences[idx]
		if i >= s.Start && i < s.End {
			return s, true
		}
	}
	// Fall back to a scan when the sent index disagrees with the offsets.
	for _, s := range d.Sentences {
		if i >= s.Start && i < s.End {
			return s, true
		}
	}
	return Sentence{}, false
}
