package annotate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cognicore/napkin/pkg/napkin/internalerr"
	"github.com/cognicore/napkin/pkg/napkin/token"
)

func TestCheckSupported(t *testing.T) {
	for _, lang := range []string{"en", "EN", "fr", "pt-BR", "en_core_web_md"} {
		if err := CheckSupported(lang); err != nil {
			t.Errorf("CheckSupported(%q): %v", lang, err)
		}
	}
	err := CheckSupported("xx")
	if !errors.Is(err, internalerr.ErrUnsupportedLanguage) {
		t.Errorf("CheckSupported(xx) = %v, want ErrUnsupportedLanguage", err)
	}
}

func TestCheckLanguage(t *testing.T) {
	tests := []struct {
		detected   string
		configured string
		wantErr    bool
	}{
		{"en", "en", false},
		{"en", "en_core_web_md", false},
		{"", "fr", false},
		{"fr", "en", true},
	}
	for _, tt := range tests {
		err := CheckLanguage(token.Doc{Lang: tt.detected}, tt.configured)
		if tt.wantErr {
			if !errors.Is(err, internalerr.ErrLanguageMismatch) {
				t.Errorf("CheckLanguage(%q, %q) = %v, want mismatch", tt.detected, tt.configured, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("CheckLanguage(%q, %q): %v", tt.detected, tt.configured, err)
		}
	}
}

func TestCheckLength(t *testing.T) {
	if err := CheckLength(strings.Repeat("a", MaxLength)); err != nil {
		t.Errorf("text at the limit rejected: %v", err)
	}
	err := CheckLength(strings.Repeat("a", MaxLength+1))
	if !errors.Is(err, internalerr.ErrInputTooLarge) {
		t.Errorf("CheckLength over limit = %v, want ErrInputTooLarge", err)
	}
}

func TestJSONAdapter(t *testing.T) {
	in := `{
		"lang": "en",
		"tokens": [
			{"text": "Dogs", "lemma": "dog", "pos": "noun", "sent": 0},
			{"text": "bark", "lemma": "bark", "pos": "VERB", "sent": 0},
			{"text": ".", "lemma": ".", "pos": "PUNCT", "is_punct": true, "sent": 0}
		],
		"ents": [{"text": "Ada", "label": "PERSON"}],
		"sents": [{"text": "Dogs bark.", "start": 0, "end": 3}]
	}`
	doc, err := JSON{}.Annotate(context.Background(), in)
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if doc.Lang != "en" || len(doc.Tokens) != 3 || len(doc.Entities) != 1 || len(doc.Sentences) != 1 {
		t.Fatalf("unexpected doc: %+v", doc)
	}
	if doc.Tokens[0].Pos != token.Noun {
		t.Errorf("pos should be upper-cased, got %q", doc.Tokens[0].Pos)
	}
}

func TestJSONAdapterRejects(t *testing.T) {
	tests := []string{
		`not json`,
		`{"tokens": [{"text": "a"}], "sents": [{"text": "a", "start": 0, "end": 5}]}`,
		`{"tokens": [], "sents": [{"text": "a", "start": 1, "end": 0}]}`,
	}
	for _, in := range tests {
		if _, err := (JSON{}).Annotate(context.Background(), in); err == nil {
			t.Errorf("Annotate(%s) expected error", in)
		}
	}
}

func newText(t *testing.T, opts TextOptions) *Text {
	t.Helper()
	a, err := NewText(opts)
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	return a
}

func findToken(doc token.Doc, text string) (token.Token, bool) {
	for _, tok := range doc.Tokens {
		if tok.Text == text {
			return tok, true
		}
	}
	return token.Token{}, false
}

func TestTextTokenKinds(t *testing.T) {
	a := newText(t, TextOptions{NoSegment: true})
	doc, err := a.Annotate(context.Background(), "loving #golang with @gopher, mail a@b.com or see https://go.dev 42 times")
	if err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	tests := []struct {
		text  string
		check func(token.Token) bool
	}{
		{"#golang", func(tok token.Token) bool { return tok.IsOOV }},
		{"@gopher", func(tok token.Token) bool { return tok.IsOOV }},
		{",", func(tok token.Token) bool { return tok.IsPunct && tok.Pos == token.Punct && !tok.IsOOV }},
		{"a@b.com", func(tok token.Token) bool { return tok.IsOOV && tok.LikeEmail }},
		{"https://go.dev", func(tok token.Token) bool { return tok.IsOOV && tok.LikeURL }},
		{"42", func(tok token.Token) bool { return tok.IsOOV && tok.IsDigit }},
		{"loving", func(tok token.Token) bool { return tok.Pos == token.Verb && !tok.IsOOV }},
	}
	for _, tt := range tests {
		tok, ok := findToken(doc, tt.text)
		if !ok {
			t.Errorf("token %q missing from %+v", tt.text, doc.Tokens)
			continue
		}
		if !tt.check(tok) {
			t.Errorf("token %q has unexpected annotation %+v", tt.text, tok)
		}
	}
	if doc.Segmented() {
		t.Error("segmentation disabled but sentences produced")
	}
}

func TestTextSpaceTokens(t *testing.T) {
	a := newText(t, TextOptions{NoSegment: true})
	doc, err := a.Annotate(context.Background(), "one\n\ntwo three")
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %+v", doc.Tokens)
	}
	if sp := doc.Tokens[1]; !sp.IsSpace || !sp.IsOOV {
		t.Errorf("line break should be a space token, got %+v", sp)
	}
	if doc.Tokens[2].IsSpace || doc.Tokens[3].IsSpace {
		t.Error("single spaces should not produce tokens")
	}
}

func TestTextLexicon(t *testing.T) {
	a := newText(t, TextOptions{NoSegment: true, Lexicon: []string{"Dog"}})
	doc, err := a.Annotate(context.Background(), "dog yeet")
	if err != nil {
		t.Fatal(err)
	}
	if tok, _ := findToken(doc, "dog"); tok.IsOOV {
		t.Error("lexicon word marked out of vocabulary")
	}
	if tok, _ := findToken(doc, "yeet"); !tok.IsOOV {
		t.Error("word outside lexicon should be out of vocabulary")
	}
}

func TestTextSentences(t *testing.T) {
	a := newText(t, TextOptions{})
	doc, err := a.Annotate(context.Background(), "The dogs were running in the park. The cats were sleeping at home.")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Lang != "en" {
		t.Errorf("lang = %q, want en", doc.Lang)
	}
	if len(doc.Sentences) != 2 {
		t.Fatalf("expected 2 sentences, got %+v", doc.Sentences)
	}
	if got := strings.TrimSpace(doc.Sentences[1].Text); got != "The cats were sleeping at home." {
		t.Errorf("second sentence = %q", got)
	}
	last := doc.Sentences[len(doc.Sentences)-1]
	if last.End != len(doc.Tokens) {
		t.Errorf("sentences should cover all tokens: %+v of %d", last, len(doc.Tokens))
	}
	for i := range doc.Tokens {
		s, ok := doc.SentenceOf(i)
		if !ok || i < s.Start || i >= s.End {
			t.Errorf("token %d not inside its sentence %+v", i, s)
		}
	}

	dogs, ok := findToken(doc, "dogs")
	if !ok || dogs.Lemma != "dog" || dogs.Pos != token.Noun {
		t.Errorf("dogs = %+v, want noun with lemma dog", dogs)
	}
	running, _ := findToken(doc, "running")
	if running.Pos != token.Verb || running.Lemma != "run" {
		t.Errorf("running = %+v, want verb with lemma run", running)
	}
	if the, _ := findToken(doc, "The"); the.Pos != token.Other {
		t.Errorf("stopword should not be tagged as content word: %+v", the)
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"the cat is on the table and it is happy with the dog", "en"},
		{"le chat est sur la table et il est content avec le chien", "fr"},
		{"", ""},
		{"12345 67890", ""},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.text); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestFindEntities(t *testing.T) {
	got := findEntities("It costs $5 and 20% of 3 items on 2024-01-02, the 3rd time.")
	want := []token.Entity{
		{Text: "$5", Label: "MONEY"},
		{Text: "20%", Label: "PERCENT"},
		{Text: "3", Label: "CARDINAL"},
		{Text: "2024-01-02", Label: "DATE"},
		{Text: "3rd", Label: "ORDINAL"},
	}
	if len(got) != len(want) {
		t.Fatalf("findEntities = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entity %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTextCancelled(t *testing.T) {
	a := newText(t, TextOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Annotate(ctx, "Some text."); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
