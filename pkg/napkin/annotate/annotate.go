// Package annotate turns input documents into annotated token streams.
//
// The annotator is an external collaborator: JSON reads the output of a
// full NLP pipeline exported to disk, Text is a lightweight built-in
// fallback for plain text.
package annotate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/napkin/pkg/napkin/internalerr"
	"github.com/cognicore/napkin/pkg/napkin/token"
)

// MaxLength caps the document size, in characters, handed to an annotator.
const MaxLength = 2000000

// Adapter produces the token, entity and sentence streams of a document.
type Adapter interface {
	Annotate(ctx context.Context, text string) (token.Doc, error)
}

var supported = []string{"en", "fr", "es", "de", "it", "pt", "nl"}

// SupportedLanguages lists the language selectors accepted by the tool.
func SupportedLanguages() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

// CheckSupported validates a language selector.
func CheckSupported(lang string) error {
	norm := normalizeLang(lang)
	for _, l := range supported {
		if l == norm {
			return nil
		}
	}
	return &internalerr.UnsupportedLanguageError{Lang: lang}
}

// CheckLanguage fails when the detected document language differs from the
// configured one. A document without a detected language passes.
func CheckLanguage(doc token.Doc, configured string) error {
	if doc.Lang == "" {
		return nil
	}
	if normalizeLang(doc.Lang) != normalizeLang(configured) {
		return &internalerr.LanguageMismatchError{Detected: doc.Lang, Configured: configured}
	}
	return nil
}

// CheckLength rejects documents over MaxLength characters.
func CheckLength(text string) error {
	if n := utf8.RuneCountInString(text); n > MaxLength {
		return fmt.Errorf("%w: %d characters exceeds limit of %d", internalerr.ErrInputTooLarge, n, MaxLength)
	}
	return nil
}

// normalizeLang maps "en_core_web_md"-style or "en-US" tags to "en".
func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
