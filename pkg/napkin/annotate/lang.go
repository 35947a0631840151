package annotate

import (
	"strings"
	"unicode"

	"github.com/bbalet/stopwords"
)

// detectSample bounds the prefix, in characters, used for language detection.
const detectSample = 20000

// DetectLanguage guesses the language of text among SupportedLanguages by
// stopword coverage: the language whose stopword list removes the most words
// wins. It returns "" when the text has no words or no stopword matches.
func DetectLanguage(text string) string {
	sample := []rune(text)
	if len(sample) > detectSample {
		sample = sample[:detectSample]
	}
	words := countWords(string(sample))
	if words == 0 {
		return ""
	}

	best, bestRemoved := "", 0
	for _, lang := range supported {
		kept := countWords(stopwords.CleanString(string(sample), lang, false))
		if removed := words - kept; removed > bestRemoved {
			best, bestRemoved = lang, removed
		}
	}
	return best
}

func isStopword(word, lang string) bool {
	return strings.TrimSpace(stopwords.CleanString(word, lang, false)) == ""
}

func countWords(s string) int {
	return len(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	}))
}
