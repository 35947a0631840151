package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cognicore/napkin/pkg/napkin/token"
)

// JSON reads documents already annotated by an external pipeline, in the
// token.Doc layout:
//
//	{
//	  "lang": "en",
//	  "tokens": [{"text": "Dogs", "lemma": "dog", "pos": "NOUN", "is_oov": false, "sent": 0}, ...],
//	  "ents": [{"text": "Ada Lovelace", "label": "PERSON"}],
//	  "sents": [{"text": "Dogs bark.", "start": 0, "end": 3}]
//	}
type JSON struct{}

// Annotate implements Adapter.
func (JSON) Annotate(ctx context.Context, text string) (token.Doc, error) {
	var doc token.Doc
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&doc); err != nil {
		return token.Doc{}, fmt.Errorf("decode annotated document: %w", err)
	}

	for i := range doc.Tokens {
		doc.Tokens[i].Pos = token.POS(strings.ToUpper(string(doc.Tokens[i].Pos)))
	}
	for i, s := range doc.Sentences {
		if s.Start < 0 || s.End < s.Start || s.End > len(doc.Tokens) {
			return token.Doc{}, fmt.Errorf("sentence %d: offsets [%d,%d) out of range", i, s.Start, s.End)
		}
	}
	return doc, nil
}
