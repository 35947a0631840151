package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cognicore/napkin/pkg/napkin/category"
	"github.com/cognicore/napkin/pkg/napkin/store"
)

const (
	// DocumentFormat identifies napkin JSON reports.
	DocumentFormat = "napkin"
	// DocumentVersion is bumped on incompatible layout changes.
	DocumentVersion = "1"
)

// JSONRenderer writes a report as one JSON document:
//
//	{"format":"napkin","version":"1","limit":100,
//	 "categories":{"verb":[["run",3],["walk",1]],"noun":[...]}}
//
// Category order follows the report.
type JSONRenderer struct {
	Indent string
}

// Render implements Renderer.
func (r JSONRenderer) Render(w io.Writer, rep Report) error {
	data, err := json.Marshal(document{Limit: rep.Limit, Sections: rep.Sections})
	if err != nil {
		return err
	}
	if r.Indent != "" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", r.Indent); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// DecodeJSON reads a document written by JSONRenderer back into a Report,
// preserving category and entry order.
func DecodeJSON(rd io.Reader) (Report, error) {
	var doc document
	if err := json.NewDecoder(rd).Decode(&doc); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return Report{Limit: doc.Limit, Sections: doc.Sections}, nil
}

type document struct {
	Limit    int
	Sections []Section
}

type header struct {
	Format     string          `json:"format"`
	Version    string          `json:"version"`
	Limit      int             `json:"limit"`
	Categories json.RawMessage `json:"categories"`
}

func (d document) MarshalJSON() ([]byte, error) {
	var cats bytes.Buffer
	cats.WriteByte('{')
	for i, sec := range d.Sections {
		if i > 0 {
			cats.WriteByte(',')
		}
		name, err := json.Marshal(string(sec.Category))
		if err != nil {
			return nil, err
		}
		cats.Write(name)
		cats.WriteByte(':')

		pairs := make([]pair, len(sec.Entries))
		for j, e := range sec.Entries {
			pairs[j] = pair(e)
		}
		list, err := json.Marshal(pairs)
		if err != nil {
			return nil, err
		}
		cats.Write(list)
	}
	cats.WriteByte('}')

	return json.Marshal(header{
		Format:     DocumentFormat,
		Version:    DocumentVersion,
		Limit:      d.Limit,
		Categories: cats.Bytes(),
	})
}

func (d *document) UnmarshalJSON(data []byte) error {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	if h.Format != DocumentFormat {
		return fmt.Errorf("unexpected format %q", h.Format)
	}
	if h.Version != DocumentVersion {
		return fmt.Errorf("unsupported version %q", h.Version)
	}
	d.Limit = h.Limit
	d.Sections = nil

	if len(h.Categories) == 0 || string(h.Categories) == "null" {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(h.Categories))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("categories: expected object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("categories: expected name, got %v", tok)
		}
		var pairs []pair
		if err := dec.Decode(&pairs); err != nil {
			return fmt.Errorf("category %s: %w", name, err)
		}
		sec := Section{Category: category.Category(name), Entries: make([]store.Entry, len(pairs))}
		for i, p := range pairs {
			sec.Entries[i] = store.Entry(p)
		}
		d.Sections = append(d.Sections, sec)
	}
	_, err = dec.Token()
	return err
}

// pair encodes an entry as a [term, count] array.
type pair struct {
	Term  string
	Count int64
}

func (p pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{p.Term, p.Count})
}

func (p *pair) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected [term, count], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Term); err != nil {
		return fmt.Errorf("term: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Count); err != nil {
		return fmt.Errorf("count: %w", err)
	}
	return nil
}
