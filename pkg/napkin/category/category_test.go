package category

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"verb", Verb, false},
		{" NOUN ", Noun, false},
		{"all", All, false},
		{"span", Span, false},
		{"labels", Labels, false},
		{"label:person", Label("PERSON"), false},
		{"label:", "", true},
		{"adjective", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLabel(t *testing.T) {
	c := Label("person")
	if c != "label:PERSON" {
		t.Fatalf("Label(person) = %q", c)
	}
	typ, ok := c.LabelType()
	if !ok || typ != "PERSON" {
		t.Errorf("LabelType() = %q, %v", typ, ok)
	}
	if Verb.IsLabel() {
		t.Error("verb is not a label category")
	}
}

func TestLabelSet(t *testing.T) {
	set := NewLabelSet([]string{"person", " ORG ", ""})
	if !set.Contains("Person") {
		t.Error("expected case-insensitive match for PERSON")
	}
	if set.Contains("DATE") {
		t.Error("DATE not in set")
	}
	cats := set.Categories()
	if len(cats) != 2 || cats[0] != "label:ORG" || cats[1] != "label:PERSON" {
		t.Errorf("Categories() = %v", cats)
	}
}

func TestBaseIsACopy(t *testing.T) {
	b := Base()
	b[0] = "mutated"
	if Base()[0] != Verb {
		t.Error("Base() must not expose the internal slice")
	}
}
