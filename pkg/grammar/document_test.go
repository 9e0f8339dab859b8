package grammar

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeJSONKeepsOrder(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{"z":1,"a":{"y":true,"b":null},"m":[1.5,"s"]}`))
	if err != nil {
		t.Fatalf("DecodeJSON err=%v", err)
	}

	want := Object{
		{Key: "z", Value: json.Number("1")},
		{Key: "a", Value: Object{{Key: "y", Value: true}, {Key: "b", Value: nil}}},
		{Key: "m", Value: Array{json.Number("1.5"), "s"}},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSONDuplicateKeys(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{"match":"first","name":"n","match":"last"}`))
	if err != nil {
		t.Fatalf("DecodeJSON err=%v", err)
	}

	obj, ok := doc.(Object)
	if !ok {
		t.Fatalf("doc=%T want Object", doc)
	}
	if diff := cmp.Diff([]string{"match", "name"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := obj.Get("match"); v != "last" {
		t.Fatalf("match=%v want last", v)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          ``,
		"truncated":      `{"patterns": [`,
		"trailing value": `{} {}`,
		"trailing junk":  `{"a":1} x`,
		"bad token":      `{"a": tru}`,
		"stray close":    `]`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeJSON([]byte(in)); err == nil {
				t.Fatalf("DecodeJSON(%q) expected error", in)
			}
		})
	}
}

func TestDecodeJSONScalars(t *testing.T) {
	v, err := DecodeJSON([]byte(` "x" `))
	if err != nil || v != "x" {
		t.Fatalf("DecodeJSON string=%v err=%v", v, err)
	}

	v, err = DecodeJSON([]byte(`null`))
	if err != nil || v != nil {
		t.Fatalf("DecodeJSON null=%v err=%v", v, err)
	}
}

func TestDecodeYAML(t *testing.T) {
	src := `
scopeName: source.y
repository:
  zeta:
    match: z+
    captures:
      "1": {name: cap}
  alpha: &rule
    begin: '\('
    end: '\)'
  beta: *rule
patterns:
  - include: '#zeta'
  - match: "yes"
    disabled: 1
`
	doc, err := DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("DecodeYAML err=%v", err)
	}

	obj, ok := doc.(Object)
	if !ok {
		t.Fatalf("doc=%T want Object", doc)
	}
	if diff := cmp.Diff([]string{"scopeName", "repository", "patterns"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}

	repo, _ := obj.Get("repository")
	if diff := cmp.Diff([]string{"zeta", "alpha", "beta"}, repo.(Object).Keys()); diff != "" {
		t.Fatalf("repository keys mismatch (-want +got):\n%s", diff)
	}

	got := flatten(Extract(doc))
	want := []located{
		{"z+", "repository.zeta.match"},
		{`\(`, "repository.alpha.begin"},
		{`\)`, "repository.alpha.end"},
		{`\(`, "repository.beta.begin"},
		{`\)`, "repository.beta.end"},
		{"yes", "patterns[1].match"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("extract mismatch (-want +got):\n%s", diff)
	}

	pats, _ := obj.Get("patterns")
	second := pats.(Array)[1].(Object)
	if disabled, _ := second.Get("disabled"); disabled != 1 {
		t.Fatalf("disabled=%v (%T) want int 1", disabled, disabled)
	}
}

func TestDecodeYAMLErrors(t *testing.T) {
	if _, err := DecodeYAML([]byte("a: [1, 2")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeYAMLEmpty(t *testing.T) {
	_, err := DecodeYAML([]byte(""))
	if err == nil || err.Error() != "empty YAML document" {
		t.Fatalf("err=%v want empty YAML document", err)
	}
}
