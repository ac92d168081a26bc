package label

import (
	"testing"

	"github.com/OFFIS-RIT/kblink/pkg/common"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  common.Label
	}{
		{name: "already normalized", input: "new_york_city", want: "new_york_city"},
		{name: "spaces", input: "new york city", want: "new_york_city"},
		{name: "apostrophe period hyphen", input: "o'neil st. jean-luc", want: "o_neil_st__jean_luc"},
		{name: "trailing newline", input: "barack obama\n", want: "barack_obama"},
		{name: "leading newline", input: "\nfoo", want: "foo"},
		{name: "case preserved", input: "Barack Obama", want: "Barack_Obama"},
		{name: "empty", input: "", want: ""},
		{name: "tabs untouched", input: "a\tb", want: "a\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Fatalf("unexpected label: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeFold(t *testing.T) {
	if got := NormalizeFold("Barack Obama\n"); got != "barack_obama" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"foo",
		"Barack Obama",
		"o'neil st. jean-luc\n",
		"\n\n- . '\n",
		"already_normalized",
		"mixed\nnewline inside\n",
		"ÄÖÜ straße",
	}

	for _, normalize := range []Normalizer{Normalize, NormalizeFold} {
		for _, in := range inputs {
			once := normalize(in)
			twice := normalize(string(once))
			if once != twice {
				t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
			}
		}
	}
}
