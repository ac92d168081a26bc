package label

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/kblink/pkg/common"
)

func TestLoadTargetLabels(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"Q1","en_label":"foo","freebase_ids":["m1"]}`,
		`{"id":"Q2","en_label":"Big Apple","en_aliases":["new york","NYC"],"freebase_ids":["m2","m3"],"en_wikipedia_page":{"title":"New York City","url":"https://en.wikipedia.org/wiki/New_York_City"}}`,
		`{"id":"Q3","en_label":"foo","freebase_ids":["m4"]}`,
		`{"id":"Q4","en_label":"orphan"}`,
		`{"id":"Q5","en_label":"foo","freebase_ids":["m1"]}`,
		`{"id":"Q6","en_wikipedia_page":{"url":"https://example.org"}}`,
	}, "\n") + "\n"

	got, stats, err := LoadTargetLabels(context.Background(), strings.NewReader(input), TargetOptions{Name: "wikidata.json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		label common.Label
		want  []common.TargetTuple
	}{
		{label: "foo", want: []common.TargetTuple{{"m1"}, {"m4"}}},
		{label: "Big_Apple", want: []common.TargetTuple{{"m2", "m3"}}},
		{label: "new_york", want: []common.TargetTuple{{"m2", "m3"}}},
		{label: "NYC", want: []common.TargetTuple{{"m2", "m3"}}},
		{label: "New_York_City", want: []common.TargetTuple{{"m2", "m3"}}},
		{label: "orphan", want: []common.TargetTuple{{}}},
	}
	for _, tt := range tests {
		set, ok := got[tt.label]
		if !ok {
			t.Fatalf("missing label %q", tt.label)
		}
		tuples := set.Tuples()
		if len(tuples) != len(tt.want) {
			t.Fatalf("label %q: got %v, want %v", tt.label, tuples, tt.want)
		}
		for i := range tuples {
			if tuples[i].Key() != tt.want[i].Key() {
				t.Fatalf("label %q: got %v, want %v", tt.label, tuples, tt.want)
			}
		}
	}

	if len(got) != len(tests) {
		t.Fatalf("expected %d labels, got %d: %v", len(tests), len(got), got)
	}
	if stats.Records != 6 || stats.Labels != len(tests) || stats.Names != 8 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestLoadTargetLabelsFold(t *testing.T) {
	input := `{"en_label":"Big Apple","en_aliases":["big apple"],"freebase_ids":["m2"]}` + "\n"
	got, _, err := LoadTargetLabels(context.Background(), strings.NewReader(input), TargetOptions{Normalize: NormalizeFold})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got["big_apple"].Len() != 1 {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestLoadTargetLabelsMalformed(t *testing.T) {
	input := `{"en_label":"foo","freebase_ids":["m1"]}` + "\n" + `{"en_label": ` + "\n"
	_, _, err := LoadTargetLabels(context.Background(), strings.NewReader(input), TargetOptions{Name: "wikidata.json"})
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Line != 2 {
		t.Fatalf("expected ParseError on line 2, got %v", err)
	}
}

func TestLoadTargetIDLabels(t *testing.T) {
	input := strings.Join([]string{
		`{"en_label":"foo","freebase_ids":["m1","m2"]}`,
		`{"freebase_ids":["m3"]}`,
		`{"en_label":"bar","freebase_ids":["m2"]}`,
	}, "\n")

	got, stats, err := LoadTargetIDLabels(context.Background(), strings.NewReader(input), "wikidata.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[common.TargetID]string{"m1": "foo", "m2": "bar"}
	if len(got) != len(want) || got["m1"] != "foo" || got["m2"] != "bar" {
		t.Fatalf("unexpected labels: got %v, want %v", got, want)
	}
	if stats.Records != 3 || stats.Unlabeled != 1 || stats.IDs != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
