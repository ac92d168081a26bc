package util

import (
	"reflect"
	"testing"
)

func TestGetEnvList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  []string
	}{
		{name: "unset", set: false, want: nil},
		{name: "blank", value: "  ", set: true, want: nil},
		{name: "single", value: "train.tsv", set: true, want: []string{"train.tsv"}},
		{
			name:  "trims and skips empty",
			value: " train.tsv, ,test.tsv,s3://bucket/seed.out ",
			set:   true,
			want:  []string{"train.tsv", "test.tsv", "s3://bucket/seed.out"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.set {
				t.Setenv("KBLINK_TEST_LIST", tt.value)
			}
			got := GetEnvList("KBLINK_TEST_LIST")
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("unexpected list: got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("KBLINK_TEST_BOOL", "true")
	if !GetEnvBool("KBLINK_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("KBLINK_TEST_BOOL", "yes")
	if GetEnvBool("KBLINK_TEST_BOOL", false) {
		t.Fatal("expected default for unrecognized value")
	}
}

func TestGetEnvString(t *testing.T) {
	if got := GetEnvString("KBLINK_TEST_UNSET_STRING", "binary"); got != "binary" {
		t.Fatalf("expected default, got %q", got)
	}
	t.Setenv("KBLINK_TEST_STRING", "text")
	if got := GetEnvString("KBLINK_TEST_STRING", "binary"); got != "text" {
		t.Fatalf("expected env value, got %q", got)
	}
}
