package stage

import (
	"errors"
	"testing"

	"voiceblog/internal/services"
)

func TestParseSetCanonicalizes(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
	}{
		{"default", nil, "1,2,3"},
		{"all", []string{"all"}, "1,2,3"},
		{"numbers", []string{"3,1"}, "1,3"},
		{"names", []string{"compose", "Transcribe"}, "2,3"},
		{"mixed with spaces", []string{" 1 , compose "}, "1,3"},
		{"single", []string{"3"}, "3"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			set, err := ParseSet(tc.values...)
			if err != nil {
				t.Fatalf("ParseSet: %v", err)
			}
			if set.String() != tc.want {
				t.Fatalf("got %q want %q", set.String(), tc.want)
			}
		})
	}
}

func TestParseSetRejectsInvalid(t *testing.T) {
	for _, values := range [][]string{{"4"}, {"0"}, {"publish"}, {"1,1"}, {"preprocess,1"}, {"all,2"}} {
		_, err := ParseSet(values...)
		if err == nil {
			t.Fatalf("expected error for %v", values)
		}
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected validation error for %v, got %v", values, err)
		}
	}
}

func TestKindLabels(t *testing.T) {
	if Transcribe.Label() != "Transcribe" {
		t.Fatalf("unexpected label %q", Transcribe.Label())
	}
	if Kind(9).Valid() {
		t.Fatal("kind 9 should be invalid")
	}
	if got := (Set{Preprocess, Compose}).Names(); got[0] != "preprocess" || got[1] != "compose" {
		t.Fatalf("unexpected names %v", got)
	}
	if Failed.String() != "failed" || Outcome(0).String() != "pending" {
		t.Fatal("unexpected outcome strings")
	}
}
