package result

import (
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	r := New("Spy City", "A secret agent infiltrates Paris", -0.25)

	if r.Title() != "Spy City" {
		t.Errorf("Title() = %q", r.Title())
	}
	if r.Plot() != "A secret agent infiltrates Paris" {
		t.Errorf("Plot() = %q", r.Plot())
	}
	if r.Score() != -0.25 {
		t.Errorf("Score() = %f, negative cosine must be kept as is", r.Score())
	}
}

func TestColumns(t *testing.T) {
	want := []string{"title", "plot", "score"}
	if got := Columns(); !slices.Equal(got, want) {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
}
