package render

import "testing"

func TestToHTML(t *testing.T) {
	got := ToHTML("Get AI-generated trivia with **attitude**!")
	want := "<p>Get AI-generated trivia with <strong>attitude</strong>!</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
