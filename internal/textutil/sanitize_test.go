package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"Demo Scene.mp4": "Demo Scene.mp4",
		"a/b\\c:d*e":     "a-b-c-d-e",
		"  spaced  ":     "spaced",
		`q?u"o<t>e|d`:    "quoted",
		"":               "",
	}
	for input, want := range cases {
		if got := SanitizeFileName(input); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestStripInvisibleRemovesFormattingRunes(t *testing.T) {
	input := "x\u200b = \u20685\u2069 + y\u00adz"
	got := StripInvisible(input)
	want := "x = 5 + yz"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestStripInvisibleConvertsNoBreakSpace(t *testing.T) {
	if got := StripInvisible("a\u00a0b"); got != "a b" {
		t.Fatalf("got %q", got)
	}
}

func TestStripInvisibleLeavesPlainTextAlone(t *testing.T) {
	input := "class Demo(Scene):\n    pass\n"
	if got := StripInvisible(input); got != input {
		t.Fatalf("plain text changed: %q", got)
	}
}

func TestCountInvisible(t *testing.T) {
	if got := CountInvisible("a\u200bb\ufeffc"); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if got := CountInvisible("clean"); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}
