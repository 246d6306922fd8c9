package scene

import (
	"errors"
	"testing"

	"sceneforge/internal/services"
)

func TestEntryPointPrefersSceneSubclass(t *testing.T) {
	source := `
class Helper:
    pass

class Demo(Scene):
    def construct(self):
        pass
`
	got, err := EntryPoint(source)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Demo" {
		t.Fatalf("got %q, want Demo", got)
	}
}

func TestEntryPointFallsBackToFirstClass(t *testing.T) {
	source := "class Thing(Base):\n    pass\n"
	got, err := EntryPoint(source)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Thing" {
		t.Fatalf("got %q", got)
	}
}

func TestEntryPointHandlesSubclassedScenes(t *testing.T) {
	source := "class Moving(MovingCameraScene):\n    pass\n"
	got, err := EntryPoint(source)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Moving" {
		t.Fatalf("got %q", got)
	}
}

func TestEntryPointMissingClass(t *testing.T) {
	_, err := EntryPoint("x = 1\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestSanitizeStripsBidiControls(t *testing.T) {
	source := "class ‮Demo‬(Scene):\n    pass\n"
	cleaned := Sanitize(source)
	got, err := EntryPoint(cleaned)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Demo" {
		t.Fatalf("got %q", got)
	}
}

func TestQualityFlag(t *testing.T) {
	cases := map[string]string{
		"480p":      "-ql",
		"720p":      "-qm",
		"1080p":     "-qh",
		"1440p":     "-qp",
		"4K":        "-qk",
		"8K":        "-qk",
		"1920x1080": "-r1920x1080",
		"potato":    "-qm",
		"":          "-qm",
	}
	for input, want := range cases {
		if got := QualityFlag(input); got != want {
			t.Errorf("QualityFlag(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestAcceptedArtifact(t *testing.T) {
	accepted := []string{"Demo.mp4", "scene.GIF", "out.webm", "frame.png", "clip.mov"}
	for _, name := range accepted {
		if !AcceptedArtifact(name) {
			t.Errorf("%q should be accepted", name)
		}
	}
	rejected := []string{"notes.txt", "partial", "movie.mkv", "archive.tar.gz"}
	for _, name := range rejected {
		if AcceptedArtifact(name) {
			t.Errorf("%q should be rejected", name)
		}
	}
}
