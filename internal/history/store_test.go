package history_test

import (
	"context"
	"testing"

	"sceneforge/internal/history"
	"sceneforge/internal/testsupport"
)

func TestBeginAndFinish(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record, err := store.Begin(ctx, history.NewJob{
		Class:      "render",
		SceneName:  "Demo",
		EntryPoint: "Demo",
		Quality:    "1080p",
		FrameRate:  60,
		Format:     "mp4",
		Command:    `manim render -qh "scene.py" Demo`,
	})
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if record.JobID == "" {
		t.Fatal("expected generated job id")
	}
	if record.State != history.StateRunning {
		t.Fatalf("expected running state, got %s", record.State)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}

	if err := store.Finish(ctx, record.JobID, history.StateSucceeded, "/renders/Demo.mp4", ""); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	finished, err := store.GetByJobID(ctx, record.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if finished.State != history.StateSucceeded {
		t.Fatalf("expected succeeded, got %s", finished.State)
	}
	if finished.ArtifactPath != "/renders/Demo.mp4" {
		t.Fatalf("unexpected artifact path %q", finished.ArtifactPath)
	}
	if finished.CompletedAt.IsZero() {
		t.Fatal("expected completion timestamp")
	}
}

func TestFinishRejectsNonTerminalState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	record := testsupport.BeginJob(t, store, "render", "Demo")
	if err := store.Finish(context.Background(), record.JobID, history.StateRunning, "", ""); err == nil {
		t.Fatal("expected error for non-terminal state")
	}
}

func TestFinishUnknownJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	err := store.Finish(context.Background(), "no-such-job", history.StateFailed, "", "boom")
	if err == nil {
		t.Fatal("expected error for unknown job id")
	}
}

func TestListNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.BeginJob(t, store, "render", "SceneA")
	second := testsupport.BeginJob(t, store, "preview", "SceneB")

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].JobID != second.JobID || records[1].JobID != first.JobID {
		t.Fatal("expected newest-first ordering")
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 1 || limited[0].JobID != second.JobID {
		t.Fatal("expected limit to keep the newest record")
	}
}

func TestCloseStale(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	record := testsupport.BeginJob(t, store, "render", "Demo")

	closed, err := store.CloseStale(ctx)
	if err != nil {
		t.Fatalf("CloseStale: %v", err)
	}
	if closed != 1 {
		t.Fatalf("expected 1 stale record closed, got %d", closed)
	}

	failed, err := store.GetByJobID(ctx, record.JobID)
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if failed.State != history.StateFailed {
		t.Fatalf("expected failed, got %s", failed.State)
	}
	if failed.ErrorMessage != history.DaemonStopMessage {
		t.Fatalf("unexpected error message %q", failed.ErrorMessage)
	}
}

func TestSummarize(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	running := testsupport.BeginJob(t, store, "render", "SceneA")
	done := testsupport.BeginJob(t, store, "render", "SceneB")
	cancelled := testsupport.BeginJob(t, store, "preview", "SceneC")

	if err := store.Finish(ctx, done.JobID, history.StateSucceeded, "/renders/b.mp4", ""); err != nil {
		t.Fatalf("Finish succeeded: %v", err)
	}
	if err := store.Finish(ctx, cancelled.JobID, history.StateCancelled, "", ""); err != nil {
		t.Fatalf("Finish cancelled: %v", err)
	}
	_ = running

	summary, err := store.Summarize(ctx)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary.Total != 3 || summary.Running != 1 || summary.Succeeded != 1 || summary.Cancelled != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.BeginJob(t, store, "render", "Demo")
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty history, got %d records", len(records))
	}
}
