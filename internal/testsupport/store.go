package testsupport

import (
	"context"
	"testing"

	"sceneforge/internal/config"
	"sceneforge/internal/history"
)

// MustOpenStore opens a history.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// BeginJob inserts a running job record for tests using the provided store.
func BeginJob(t testing.TB, store *history.Store, class, entryPoint string) *history.Record {
	t.Helper()

	record, err := store.Begin(context.Background(), history.NewJob{
		Class:      class,
		SceneName:  entryPoint,
		EntryPoint: entryPoint,
		Quality:    "720p",
		FrameRate:  30,
		Format:     "mp4",
	})
	if err != nil {
		t.Fatalf("store.Begin: %v", err)
	}
	return record
}
