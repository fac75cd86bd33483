package testsupport

import (
	"testing"

	"autobbq/internal/config"
	"autobbq/internal/queue"
	"autobbq/internal/videos"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenVideoStore opens a videos.Store sharing the queue database.
func MustOpenVideoStore(t testing.TB, store *queue.Store) *videos.Store {
	t.Helper()

	videoStore, err := videos.NewStore(store.DB())
	if err != nil {
		t.Fatalf("videos.NewStore: %v", err)
	}
	return videoStore
}
