package testsupport

import (
	"context"
	"testing"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/queue"
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

// NewAnalysis creates a pending analysis item for tests using the provided store.
func NewAnalysis(t testing.TB, store *queue.Store, objectKey, userID string, questionNum int) *queue.Item {
	t.Helper()

	item, err := store.NewAnalysis(context.Background(), objectKey, userID, questionNum, "female")
	if err != nil {
		t.Fatalf("store.NewAnalysis: %v", err)
	}
	return item
}
