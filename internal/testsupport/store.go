package testsupport

import (
	"context"
	"testing"

	"cadenza/internal/catalog"
	"cadenza/internal/config"
)

// MustOpenStore opens a catalog.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedExperiences caches listing rows for tests using the provided store.
func SeedExperiences(t testing.TB, store *catalog.Store, experiences ...catalog.Experience) {
	t.Helper()

	if err := store.UpsertExperiences(context.Background(), experiences); err != nil {
		t.Fatalf("store.UpsertExperiences: %v", err)
	}
}
