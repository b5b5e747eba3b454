package testsupport

import (
	"testing"

	"labelprint/internal/config"
	"labelprint/internal/history"
)

// MustOpenHistory opens the history database under the config's state
// directory and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
