package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"dataprep/internal/dataset"
	"dataprep/internal/ledger"
)

// MustOpenLedger opens the ledger for a layout and registers cleanup.
func MustOpenLedger(t testing.TB, layout dataset.Layout) *ledger.Store {
	t.Helper()

	store, err := ledger.Open(context.Background(), layout.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenTempLedger opens a ledger inside a fresh temp directory.
func MustOpenTempLedger(t testing.TB) *ledger.Store {
	t.Helper()
	return MustOpenLedger(t, dataset.Layout{StateDir: filepath.Join(t.TempDir(), "state")})
}
