package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "stubs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_RecordAndFresh(t *testing.T) {
	store := openTestStore(t)

	fresh, err := store.Fresh("pkg/a.py", "src1", "opt1")
	if err != nil {
		t.Fatalf("fresh: %v", err)
	}
	if fresh {
		t.Fatal("unknown source must not be fresh")
	}

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Record(Entry{
		SourcePath:  "pkg/a.py",
		SourceHash:  "src1",
		OptionsHash: "opt1",
		StubHash:    "stub1",
		RunID:       "run-1",
		GeneratedAt: at,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	tests := []struct {
		name       string
		sourceHash string
		optsHash   string
		want       bool
	}{
		{"unchanged", "src1", "opt1", true},
		{"source changed", "src2", "opt1", false},
		{"options changed", "src1", "opt2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Fresh("pkg/a.py", tt.sourceHash, tt.optsHash)
			if err != nil {
				t.Fatalf("fresh: %v", err)
			}
			if got != tt.want {
				t.Errorf("Fresh() = %v, want %v", got, tt.want)
			}
		})
	}

	entry, ok, err := store.Lookup("pkg/a.py")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if entry.RunID != "run-1" || !entry.GeneratedAt.Equal(at) {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestStore_RecordOverwritesAndForget(t *testing.T) {
	store := openTestStore(t)

	for _, run := range []string{"run-1", "run-2"} {
		if err := store.Record(Entry{SourcePath: "a.py", SourceHash: run, OptionsHash: "o", RunID: run}); err != nil {
			t.Fatalf("record %s: %v", run, err)
		}
	}
	entry, ok, err := store.Lookup("a.py")
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if entry.RunID != "run-2" || entry.SourceHash != "run-2" {
		t.Errorf("expected latest record, got %+v", entry)
	}

	if err := store.Forget("a.py"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if _, ok, err := store.Lookup("a.py"); err != nil || ok {
		t.Errorf("expected record to be gone, ok=%v err=%v", ok, err)
	}
	if err := store.Forget("missing.py"); err != nil {
		t.Errorf("forgetting an unknown path must succeed: %v", err)
	}
}

func TestStore_ReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stubs.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Record(Entry{SourcePath: "a.py", SourceHash: "s", OptionsHash: "o", RunID: "r"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	fresh, err := reopened.Fresh("a.py", "s", "o")
	if err != nil || !fresh {
		t.Errorf("expected fresh record after reopen, fresh=%v err=%v", fresh, err)
	}
}

func TestOpenRejectsInvalidPaths(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := Open(t.TempDir()); err == nil {
		t.Error("expected error for directory path")
	}
}

func TestHash(t *testing.T) {
	if Hash([]byte("ab"), []byte("c")) == Hash([]byte("a"), []byte("bc")) {
		t.Error("part boundaries must change the hash")
	}
	if Hash([]byte("x")) != Hash([]byte("x")) {
		t.Error("hash must be deterministic")
	}
}
