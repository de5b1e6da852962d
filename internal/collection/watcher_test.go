package collection

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/kwm/internal/storage"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

// startWatch runs Watch until the test ends.
func startWatch(t *testing.T, db *DB, store storage.Provider, dir string, cb EventCallback) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, db, store, dir, testLogger(), cb)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func hasNote(db *DB, path string) bool {
	cs, _ := db.GetChecksum(path)
	return cs != ""
}

func TestWatcher_NewFileImported(t *testing.T) {
	dir, store := testVault(t)
	db := testDB(t)

	var mu sync.Mutex
	var events []string
	startWatch(t, db, store, dir, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})

	writeNote(t, dir, "new.md", "猫")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasNote(db, "new.md")
	}, "new file not imported by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == ChangeCreated+":new.md" {
				return true
			}
		}
		return false
	}, "expected created:new.md callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dir, store := testVault(t)
	db := testDB(t)
	startWatch(t, db, store, dir, nil)

	sub := filepath.Join(dir, "Sentences")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	writeNote(t, dir, "Sentences/deep.md", "猫")

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasNote(db, "Sentences/deep.md")
	}, "file in new subdir not imported by watcher")

	n := noteByPath(t, db, "Sentences/deep.md")
	if n.Deck != "Sentences" {
		t.Errorf("deck = %q, want Sentences", n.Deck)
	}
}

func TestWatcher_DeleteRemovesNote(t *testing.T) {
	dir, store := testVault(t)
	db := testDB(t)

	writeNote(t, dir, "del.md", "猫")
	if _, err := Sync(db, store, testLogger()); err != nil {
		t.Fatal(err)
	}
	if !hasNote(db, "del.md") {
		t.Fatal("precondition: file should be imported")
	}

	startWatch(t, db, store, dir, nil)
	if err := os.Remove(filepath.Join(dir, "del.md")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasNote(db, "del.md")
	}, "deleted file still in collection")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	dir, store := testVault(t)
	db := testDB(t)

	writeNote(t, dir, "old.md", "猫")
	if _, err := Sync(db, store, testLogger()); err != nil {
		t.Fatal(err)
	}

	startWatch(t, db, store, dir, nil)
	if err := os.Rename(filepath.Join(dir, "old.md"), filepath.Join(dir, "renamed.md")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasNote(db, "old.md") && hasNote(db, "renamed.md")
	}, "rename reconciliation failed: old path should be removed and new path imported")
}

func TestWatcher_DirRenameReconciles(t *testing.T) {
	dir, store := testVault(t)
	db := testDB(t)

	writeNote(t, dir, "Words/cat.md", "猫")
	if _, err := Sync(db, store, testLogger()); err != nil {
		t.Fatal(err)
	}

	startWatch(t, db, store, dir, nil)
	if err := os.Rename(filepath.Join(dir, "Words"), filepath.Join(dir, "Vocab")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasNote(db, "Words/cat.md") && hasNote(db, "Vocab/cat.md")
	}, "stale note Words/cat.md should be removed after directory rename")

	if n := noteByPath(t, db, "Vocab/cat.md"); n.Deck != "Vocab" {
		t.Errorf("deck = %q, want Vocab", n.Deck)
	}
}

func TestWatcher_DirRemoveReconciles(t *testing.T) {
	dir, store := testVault(t)
	db := testDB(t)

	writeNote(t, dir, "Words/cat.md", "猫")
	writeNote(t, dir, "Words/dog.md", "犬")
	if _, err := Sync(db, store, testLogger()); err != nil {
		t.Fatal(err)
	}

	startWatch(t, db, store, dir, nil)
	if err := os.RemoveAll(filepath.Join(dir, "Words")); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasNote(db, "Words/cat.md") && !hasNote(db, "Words/dog.md")
	}, "notes of removed directory still in collection")
}

func TestIsNoteFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/v/a.md", true},
		{"/v/sub/b.md", true},
		{"/v/.kwm-tmp-123.md", false},
		{"/v/a.txt", false},
	}
	for _, tt := range tests {
		if got := isNoteFile(tt.path); got != tt.want {
			t.Errorf("isNoteFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
