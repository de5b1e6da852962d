// Package testutil provides shared test helpers for setting up vaults and collections.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/kwm/internal/collection"
	"github.com/starford/kwm/internal/storage"
)

// TestDB creates a temporary SQLite collection that is automatically cleaned up.
func TestDB(t *testing.T) *collection.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "kwm-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := collection.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteNote writes a note file at rel (slash-separated) under the vault.
func WriteNote(t *testing.T, vaultDir, rel, content string) {
	t.Helper()
	p := filepath.Join(vaultDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// SeedVault writes a small Japanese vault: a words deck with reviewed and
// unreviewed vocabulary and a sentences deck, then syncs it into db.
//
//	Words:     猫 (reviewed), 犬 (reviewed), 鳥 (never reviewed)
//	Sentences: 猫犬.md, 猫鳥.md, 魚.md, blank.md
func SeedVault(t *testing.T, vaultDir string, store storage.Provider, db *collection.DB) {
	t.Helper()
	WriteNote(t, vaultDir, "Words/cat.md", "---\nreviews: 3\n---\n## Word\n猫\n## Meaning\ncat\n")
	WriteNote(t, vaultDir, "Words/dog.md", "---\nreviews: 1\n---\n## Word\n犬\n## Meaning\ndog\n")
	WriteNote(t, vaultDir, "Words/bird.md", "## Word\n鳥\n## Meaning\nbird\n")
	WriteNote(t, vaultDir, "Sentences/cat-dog.md", "猫と犬")
	WriteNote(t, vaultDir, "Sentences/cat-bird.md", "猫と鳥")
	WriteNote(t, vaultDir, "Sentences/fish.md", "魚がいる")
	WriteNote(t, vaultDir, "Sentences/blank.md", "ひらがなだけ")
	if _, err := collection.Sync(db, store, nil); err != nil {
		t.Fatal(err)
	}
}
