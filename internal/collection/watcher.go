package collection

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/kwm/internal/storage"
)

// reconcileDelay debounces reconciliation after renames and directory
// removals.
const reconcileDelay = 200 * time.Millisecond

// Change kinds passed to EventCallback.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// EventCallback is called after a watcher-driven collection change.
// kind is one of ChangeCreated, ChangeUpdated, ChangeDeleted.
type EventCallback func(kind string, path string)

type vaultWatcher struct {
	db     Indexer
	store  storage.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
	fsw    *fsnotify.Watcher
}

// Watch keeps the collection in step with the vault until ctx is cancelled.
// It calls cb (if non-nil) after each note that was imported or removed.
//
// Directories created at runtime join the watch list. A rename removes the
// old note at once and schedules a reconciliation pass.
func Watch(ctx context.Context, db Indexer, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w := &vaultWatcher{db: db, store: store, root: vaultRoot, logger: logger, cb: cb, fsw: fsw}
	if err := w.addDirs(vaultRoot); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	var timer *time.Timer
	var reconcileCh <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.handle(ev) {
				if timer == nil {
					timer = time.NewTimer(reconcileDelay)
					reconcileCh = timer.C
				} else {
					timer.Reset(reconcileDelay)
				}
			}

		case werr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", werr.Error()))
		}
	}
}

// handle applies one fsnotify event. It reports whether a reconciliation
// pass should be scheduled.
func (w *vaultWatcher) handle(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addDirs(ev.Name); err != nil {
				w.logger.Warn("watcher: add dir failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
			}
			w.importDir(ev.Name)
			return false
		}
	}

	if !isNoteFile(ev.Name) {
		// A renamed or removed directory reports only its own path, so the
		// notes it held are dropped by the reconciliation pass.
		return ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
	}
	rel, err := relPath(w.root, ev.Name)
	if err != nil {
		return false
	}

	switch {
	case ev.Has(fsnotify.Create):
		w.importNote(rel, ChangeCreated)
	case ev.Has(fsnotify.Write):
		w.importNote(rel, ChangeUpdated)
	case ev.Has(fsnotify.Remove):
		w.remove(rel)
	case ev.Has(fsnotify.Rename):
		// Rename fires on the old path only; the new one arrives as a
		// Create when it stays inside a watched dir.
		w.remove(rel)
		return true
	}
	return false
}

func (w *vaultWatcher) importNote(rel, kind string) {
	data, err := w.store.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := IndexFile(w.db, rel, data); err != nil {
		w.logger.Warn("watcher: import failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: imported", slog.String("path", rel), slog.String("op", kind))
	w.notify(kind, rel)
}

func (w *vaultWatcher) remove(rel string) {
	if err := w.db.DeleteNote(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
	w.notify(ChangeDeleted, rel)
}

func (w *vaultWatcher) notify(kind, rel string) {
	if w.cb != nil {
		w.cb(kind, rel)
	}
}

// reconcile removes notes whose file is gone and imports files that are new
// or changed.
func (w *vaultWatcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.remove(p)
		}
	}
	for p, cs := range disk {
		if checksums[p] != cs {
			w.importNote(p, ChangeCreated)
		}
	}
}

// importDir imports note files already present in a new directory.
func (w *vaultWatcher) importDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isNoteFile(path) {
			return nil
		}
		if rel, err := relPath(w.root, path); err == nil {
			w.importNote(rel, ChangeCreated)
		}
		return nil
	})
}

// addDirs adds root and its non-hidden subdirectories to the watch list.
func (w *vaultWatcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func isNoteFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, storage.NoteExt) && !strings.HasPrefix(base, ".")
}

// relPath returns path relative to root with forward slashes, matching the
// paths stored by Sync.
func relPath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
