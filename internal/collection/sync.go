package collection

import (
	"log/slog"

	"github.com/starford/kwm/internal/parser"
	"github.com/starford/kwm/internal/storage"
)

// SyncStats counts what one Sync pass changed.
type SyncStats struct {
	Indexed int `json:"indexed"`
	Removed int `json:"removed"`
	Failed  int `json:"failed"`
}

// Sync walks the vault and brings the collection up to date:
//   - new/changed files are parsed and upserted, keeping card states
//   - notes whose file is gone are deleted along with their cards
//
// A nil logger discards output.
func Sync(db Indexer, store storage.Provider, logger *slog.Logger) (SyncStats, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var stats SyncStats

	metas, err := store.List("")
	if err != nil {
		return stats, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			stats.Failed++
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := IndexFile(db, m.Path, data); err != nil {
			stats.Failed++
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("path", m.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteNote(p); err != nil {
			stats.Failed++
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	logger.Info("sync: done",
		slog.Int("indexed", stats.Indexed),
		slog.Int("removed", stats.Removed),
		slog.Int("failed", stats.Failed))
	return stats, nil
}

// IndexFile parses a note file and upserts it. The deck comes from the
// frontmatter, or from the file's directory when absent.
func IndexFile(db Indexer, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	deck := res.Frontmatter.Deck
	if deck == "" {
		deck = DeckForPath(path)
	}
	row := NoteRow{
		Path:     path,
		Deck:     deck,
		Fields:   res.Fields,
		Reviews:  res.Frontmatter.Reviews,
		Checksum: storage.Checksum(data),
	}
	_, err = db.UpsertNote(row, res.Frontmatter.Cards)
	return err
}
