package index

import (
	"log/slog"

	"github.com/starford/ansuz/internal/storage"
)

// Sync walks the content directory and brings the index up to date:
//   - new and changed files are mapped and upserted
//   - files that fail mapping (bad front matter) are dropped from the index
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, mapDoc Mapper, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexDocument(db, mapDoc, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			// A previously valid document may have gone bad; drop the
			// stale row rather than serve outdated content.
			if _, wasIndexed := checksums[m.Path]; wasIndexed {
				_ = db.DeleteDocument(m.Path)
			}
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexDocument maps raw bytes and upserts the result.
func indexDocument(db *DB, mapDoc Mapper, path string, data []byte) error {
	row, err := mapDoc(path, data)
	if err != nil {
		return err
	}
	return db.UpsertDocument(row)
}
