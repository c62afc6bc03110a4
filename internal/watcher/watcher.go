// Package watcher polls a directory for new note files and feeds them
// through ingestion and organization.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/ocr"
)

// Ingestor turns a raw note file into a stored note.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, data []byte, quality ocr.Quality) (domain.Note, error)
}

// Organizer runs the organization pipeline for a stored note.
type Organizer interface {
	Organize(ctx context.Context, noteID string) (domain.Analysis, error)
}

var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".note": true,
}

// Watcher scans a directory on a fixed interval. Files are processed once;
// a file is picked up again only if its modification time changes.
type Watcher struct {
	dir      string
	interval time.Duration
	quality  ocr.Quality
	ingest   Ingestor
	organize Organizer
	logger   *zap.Logger

	seen map[string]time.Time
}

func New(dir string, interval time.Duration, quality ocr.Quality, ingest Ingestor, organize Organizer, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:      dir,
		interval: interval,
		quality:  quality,
		ingest:   ingest,
		organize: organize,
		logger:   logger,
		seen:     make(map[string]time.Time),
	}
}

// Run polls until ctx is cancelled. The first scan happens immediately.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Scan(ctx)
		}
	}
}

// Scan processes every supported file in the directory that is new or has
// changed since the last scan. Errors on individual files are logged and do
// not stop the scan.
func (w *Watcher) Scan(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("watch directory unreadable", zap.String("dir", w.dir), zap.Error(err))
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		if entry.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if seenAt, ok := w.seen[entry.Name()]; ok && seenAt.Equal(info.ModTime()) {
			continue
		}
		// Skip files modified within the last interval; they may still be
		// mid-copy.
		if time.Since(info.ModTime()) < w.interval {
			continue
		}
		if err := w.processFile(ctx, entry.Name()); err != nil {
			w.logger.Error("watched file failed",
				zap.String("file", entry.Name()),
				zap.Error(err),
			)
			continue
		}
		w.seen[entry.Name()] = info.ModTime()
	}
}

func (w *Watcher) processFile(ctx context.Context, name string) error {
	data, err := os.ReadFile(filepath.Join(w.dir, name))
	if err != nil {
		return err
	}

	note, err := w.ingest.Ingest(ctx, name, data, w.quality)
	if err != nil {
		return err
	}
	analysis, err := w.organize.Organize(ctx, note.ID)
	if err != nil {
		return err
	}

	w.logger.Info("watched file processed",
		zap.String("file", name),
		zap.String("note_id", note.ID),
		zap.Int("structures", len(analysis.Structures)),
	)
	return nil
}
