// Package library keeps the catalog in sync with the audio files found
// under the configured source directories.
package library

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/llehouerou/shelf/internal/catalog"
)

const (
	numWorkers = 8
	batchSize  = 500
)

// Scan phases reported through ScanProgress.
const (
	PhaseScanning   = "scanning"
	PhaseProcessing = "processing"
	PhaseCleaning   = "cleaning"
	PhaseDone       = "done"
)

// Store is where scanned tracks end up. *catalog.Catalog implements it.
type Store interface {
	TrackMtimes(ctx context.Context) (map[string]int64, error)
	UpsertTracks(ctx context.Context, tracks []catalog.Track) error
	DeleteTracks(ctx context.Context, paths []string) error
}

// ScanProgress reports the state of a running scan.
type ScanProgress struct {
	Phase       string
	Current     int
	Total       int
	CurrentFile string
	Stats       *ScanStats // set with PhaseDone
}

// ScanStats summarizes a finished scan.
type ScanStats struct {
	Files    int      // music files found
	Added    []string // paths new to the store
	Updated  []string // paths whose mtime changed
	Removed  []string // paths no longer on disk
	Unparsed []string // paths whose tags could not be read
}

// Changed reports whether the scan modified the store.
func (s *ScanStats) Changed() bool {
	return len(s.Added) > 0 || len(s.Updated) > 0 || len(s.Removed) > 0
}

// Scanner scans source directories into a Store.
type Scanner struct {
	store   Store
	logger  *slog.Logger
	workers int
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the scanner's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.logger = l }
}

// WithWorkers sets how many files are read concurrently.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewScanner returns a scanner writing into store.
func NewScanner(store Store, opts ...Option) *Scanner {
	s := &Scanner{
		store:   store,
		logger:  slog.New(slog.DiscardHandler),
		workers: numWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks sources, reads new and modified files and drops tracks whose
// file is gone. Progress is sent on progress, which is closed on return;
// a nil channel disables reporting.
func (s *Scanner) Scan(ctx context.Context, sources []string, progress chan<- ScanProgress) (*ScanStats, error) {
	if progress != nil {
		defer close(progress)
	}

	stats := &ScanStats{}

	files, err := s.discoverFiles(ctx, sources, progress)
	if err != nil {
		return nil, err
	}
	stats.Files = len(files)

	existing, err := s.store.TrackMtimes(ctx)
	if err != nil {
		return nil, err
	}

	var changed []fileInfo
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		seen[f.path] = true
		mtime, known := existing[f.path]
		switch {
		case !known:
			stats.Added = append(stats.Added, f.path)
		case mtime != f.mtime:
			stats.Updated = append(stats.Updated, f.path)
		default:
			continue
		}
		changed = append(changed, f)
	}

	tracks, err := s.processFiles(ctx, changed, stats, progress)
	if err != nil {
		return nil, err
	}
	for batch := range slices.Chunk(tracks, batchSize) {
		if err := s.store.UpsertTracks(ctx, batch); err != nil {
			return nil, err
		}
	}

	s.report(ctx, progress, ScanProgress{Phase: PhaseCleaning})
	for path := range existing {
		if !seen[path] && underAny(path, sources) {
			stats.Removed = append(stats.Removed, path)
		}
	}
	slices.Sort(stats.Removed)
	if err := s.store.DeleteTracks(ctx, stats.Removed); err != nil {
		return nil, err
	}

	s.logger.Info("scan done",
		"files", stats.Files,
		"added", len(stats.Added),
		"updated", len(stats.Updated),
		"removed", len(stats.Removed),
		"unparsed", len(stats.Unparsed))
	s.report(ctx, progress, ScanProgress{Phase: PhaseDone, Current: stats.Files, Total: stats.Files, Stats: stats})
	return stats, nil
}

// processFiles reads the tags of files on a bounded worker pool. Tracks
// come back sorted by path.
func (s *Scanner) processFiles(ctx context.Context, files []fileInfo, stats *ScanStats, progress chan<- ScanProgress) ([]catalog.Track, error) {
	total := len(files)
	tracks := make([]catalog.Track, 0, total)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := readTrack(f)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Debug("read tags", "path", f.path, "err", err)
				stats.Unparsed = append(stats.Unparsed, f.path)
			}
			tracks = append(tracks, t)
			if n := len(tracks); n%100 == 0 || n == total {
				s.report(ctx, progress, ScanProgress{
					Phase:       PhaseProcessing,
					Current:     n,
					Total:       total,
					CurrentFile: relativePath(f.source, f.path),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(tracks, func(a, b catalog.Track) int {
		return strings.Compare(a.Path, b.Path)
	})
	slices.Sort(stats.Unparsed)
	return tracks, nil
}

// report sends p unless progress is nil or ctx is done.
func (s *Scanner) report(ctx context.Context, progress chan<- ScanProgress, p ScanProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- p:
	case <-ctx.Done():
	}
}
