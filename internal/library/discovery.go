package library

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
)

// Supported audio extensions.
const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOPUS = ".opus"
	extOGG  = ".ogg"
	extOGA  = ".oga"
	extM4A  = ".m4a"
	extMP4  = ".mp4"
)

// IsMusicFile reports whether path has a supported audio extension.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extOPUS, extOGG, extOGA, extM4A, extMP4:
		return true
	}
	return false
}

type fileInfo struct {
	path   string
	mtime  int64
	size   int64
	source string
}

// discoverFiles walks every source and returns the music files found.
// Unreadable entries are skipped.
func (s *Scanner) discoverFiles(ctx context.Context, sources []string, progress chan<- ScanProgress) ([]fileInfo, error) {
	var files []fileInfo

	for _, source := range sources {
		err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				s.logger.Debug("skip unreadable entry", "path", path, "err", err)
				return nil //nolint:nilerr // keep walking past unreadable entries
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if d.IsDir() || !IsMusicFile(path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil //nolint:nilerr // file vanished during the walk
			}
			files = append(files, fileInfo{
				path:   path,
				mtime:  info.ModTime().Unix(),
				size:   info.Size(),
				source: source,
			})

			if len(files)%100 == 0 {
				s.report(ctx, progress, ScanProgress{
					Phase:       PhaseScanning,
					Current:     len(files),
					CurrentFile: relativePath(source, path),
				})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// relativePath returns path relative to source, or path itself when it is
// not below source.
func relativePath(source, path string) string {
	rel, err := filepath.Rel(source, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// underAny reports whether path lies below one of the sources.
func underAny(path string, sources []string) bool {
	for _, source := range sources {
		if relativePath(source, path) != path {
			return true
		}
	}
	return false
}
