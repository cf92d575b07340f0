package library

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dhowden/tag"

	"github.com/llehouerou/shelf/internal/catalog"
)

// compilationKeys are the raw tag keys that flag a compilation across
// ID3v2.2, ID3v2.3+, MP4 and Vorbis comments.
var compilationKeys = []string{"TCP", "TCMP", "cpil", "compilation", "COMPILATION"}

// readTrack reads the tags of f into a catalog track. Files whose tags
// cannot be parsed still produce a track titled after the file name.
func readTrack(f fileInfo) (catalog.Track, error) {
	t := catalog.Track{
		Path:  f.path,
		Mtime: f.mtime,
		Size:  f.size,
		Title: titleFromPath(f.path),
	}

	file, err := os.Open(f.path)
	if err != nil {
		return t, err
	}
	defer file.Close()

	m, err := tag.ReadFrom(file)
	if err != nil {
		return t, err
	}

	if title := strings.TrimSpace(m.Title()); title != "" {
		t.Title = title
	}
	t.Artist = strings.TrimSpace(m.Artist())
	t.AlbumArtist = strings.TrimSpace(m.AlbumArtist())
	if t.AlbumArtist == "" {
		t.AlbumArtist = t.Artist
	}
	t.Album = strings.TrimSpace(m.Album())
	t.Genre = strings.TrimSpace(m.Genre())
	t.Year = m.Year()
	t.TrackNumber, _ = m.Track()
	t.DiscNumber, _ = m.Disc()
	t.Compilation = isCompilation(m.Raw())

	return t, nil
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isCompilation(raw map[string]any) bool {
	for _, key := range compilationKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch v := v.(type) {
		case bool:
			return v
		case int:
			return v != 0
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			return err == nil && n != 0
		}
	}
	return false
}
