//nolint:goconst // test files commonly repeat strings for test data
package library

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/shelf/internal/catalog"
)

type fakeStore struct {
	mu      sync.Mutex
	tracks  map[string]catalog.Track
	upserts int
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{tracks: make(map[string]catalog.Track)}
}

func (s *fakeStore) TrackMtimes(context.Context) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.tracks))
	for p, t := range s.tracks {
		out[p] = t.Mtime
	}
	return out, nil
}

func (s *fakeStore) UpsertTracks(_ context.Context, tracks []catalog.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn == "upsert" {
		return errors.New("disk full")
	}
	s.upserts++
	for _, t := range tracks {
		s.tracks[t.Path] = t
	}
	return nil
}

func (s *fakeStore) DeleteTracks(_ context.Context, paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.tracks, p)
	}
	return nil
}

// id3v23 builds a minimal ID3v2.3 tag holding the given text frames.
func id3v23(frames [][2]string) []byte {
	var body bytes.Buffer
	for _, f := range frames {
		text := append([]byte{0x03}, f[1]...) // UTF-8
		body.WriteString(f[0])
		_ = binary.Write(&body, binary.BigEndian, uint32(len(text)))
		body.Write([]byte{0, 0})
		body.Write(text)
	}

	n := body.Len()
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(n >> 21 & 0x7f), byte(n >> 14 & 0x7f), byte(n >> 7 & 0x7f), byte(n & 0x7f)}
	return append(header, body.Bytes()...)
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"SONG.FLAC", true},
		{"a/b/c.opus", true},
		{"c.oga", true},
		{"c.m4a", true},
		{"cover.jpg", false},
		{"notes", false},
		{"mp3", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMusicFile(tt.path))
		})
	}
}

func TestScan_ReadsTags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Post", "03.mp3")
	writeFile(t, path, id3v23([][2]string{
		{"TIT2", "Hyperballad"},
		{"TPE1", "Björk"},
		{"TALB", "Post"},
		{"TRCK", "3/11"},
		{"TYER", "1995"},
		{"TCMP", "1"},
	}))

	store := newFakeStore()
	stats, err := NewScanner(store).Scan(context.Background(), []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, stats.Added)
	assert.Empty(t, stats.Unparsed)

	got := store.tracks[path]
	assert.Equal(t, "Hyperballad", got.Title)
	assert.Equal(t, "Björk", got.Artist)
	assert.Equal(t, "Björk", got.AlbumArtist, "album artist falls back to artist")
	assert.Equal(t, "Post", got.Album)
	assert.Equal(t, 3, got.TrackNumber)
	assert.Equal(t, 1995, got.Year)
	assert.True(t, got.Compilation)
}

func TestScan_SkipsNonMusicFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cover.jpg"), []byte("jpeg"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("hello"))
	writeFile(t, filepath.Join(dir, "a", "track.flac"), []byte("not really flac"))

	store := newFakeStore()
	stats, err := NewScanner(store).Scan(context.Background(), []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Len(t, store.tracks, 1)
}

func TestScan_UnreadableTagsFallBackToFileName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "07 - Untitled.mp3")
	writeFile(t, path, []byte("garbage"))

	store := newFakeStore()
	stats, err := NewScanner(store).Scan(context.Background(), []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, stats.Unparsed)

	got := store.tracks[path]
	assert.Equal(t, "07 - Untitled", got.Title)
	assert.Equal(t, int64(len("garbage")), got.Size)
	assert.Empty(t, got.Artist)
}

func TestScan_OnlyChangedFilesAreRead(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp3")
	b := filepath.Join(dir, "b.mp3")
	writeFile(t, a, []byte("a"))
	writeFile(t, b, []byte("b"))

	store := newFakeStore()
	scanner := NewScanner(store)
	ctx := context.Background()

	_, err := scanner.Scan(ctx, []string{dir}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, store.upserts)

	stats, err := scanner.Scan(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Empty(t, stats.Added)
	assert.Empty(t, stats.Updated)
	assert.Equal(t, 1, store.upserts, "nothing to write")

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(b, later, later))
	stats, err = scanner.Scan(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, stats.Updated)
	assert.Equal(t, later.Unix(), store.tracks[b].Mtime)
}

func TestScan_RemovesVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp3")
	b := filepath.Join(dir, "sub", "b.mp3")
	writeFile(t, a, []byte("a"))
	writeFile(t, b, []byte("b"))

	store := newFakeStore()
	store.tracks["/elsewhere/c.mp3"] = catalog.Track{Path: "/elsewhere/c.mp3", Mtime: 1}
	scanner := NewScanner(store)
	ctx := context.Background()

	_, err := scanner.Scan(ctx, []string{dir}, nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(b))

	stats, err := scanner.Scan(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, stats.Removed)

	paths := make([]string, 0, len(store.tracks))
	for p := range store.tracks {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	assert.Equal(t, []string{"/elsewhere/c.mp3", a}, paths, "tracks outside the sources are kept")
}

func TestScan_Progress(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.mp3", "2.mp3", "3.mp3"} {
		writeFile(t, filepath.Join(dir, name), []byte(name))
	}

	progress := make(chan ScanProgress)
	var phases []string
	var last ScanProgress
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			if len(phases) == 0 || phases[len(phases)-1] != p.Phase {
				phases = append(phases, p.Phase)
			}
			last = p
		}
	}()

	_, err := NewScanner(newFakeStore(), WithWorkers(2)).Scan(context.Background(), []string{dir}, progress)
	require.NoError(t, err)
	<-done

	assert.Equal(t, []string{PhaseProcessing, PhaseCleaning, PhaseDone}, phases)
	require.NotNil(t, last.Stats)
	assert.Equal(t, 3, last.Stats.Files)
}

func TestScan_StoreError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mp3"), []byte("a"))

	s := newFakeStore()
	s.failOn = "upsert"
	_, err := NewScanner(s).Scan(context.Background(), []string{dir}, nil)
	require.Error(t, err)
}

func TestScan_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.mp3"), []byte("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScanner(newFakeStore()).Scan(ctx, []string{dir}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestScan_IntoCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.mp3"), id3v23([][2]string{{"TIT2", "Xtal"}, {"TPE1", "Aphex Twin"}}))

	c, err := catalog.Open(filepath.Join(t.TempDir(), "shelf.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	_, err = NewScanner(c).Scan(context.Background(), []string{dir}, nil)
	require.NoError(t, err)

	ids, err := c.QueryIDs(context.Background(), catalog.Search{Text: "xtal"})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
