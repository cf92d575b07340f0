package app

import (
	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/collcache"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/grouping"
	"github.com/llehouerou/shelf/internal/library"
)

// CatalogEventMsg carries one change published by the catalog.
type CatalogEventMsg catalog.ChangeEvent

// CatalogClosedMsg is sent when the catalog subscription ends.
type CatalogClosedMsg struct{}

// BrowserLoadedMsg delivers a freshly loaded grouping browser.
// Version is compared against Model.BrowserVersion to drop loads that a
// newer one superseded.
type BrowserLoadedMsg struct {
	Version int
	Browser *grouping.Browser
	Err     error
}

// RowsFetchedMsg delivers the outcome of an asynchronous window fetch.
type RowsFetchedMsg struct {
	Cache   *collcache.Cache
	Fetch   *collcache.Fetch
	Records map[int64]map[string]any
	Err     error
}

// SearchResultMsg delivers the ids matching a search.
type SearchResultMsg struct {
	Version int
	Query   string
	IDs     []int64
	Err     error
}

// NowPlayingMsg carries the rendered now-playing text of a track.
type NowPlayingMsg struct {
	Version int
	ID      int64
	Text    string
	Err     error
}

// OpDoneMsg reports the outcome of a catalog mutation. Successful
// mutations show up as catalog events; only errors need handling.
type OpDoneMsg struct {
	Op  errmsg.Op
	Err error
}

// LibraryScanProgressMsg wraps library scan progress updates.
type LibraryScanProgressMsg library.ScanProgress

// LibraryScanCompleteMsg is sent when library scanning finishes.
type LibraryScanCompleteMsg struct {
	Stats *library.ScanStats
	Err   error
}

// LibraryChangedMsg requests a library scan, on startup and whenever the
// file watcher saw changes.
type LibraryChangedMsg struct{}

// WatcherFailedMsg reports that the file watcher could not start or died.
type WatcherFailedMsg struct {
	Err error
}
