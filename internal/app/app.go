// Package app is the root bubbletea model. It wires catalog change events
// into the windowed playlist, loads the grouping browser and runs library
// scans.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/collcache"
	"github.com/llehouerou/shelf/internal/config"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/keymap"
	"github.com/llehouerou/shelf/internal/library"
	"github.com/llehouerou/shelf/internal/state"
	"github.com/llehouerou/shelf/internal/titleformat"
	"github.com/llehouerou/shelf/internal/ui/browserview"
	"github.com/llehouerou/shelf/internal/ui/confirm"
	"github.com/llehouerou/shelf/internal/ui/rowlist"
	"github.com/llehouerou/shelf/internal/ui/scanbar"
)

// DefaultPlaylist is the playlist the playlist view edits.
const DefaultPlaylist = "main"

// ViewMode selects the main view.
type ViewMode int

const (
	ViewBrowser ViewMode = iota
	ViewPlaylist
	ViewSearch
)

func (v ViewMode) String() string {
	switch v {
	case ViewPlaylist:
		return "playlist"
	case ViewSearch:
		return "search"
	default:
		return "browser"
	}
}

func viewNamed(name string) (ViewMode, bool) {
	for _, v := range []ViewMode{ViewBrowser, ViewPlaylist, ViewSearch} {
		if v.String() == name {
			return v, true
		}
	}
	return ViewBrowser, false
}

func parseViewMode(name string) ViewMode {
	v, _ := viewNamed(name)
	return v
}

// Model is the root application model.
type Model struct {
	catalog  *catalog.Catalog
	sub      *catalog.Subscription
	state    *state.Manager
	presets  config.Presets
	eval     *titleformat.Evaluator
	keys     *keymap.Resolver
	logger   *slog.Logger
	radius   int
	playlist string
	sources  []string
	watch    bool
	aliases  map[string]string

	ctx    context.Context
	cancel context.CancelFunc

	// restore is the saved browser path, applied to the first browser load.
	restore []string

	Mode         ViewMode
	Browser      browserview.Model
	BrowserReady bool
	Playlist     rowlist.Model
	Results      rowlist.Model
	HasResults   bool
	Query        textinput.Model
	Searching    bool // the query input has the keyboard
	LastQuery    string
	Prompt       textinput.Model
	Prompting    bool // the command prompt has the keyboard
	Help         help.Model
	ShowHelp     bool
	Confirm      confirm.Model

	NowPlaying   string
	NowPlayingID int64

	// Versions of the latest asynchronous loads; results carrying an older
	// version were superseded and are dropped.
	BrowserVersion    int
	SearchVersion     int
	NowPlayingVersion int

	// playlistSeq is the catalog sequence the playlist cache reflects.
	playlistSeq uint64

	Scan          scanbar.Model
	ScanCh        <-chan library.ScanProgress
	Scanning      bool
	RescanPending bool
	Stale         bool // library changed during a scan
	ReportScan    bool // show the outcome of the running scan
	ScanReport    *library.ScanStats
	rescanCh      chan struct{}

	ErrorMsg string
	Width    int
	Height   int
}

// New creates the application model over cat. Invalid format presets or
// dialect fall back to defaults and are reported in the status line; only
// catalog failures are fatal.
func New(cfg *config.Config, cat *catalog.Catalog, logger *slog.Logger) (Model, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var problems []error

	dialect, err := cfg.GetDialect()
	if err != nil {
		problems = append(problems, err)
	}
	presets, err := cfg.GetFormats(dialect).Compile(titleformat.NewParser(nil, titleformat.WithDialect(dialect)))
	if err != nil {
		problems = append(problems, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		catalog:  cat,
		presets:  presets,
		eval:     titleformat.NewEvaluator(nil),
		keys:     keymap.NewResolver(keymap.All),
		logger:   logger,
		radius:   cfg.GetWindowRadius(),
		playlist: DefaultPlaylist,
		sources:  cfg.LibrarySources,
		watch:    cfg.WatchEnabled(),
		aliases:  cfg.Aliases,
		ctx:      ctx,
		cancel:   cancel,
		Mode:     ViewBrowser,
		Query:    newQueryInput(),
		Prompt:   newPromptInput(),
		Help:     help.New(),
		Confirm:  confirm.New(),
		Scan:     scanbar.New(),
		rescanCh: make(chan struct{}, 1),
	}

	if _, err := cat.CreatePlaylist(ctx, m.playlist); err != nil {
		cancel()
		return Model{}, fmt.Errorf("%s: %w", errmsg.OpPlaylistCreate, err)
	}
	// Subscribe first so no change slips between the snapshot and the
	// subscription.
	m.sub = cat.Subscribe()
	ids, cur, seq, err := cat.PlaylistSnapshot(ctx, m.playlist)
	if err != nil {
		cancel()
		cat.Unsubscribe(m.sub)
		return Model{}, fmt.Errorf("%s: %w", errmsg.OpPlaylistLoad, err)
	}
	m.playlistSeq = seq

	cache := collcache.New(ids, m.radius, cat, m.renderer(presets.Playlist), presets.Playlist.Fields(),
		collcache.WithLogger(logger.With("list", "playlist")))
	cache.SetActive(cur)
	m.Playlist = rowlist.New("Playlist", cache)

	st, err := state.Open(cat.DB(), logger.With("component", "state"))
	if err != nil {
		cancel()
		cat.Unsubscribe(m.sub)
		return Model{}, fmt.Errorf("open session state: %w", err)
	}
	m.state = st
	m.restoreSession()
	m.focusView()

	if len(problems) > 0 {
		err := errors.Join(problems...)
		logger.Warn("format presets", "error", err)
		m.ErrorMsg = errmsg.Format(errmsg.OpFormatConfig, err)
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForCatalog(),
		m.loadBrowser(),
		m.fetchRows(m.Playlist.Cache()),
		m.loadNowPlaying(),
		m.restoreSearch(),
		m.requestScan(),
		m.startWatcher(),
		m.waitForRescan(),
	)
}

// Close stops background work and the catalog subscription, and writes
// the session.
func (m Model) Close() {
	m.cancel()
	m.catalog.Unsubscribe(m.sub)
	if err := m.state.Close(); err != nil {
		m.logger.Warn("save session", "error", err)
	}
}

// restoreSession puts the views back where the last run left them. The
// browser path and the search are applied once their data has loaded.
func (m *Model) restoreSession() {
	s, err := m.state.Session()
	if err != nil {
		m.logger.Warn("load session", "error", err)
		return
	}
	if s == nil {
		return
	}
	m.Mode = parseViewMode(s.View)
	if m.Mode == ViewSearch && s.LastQuery == "" {
		m.Mode = ViewBrowser
	}
	m.restore = s.BrowserPath
	m.LastQuery = s.LastQuery
	m.Query.SetValue(s.LastQuery)
	m.Playlist.Cache().SetFocus(s.PlaylistFocus)
}

// restoreSearch reruns the saved query.
func (m Model) restoreSearch() tea.Cmd {
	if m.LastQuery == "" || m.HasResults {
		return nil
	}
	return m.search(m.LastQuery)
}

// saveSession records the current view and positions.
func (m Model) saveSession() {
	s := state.Session{
		View:          m.Mode.String(),
		BrowserPath:   m.restore,
		PlaylistFocus: m.Playlist.Cache().Focus(),
		LastQuery:     m.LastQuery,
	}
	if m.BrowserReady {
		s.BrowserPath = m.Browser.Browser().Path()
	}
	m.state.SaveSession(s)
}

func newQueryInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "artist, album or title"
	ti.Prompt = "/ "
	ti.CharLimit = 200
	return ti
}

// renderer renders rows of a cache with f.
func (m Model) renderer(f *titleformat.Format) collcache.Renderer {
	ev := m.eval
	return func(_ int64, fields map[string]any) string {
		return f.Render(ev, titleformat.NewContext(fields))
	}
}

// context returns the keymap context of the focused view.
func (m Model) context() string {
	switch m.Mode {
	case ViewPlaylist:
		return keymap.ContextPlaylist
	case ViewSearch:
		return keymap.ContextSearch
	}
	return keymap.ContextBrowser
}

// focusView gives the focused look to the current view only.
func (m *Model) focusView() {
	m.Browser.SetFocused(m.Mode == ViewBrowser)
	m.Playlist.SetFocused(m.Mode == ViewPlaylist)
	m.Results.SetFocused(m.Mode == ViewSearch && !m.Searching)
}
