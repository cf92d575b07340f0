package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/shelf/internal/titleformat"
)

// DefaultWindowRadius is the number of rows fetched on each side of the
// focused row of a windowed list.
const DefaultWindowRadius = 64

type Config struct {
	LibrarySources []string `koanf:"library_sources"` // paths to scan for music
	Dialect        string   `koanf:"dialect"`         // "colon" (default) or "percent"
	WindowRadius   int      `koanf:"window_radius"`
	Database       string   `koanf:"database"`  // default: XDG data dir
	LogFile        string   `koanf:"log_file"`  // default: XDG state dir
	LogLevel       string   `koanf:"log_level"` // debug, info (default), warn, error
	Watch          *bool    `koanf:"watch"`     // rescan on file changes (default: true)

	// Named format presets. Empty entries use the dialect's defaults.
	Formats Formats `koanf:"formats"`

	// Command prompt aliases, e.g. top = "tab playlist; goto 1".
	Aliases map[string]string `koanf:"aliases"`
}

// Formats holds the format presets used by each view.
type Formats struct {
	Playlist   string `koanf:"playlist"`
	Browser    string `koanf:"browser"`
	NowPlaying string `koanf:"nowplaying"`
	Search     string `koanf:"search"`
}

var defaultFormats = map[titleformat.Dialect]Formats{
	titleformat.DialectColon: {
		Playlist:   `:a \> :t [:c?+:p+]`,
		Browser:    `[:c?:p|:a]>[\[:d\] ]:l>[CD:partofset]>[:n. ]:t`,
		NowPlaying: `:a:CR[:n. ]:t:CR:l[:c? \(:p\)][ CD:partofset]`,
		Search:     `[:c?:p|:a] \> :l \> [#[:partofset.]:n ][:c?:a \>] :t`,
	},
	titleformat.DialectPercent: {
		Playlist:   `%artist% \> %title%[ +%performer%+]`,
		Browser:    `$if2(%performer%,%artist%)|[\[%date%\] ]%album%|[CD%partofset%|]%title%`,
		NowPlaying: `%artist%%CR%[%tracknr%. ]%title%%CR%%album%[ CD%partofset%]`,
		Search:     `$if2(%performer%,%artist%) \> %album% \> [%tracknr% ]%title%`,
	},
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	for i, src := range cfg.LibrarySources {
		cfg.LibrarySources[i] = expandPath(src)
	}
	cfg.Database = expandPath(cfg.Database)
	cfg.LogFile = expandPath(cfg.LogFile)

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/shelf/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "shelf", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetDialect returns the configured format dialect. Unknown names fall back
// to the colon dialect and are reported.
func (c *Config) GetDialect() (titleformat.Dialect, error) {
	if c.Dialect == "" {
		return titleformat.DialectColon, nil
	}
	return titleformat.ParseDialect(c.Dialect)
}

// GetWindowRadius returns the window radius with the default applied.
func (c *Config) GetWindowRadius() int {
	if c.WindowRadius < 1 {
		return DefaultWindowRadius
	}
	return c.WindowRadius
}

// WatchEnabled reports whether the library should be rescanned on changes.
func (c *Config) WatchEnabled() bool {
	return c.Watch == nil || *c.Watch
}

// DatabasePath returns the catalog database path.
func (c *Config) DatabasePath() (string, error) {
	if c.Database != "" {
		return c.Database, nil
	}
	return xdg.DataFile("shelf/shelf.db")
}

// LogPath returns the log file path.
func (c *Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	return xdg.StateFile("shelf/shelf.log")
}

// GetFormats returns the presets with the dialect's defaults filled in.
func (c *Config) GetFormats(d titleformat.Dialect) Formats {
	f := c.Formats
	def := defaultFormats[d]
	if f.Playlist == "" {
		f.Playlist = def.Playlist
	}
	if f.Browser == "" {
		f.Browser = def.Browser
	}
	if f.NowPlaying == "" {
		f.NowPlaying = def.NowPlaying
	}
	if f.Search == "" {
		f.Search = def.Search
	}
	return f
}

// Presets are the parsed format presets.
type Presets struct {
	Playlist   *titleformat.Format
	Browser    *titleformat.Format
	NowPlaying *titleformat.Format
	Search     *titleformat.Format
}

// Compile parses every preset with p. Invalid presets are replaced by
// titleformat.Fallback and reported in the joined error; the returned
// presets are always usable.
func (f Formats) Compile(p *titleformat.Parser) (Presets, error) {
	var errs []error
	parse := func(name, text string) *titleformat.Format {
		format, err := p.ParseOrFallback(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("format %q: %w", name, err))
		}
		return format
	}

	presets := Presets{
		Playlist:   parse("playlist", f.Playlist),
		Browser:    parse("browser", f.Browser),
		NowPlaying: parse("nowplaying", f.NowPlaying),
		Search:     parse("search", f.Search),
	}
	return presets, errors.Join(errs...)
}
