package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/air-afother/osu-table-downloader/internal/model"
)

// Table describes one remote difficulty table: where its catalog JSON
// lives, the human-facing page it was built from, and the level range
// to download.
type Table struct {
	// Name identifies the table, e.g. "7K + 8K".
	Name string `toml:"name"`

	// CatalogURL is the table's machine-readable catalog (a JSON array
	// of beatmap records).
	CatalogURL string `toml:"catalog_url"`

	// PageURL is the table's browsable page, surfaced in UIs only.
	PageURL string `toml:"page_url"`

	// Enabled selects the table for the next run.
	Enabled bool `toml:"enabled"`

	// MinLevel and MaxLevel bound the inclusive level range.
	MinLevel int `toml:"min_level"`
	MaxLevel int `toml:"max_level"`
}

// Filter returns the table's range filter.
func (t Table) Filter() model.RangeFilter {
	return model.RangeFilter{Table: t.Name, MinLevel: t.MinLevel, MaxLevel: t.MaxLevel}
}

// Settings holds all configuration options.
type Settings struct {
	// DatabasePath locates the local song database (songdata.db).
	DatabasePath string `toml:"database_path"`

	// DownloadDir is where fetched archives and extracted folders land.
	DownloadDir string `toml:"download_dir"`

	// DownloadBaseURL is the download service prefix; the beatmapset id
	// is appended per item.
	DownloadBaseURL string `toml:"download_base_url"`

	// AutoExtract extracts archives right after the download pass and
	// deletes the originals.
	AutoExtract bool `toml:"auto_extract"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Tables lists the known difficulty tables in selection order.
	Tables []Table `toml:"tables"`
}

// DefaultSettings returns settings with default values: the two known
// osu!mania tables, the nerinyan download mirror, and the song database
// expected next to the working directory.
func DefaultSettings() *Settings {
	cwd, _ := os.Getwd()
	return &Settings{
		DatabasePath:    "songdata.db",
		DownloadDir:     filepath.Join(cwd, "osudownloaderscript_downloads"),
		DownloadBaseURL: "https://api.nerinyan.moe/d/",
		AutoExtract:     true,
		LogLevel:        "info",
		Tables: []Table{
			{
				Name:       "7K + 8K",
				CatalogURL: "https://air-afother.github.io/osu-table/osu_mania_7k_8k_final.json",
				PageURL:    "https://air-afother.github.io/osu-table/",
				Enabled:    true,
				MinLevel:   0,
				MaxLevel:   13,
			},
			{
				Name:       "4K",
				CatalogURL: "https://air-afother.github.io/osu-table/osu_mania_4k_final.json",
				PageURL:    "https://air-afother.github.io/osu-table/index4k.html",
				Enabled:    false,
				MinLevel:   0,
				MaxLevel:   13,
			},
		},
	}
}

// Load reads settings from a TOML file. A missing file yields the
// defaults, not an error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := toml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a TOML file, creating parent directories as
// needed.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings for values no run could work with.
func (s *Settings) Validate() error {
	if s.DownloadBaseURL == "" {
		return fmt.Errorf("download_base_url must not be empty")
	}
	if s.DownloadDir == "" {
		return fmt.Errorf("download_dir must not be empty")
	}
	for _, table := range s.Tables {
		if table.Name == "" {
			return fmt.Errorf("every table needs a name")
		}
		if table.Enabled && table.CatalogURL == "" {
			return fmt.Errorf("table %q is enabled but has no catalog_url", table.Name)
		}
		if table.MinLevel > table.MaxLevel {
			return fmt.Errorf("table %q: min_level %d above max_level %d", table.Name, table.MinLevel, table.MaxLevel)
		}
	}
	return nil
}

// EnabledTables returns the selected tables in configuration order,
// which is also worklist concatenation order.
func (s *Settings) EnabledTables() []Table {
	var enabled []Table
	for _, table := range s.Tables {
		if table.Enabled {
			enabled = append(enabled, table)
		}
	}
	return enabled
}

// TableByName returns the table with the given name, if present.
func (s *Settings) TableByName(name string) (Table, bool) {
	for _, table := range s.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return Table{}, false
}
