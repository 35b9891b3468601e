package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(settings.Tables) != 2 {
		t.Fatalf("got %d default tables, want 2", len(settings.Tables))
	}
	if !settings.Tables[0].Enabled || settings.Tables[1].Enabled {
		t.Error("only the first table should be enabled by default")
	}
	if settings.DownloadBaseURL == "" {
		t.Error("default download base URL must be set")
	}
	if err := settings.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	settings := DefaultSettings()
	settings.AutoExtract = false
	settings.Tables[1].Enabled = true
	settings.Tables[1].MinLevel = 5
	settings.Tables[1].MaxLevel = 9

	if err := settings.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.AutoExtract {
		t.Error("AutoExtract did not round-trip")
	}
	table, ok := loaded.TableByName("4K")
	if !ok {
		t.Fatal("4K table missing after round trip")
	}
	if table.MinLevel != 5 || table.MaxLevel != 9 {
		t.Errorf("range = %d..%d, want 5..9", table.MinLevel, table.MaxLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"valid defaults", func(*Settings) {}, ""},
		{"empty base url", func(s *Settings) { s.DownloadBaseURL = "" }, "download_base_url"},
		{"empty download dir", func(s *Settings) { s.DownloadDir = "" }, "download_dir"},
		{"inverted range", func(s *Settings) { s.Tables[0].MinLevel = 9; s.Tables[0].MaxLevel = 3 }, "min_level"},
		{"enabled without catalog", func(s *Settings) { s.Tables[0].CatalogURL = "" }, "catalog_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			tt.mutate(settings)
			err := settings.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnabledTables_PreservesOrder(t *testing.T) {
	settings := DefaultSettings()
	settings.Tables[1].Enabled = true

	enabled := settings.EnabledTables()
	if len(enabled) != 2 {
		t.Fatalf("got %d enabled tables, want 2", len(enabled))
	}
	if enabled[0].Name != "7K + 8K" || enabled[1].Name != "4K" {
		t.Errorf("selection order broken: %v, %v", enabled[0].Name, enabled[1].Name)
	}

	filter := enabled[1].Filter()
	if filter.Table != "4K" || filter.MinLevel != 0 || filter.MaxLevel != 13 {
		t.Errorf("filter = %+v", filter)
	}
}
