// Package config provides configuration management for
// osu-table-downloader.
//
// Settings are stored as TOML and cover:
//   - The known difficulty tables with their catalog URLs and per-table
//     level ranges
//   - The local song database path
//   - The download directory and download service base URL
//   - Extraction and logging policy
//
// # Defaults
//
// DefaultSettings returns the two published osu!mania tables with the
// "7K + 8K" table selected and a 0–13 level range:
//
//	settings := config.DefaultSettings()
//
// # Loading and saving
//
//	settings, err := config.Load("config.toml") // defaults if absent
//	err = settings.Save("config.toml")
package config
