package dto

import (
	"encoding/json"
	"strconv"

	"github.com/air-afother/osu-table-downloader/internal/model"
)

// LevelValue is a custom type handling the level field of table
// catalogs, which arrives either as a JSON number or as a string
// ("3", "3.5", sometimes garbage). Unparsable values do not fail the
// document; they mark the value invalid so normalization can drop the
// entry.
type LevelValue struct {
	Value float64
	Valid bool
}

// UnmarshalJSON parses a number, a numeric string, or anything else
// (which leaves the value invalid).
func (lv *LevelValue) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		lv.Value, lv.Valid = f, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			lv.Value, lv.Valid = f, true
		}
		return nil
	}

	// Malformed catalog entries are expected noise, not errors.
	return nil
}

// JSONEntry represents one raw beatmap record from a table catalog.
type JSONEntry struct {
	Title  string     `json:"title"`
	Artist string     `json:"artist"`
	URL    string     `json:"url"`
	Level  LevelValue `json:"level"`
	MD5    string     `json:"md5"`
}

// ToEntry converts a JSONEntry to a model.TableEntry.
//
// The second return value is false when the entry has no parsable
// level; such entries are excluded during normalization.
func (je *JSONEntry) ToEntry() (model.TableEntry, bool) {
	if !je.Level.Valid {
		return model.TableEntry{}, false
	}
	return model.TableEntry{
		Title:  je.Title,
		Artist: je.Artist,
		URL:    je.URL,
		Level:  je.Level.Value,
		MD5:    je.MD5,
	}, true
}
