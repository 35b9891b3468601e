package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// writeZip creates a zip archive at path containing the given files.
func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
}

func TestExtract_ValidAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	writeZip(t, filepath.Join(dir, "Good Map [1].osz"), map[string]string{
		"map.osu":   "osu file format",
		"audio.mp3": "mp3 bytes",
	})
	if err := os.WriteFile(filepath.Join(dir, "Broken [2].OSZ"), []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := New(nil).Extract(dir, false); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// Valid archive extracted into its stem directory.
	content, err := os.ReadFile(filepath.Join(dir, "Good Map [1]", "map.osu"))
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(content) != "osu file format" {
		t.Errorf("extracted content = %q", content)
	}

	// Corrupt archive skipped, no folder for it, archive untouched.
	if _, err := os.Stat(filepath.Join(dir, "Broken [2]")); !os.IsNotExist(err) {
		t.Error("corrupt archive should not produce an extraction folder")
	}
	if _, err := os.Stat(filepath.Join(dir, "Broken [2].OSZ")); err != nil {
		t.Error("corrupt archive should still be on disk without deleteAfter")
	}
}

func TestExtract_DeleteAfter(t *testing.T) {
	dir := t.TempDir()

	writeZip(t, filepath.Join(dir, "Good [1].osz"), map[string]string{"a.osu": "x"})
	if err := os.WriteFile(filepath.Join(dir, "Broken [2].osz"), []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := New(nil).Extract(dir, true); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	// Both original archives removed regardless of per-archive success.
	for _, name := range []string{"Good [1].osz", "Broken [2].osz"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("archive %q should have been deleted", name)
		}
	}

	// Extracted contents survive deletion of the archive.
	if _, err := os.Stat(filepath.Join(dir, "Good [1]", "a.osu")); err != nil {
		t.Errorf("extracted contents missing: %v", err)
	}
}

func TestExtract_IgnoresNonArchives(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.osz"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := New(nil).Extract(dir, true); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("non-archive file must survive")
	}
	if _, err := os.Stat(filepath.Join(dir, "sub.osz")); err != nil {
		t.Error("directories are never treated as archives")
	}
}

func TestExtract_MissingDir(t *testing.T) {
	if err := New(nil).Extract(filepath.Join(t.TempDir(), "absent"), true); err != nil {
		t.Errorf("missing dir should not error, got %v", err)
	}
}

func TestExtract_PathTraversalEntrySkipped(t *testing.T) {
	dir := t.TempDir()
	writeZip(t, filepath.Join(dir, "Evil [3].osz"), map[string]string{
		"../escape.txt": "nope",
		"ok.osu":        "fine",
	})

	if err := New(nil).Extract(dir, false); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry must not be written outside the stem dir")
	}
	if _, err := os.Stat(filepath.Join(dir, "Evil [3]", "ok.osu")); err != nil {
		t.Errorf("legitimate entry should still extract: %v", err)
	}
}
