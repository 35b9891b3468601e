package extract

import (
	"archive/zip"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// archiveExt is the beatmap archive extension, matched case-insensitively.
const archiveExt = ".osz"

// Extractor unpacks downloaded beatmap archives.
//
// A .osz archive is a zip container holding the beatmap's loose files.
// Extraction of one archive failing (corrupt download, truncated file)
// is never fatal to the batch: the archive is skipped and the rest
// proceed. When deletion is requested it runs as a separate second
// pass over the archives that were present when the pass started, so a
// mid-extraction failure never leaves an archive deleted without its
// contents recoverable.
type Extractor struct {
	logger *slog.Logger
}

// New creates an Extractor. logger may be nil.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{logger: logger}
}

// Extract unpacks every archive directly under dir into a sibling
// directory named after the archive's filename stem. With deleteAfter
// set, exactly the archives found at the start of the pass are removed
// once the whole extraction pass completes, regardless of per-archive
// success.
//
// A missing dir is not an error; there is simply nothing to extract.
func (e *Extractor) Extract(dir string, deleteAfter bool) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var archives []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), archiveExt) {
			archives = append(archives, entry.Name())
		}
	}

	for _, name := range archives {
		archivePath := filepath.Join(dir, name)
		destDir := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name)))
		if err := extractArchive(archivePath, destDir); err != nil {
			e.logger.Debug("skipping unextractable archive",
				slog.String("archive", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		e.logger.Debug("extracted archive", slog.String("archive", name))
	}

	if deleteAfter {
		for _, name := range archives {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				e.logger.Debug("could not delete archive",
					slog.String("archive", name),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return nil
}

// extractArchive unpacks one zip archive into destDir.
func extractArchive(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := extractFile(file, destDir); err != nil {
			return err
		}
	}
	return nil
}

// extractFile writes a single zip member under destDir, refusing
// members whose path would escape it.
func extractFile(file *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.FromSlash(file.Name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		// Path traversal entry; skip it rather than fail the archive.
		return nil
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
