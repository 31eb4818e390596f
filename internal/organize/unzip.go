package organize

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tidyd/internal/errors"
	"tidyd/internal/log"
)

// unzip extracts the archive at src into the destination directory under the
// base directory. Entries whose paths would escape the destination are
// skipped with a warning; any other entry failure aborts the extraction.
// The source archive is left in place.
func (e *Executor) unzip(src, dest string) (Outcome, error) {
	reader, err := zip.OpenReader(src)
	if err != nil {
		return "", errors.NewFileError("failed to open archive", src, errors.ArchiveOpenFailed, err)
	}
	defer reader.Close()

	destDir := filepath.Join(e.baseDir, dest)

	if e.dryRun {
		log.Infof("Would extract %s (%d entries) -> %s", src, len(reader.File), destDir)
		return OutcomeDryRun, nil
	}

	for _, entry := range reader.File {
		if entry.Comment != "" {
			log.LogWithFields(
				log.F("archive", src),
				log.F("entry", entry.Name),
				log.F("comment", entry.Comment),
			).Info("archive entry comment")
		}

		path, ok := enclosedPath(destDir, entry.Name)
		if !ok {
			log.Warnf("Skipping archive entry %q: path escapes %s", entry.Name, destDir)
			continue
		}

		if err := e.extractEntry(entry, path); err != nil {
			return "", errors.NewFileError(
				fmt.Sprintf("failed to extract entry %q", entry.Name),
				src, errors.ArchiveExtractFailed, err)
		}
	}

	log.Infof("Extracted %s -> %s", src, destDir)
	return OutcomeExtracted, nil
}

// extractEntry writes one archive entry to path, creating missing parent
// directories. Directory entries are those whose stored name ends with "/".
func (e *Executor) extractEntry(entry *zip.File, path string) error {
	if strings.HasSuffix(entry.Name, "/") {
		return os.MkdirAll(path, 0755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return err
	}

	if perm := entry.Mode().Perm(); perm != 0 {
		if err := out.Chmod(perm); err != nil {
			return err
		}
	}

	return nil
}

// enclosedPath joins an archive entry name under destDir and reports whether
// the result stays inside destDir. Absolute entry names and names whose
// cleaned form climbs out via ".." fail the check.
func enclosedPath(destDir, name string) (string, bool) {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) {
		return "", false
	}
	name = filepath.Clean(name)
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(destDir, name), true
}
