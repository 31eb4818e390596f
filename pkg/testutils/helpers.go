package testutils

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
}

// CreateDirs creates each named directory under base.
func CreateDirs(t *testing.T, base string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.MkdirAll(filepath.Join(base, name), 0755))
	}
}

// ReadFileString returns the file's content as a string.
func ReadFileString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// ZipEntry describes one entry for WriteZip. A Name ending in "/" produces a
// directory entry. Mode zero keeps the archive writer's default.
type ZipEntry struct {
	Name    string
	Content string
	Mode    os.FileMode
	Comment string
}

// WriteZip writes a zip archive at path containing the given entries in
// order. Entry names are stored verbatim, so traversal names like
// "../escape.txt" survive intact for extraction safety tests.
func WriteZip(t *testing.T, path string, entries []ZipEntry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)
	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:    entry.Name,
			Comment: entry.Comment,
		}
		if strings.HasSuffix(entry.Name, "/") {
			header.Method = zip.Store
		} else {
			header.Method = zip.Deflate
		}
		if entry.Mode != 0 {
			header.SetMode(entry.Mode)
		}

		fw, err := w.CreateHeader(header)
		require.NoError(t, err)
		if !strings.HasSuffix(entry.Name, "/") {
			_, err = fw.Write([]byte(entry.Content))
			require.NoError(t, err)
		}
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}
