package organize_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyd/internal/organize"
	"tidyd/internal/rules"
	"tidyd/pkg/testutils"
	"tidyd/pkg/types"
)

func TestSweep(t *testing.T) {
	base := t.TempDir()
	testutils.CreateDirs(t, base, "text", "sub")
	testutils.CreateTestFilesWithContent(t, base, map[string]string{
		"notes.txt":      "remember",
		"photo.jpg":      "pixels",
		"movie.mkv.part": "partial",
		"junk.iso":       "x",
	})

	eng, err := rules.NewEngine([]types.Rule{
		{Regex: `\.txt$`, Actions: []types.Action{moveAction("text", types.DuplicateRenameDate)}},
		{Regex: `\.iso$`, Actions: []types.Action{{Kind: types.ActionDelete}}},
	}, []string{"*.part"})
	require.NoError(t, err)

	res, err := organize.Sweep(eng, organize.New(base, false), base)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, 1, res.Ignored)
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, 1, res.Moved)
	assert.Equal(t, 1, res.Deleted)
	assert.Equal(t, 0, res.Extracted)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, res.Failed)

	assert.Equal(t, "remember", testutils.ReadFileString(t, filepath.Join(base, "text", "notes.txt")))
	assert.Equal(t, "pixels", testutils.ReadFileString(t, filepath.Join(base, "photo.jpg")),
		"unmatched files stay put")
	assert.Equal(t, "partial", testutils.ReadFileString(t, filepath.Join(base, "movie.mkv.part")),
		"ignored files stay put")

	_, err = os.Stat(filepath.Join(base, "junk.iso"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSweepDryRun(t *testing.T) {
	base := t.TempDir()
	testutils.CreateDirs(t, base, "text")
	testutils.CreateTestFilesWithContent(t, base, map[string]string{
		"notes.txt": "remember",
		"junk.iso":  "x",
	})

	eng, err := rules.NewEngine([]types.Rule{
		{Regex: `\.txt$`, Actions: []types.Action{moveAction("text", types.DuplicateRenameDate)}},
		{Regex: `\.iso$`, Actions: []types.Action{{Kind: types.ActionDelete}}},
	}, nil)
	require.NoError(t, err)

	res, err := organize.Sweep(eng, organize.New(base, true), base)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, 0, res.Moved)
	assert.Equal(t, 0, res.Deleted)
	assert.Equal(t, 0, res.Failed)

	assert.Equal(t, "remember", testutils.ReadFileString(t, filepath.Join(base, "notes.txt")))
	assert.Equal(t, "x", testutils.ReadFileString(t, filepath.Join(base, "junk.iso")))
}

func TestSweepContinuesAfterFailure(t *testing.T) {
	base := t.TempDir()
	testutils.CreateDirs(t, base, "docs")
	testutils.CreateTestFilesWithContent(t, base, map[string]string{
		"aaa.txt": "doomed",
		"bbb.md":  "fine",
	})

	eng, err := rules.NewEngine([]types.Rule{
		{Regex: `\.txt$`, Actions: []types.Action{moveAction("missing-dir", types.DuplicateRenameDate)}},
		{Regex: `\.md$`, Actions: []types.Action{moveAction("docs", types.DuplicateRenameDate)}},
	}, nil)
	require.NoError(t, err)

	res, err := organize.Sweep(eng, organize.New(base, false), base)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Moved)

	// The failed file stays; the later file still moved.
	assert.Equal(t, "doomed", testutils.ReadFileString(t, filepath.Join(base, "aaa.txt")))
	assert.Equal(t, "fine", testutils.ReadFileString(t, filepath.Join(base, "docs", "bbb.md")))
}

func TestSweepMissingDirectory(t *testing.T) {
	eng, err := rules.NewEngine(nil, nil)
	require.NoError(t, err)

	_, err = organize.Sweep(eng, organize.New(t.TempDir(), false), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
