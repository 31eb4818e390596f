package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidyd/internal/config"
	"tidyd/internal/errors"
	"tidyd/pkg/testutils"
	"tidyd/pkg/types"
)

func testConfig(t *testing.T, rules []types.Rule) *config.Config {
	t.Helper()

	cfg := config.New()
	cfg.BaseDir = t.TempDir()
	cfg.WatchDir = "inbox"
	cfg.Rules = rules
	require.NoError(t, os.Mkdir(cfg.WatchPath(), 0755))
	return cfg
}

func moveRule(regex, dest string) types.Rule {
	return types.Rule{
		Regex: regex,
		Actions: []types.Action{
			{Kind: types.ActionMove, Dest: dest, Duplicate: types.DuplicateRenameDate},
		},
	}
}

func dropFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met within deadline")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestHandleEventMovesMatchingFile(t *testing.T) {
	cfg := testConfig(t, []types.Rule{moveRule(`\.txt$`, "text")})
	require.NoError(t, os.Mkdir(filepath.Join(cfg.BaseDir, "text"), 0755))

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	src := filepath.Join(cfg.WatchPath(), "notes.txt")
	dropFile(t, src, "hello")

	d.handleEvent(Event{Name: src, Op: fsnotify.Create, Timestamp: time.Now()})

	_, err = os.Stat(src)
	assert.ErrorIs(t, err, os.ErrNotExist, "source should be gone after the move")
	_, err = os.Stat(filepath.Join(cfg.BaseDir, "text", "notes.txt"))
	assert.NoError(t, err, "file should land in the destination")

	status := d.Status()
	assert.Equal(t, 1, status.FilesProcessed)
	assert.False(t, status.LastActivity.IsZero())
}

func TestHandleEventDeletesMatchingFile(t *testing.T) {
	cfg := testConfig(t, []types.Rule{{
		Regex:   `\.tmp\.bak$`,
		Actions: []types.Action{{Kind: types.ActionDelete}},
	}})

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	src := filepath.Join(cfg.WatchPath(), "session.tmp.bak")
	dropFile(t, src, "scratch")

	d.handleEvent(Event{Name: src, Op: fsnotify.Write, Timestamp: time.Now()})

	_, err = os.Stat(src)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 1, d.Status().FilesProcessed)
}

func TestHandleEventExtractsArchive(t *testing.T) {
	cfg := testConfig(t, []types.Rule{{
		Regex:   `\.zip$`,
		Actions: []types.Action{{Kind: types.ActionUnzip, Dest: "extracted"}},
	}})

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	archive := filepath.Join(cfg.WatchPath(), "archive.zip")
	testutils.WriteZip(t, archive, []testutils.ZipEntry{
		{Name: "a.txt", Content: "hello"},
	})

	d.handleEvent(Event{Name: archive, Op: fsnotify.Create, Timestamp: time.Now()})

	assert.Equal(t, "hello", testutils.ReadFileString(t, filepath.Join(cfg.BaseDir, "extracted", "a.txt")))

	// Unzip leaves the archive in the watch directory.
	_, err = os.Stat(archive)
	assert.NoError(t, err)
	assert.Equal(t, 1, d.Status().FilesProcessed)
}

func TestHandleEventDiscardsUninterestingOps(t *testing.T) {
	cfg := testConfig(t, []types.Rule{moveRule(`\.txt$`, "text")})
	require.NoError(t, os.Mkdir(filepath.Join(cfg.BaseDir, "text"), 0755))

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	src := filepath.Join(cfg.WatchPath(), "notes.txt")
	dropFile(t, src, "hello")

	for _, op := range []fsnotify.Op{fsnotify.Remove, fsnotify.Rename, fsnotify.Chmod} {
		d.handleEvent(Event{Name: src, Op: op, Timestamp: time.Now()})
	}

	_, err = os.Stat(src)
	assert.NoError(t, err, "file should be untouched by non-create, non-write events")
	assert.Equal(t, 0, d.Status().FilesProcessed)
}

func TestHandleEventSkipsIgnoredNames(t *testing.T) {
	cfg := testConfig(t, []types.Rule{moveRule(`\.part$`, "text")})
	cfg.Ignore = []string{"*.part"}
	require.NoError(t, os.Mkdir(filepath.Join(cfg.BaseDir, "text"), 0755))

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	src := filepath.Join(cfg.WatchPath(), "movie.mkv.part")
	dropFile(t, src, "partial download")

	d.handleEvent(Event{Name: src, Op: fsnotify.Create, Timestamp: time.Now()})

	_, err = os.Stat(src)
	assert.NoError(t, err, "ignored file should stay put even when a rule matches it")
	assert.Equal(t, 0, d.Status().FilesProcessed)
}

func TestHandleEventDiscardsVanishedFile(t *testing.T) {
	cfg := testConfig(t, []types.Rule{moveRule(`\.txt$`, "text")})

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	// Event for a file that was removed before we got to it.
	gone := filepath.Join(cfg.WatchPath(), "already-gone.txt")
	d.handleEvent(Event{Name: gone, Op: fsnotify.Create, Timestamp: time.Now()})

	status := d.Status()
	assert.Equal(t, 0, status.FilesProcessed)
	assert.True(t, status.LastActivity.IsZero(), "discarded events should not count as activity")
}

func TestHandleEventDiscardsDirectories(t *testing.T) {
	cfg := testConfig(t, []types.Rule{moveRule(`archive`, "text")})
	require.NoError(t, os.Mkdir(filepath.Join(cfg.BaseDir, "text"), 0755))

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	sub := filepath.Join(cfg.WatchPath(), "archive-staging")
	require.NoError(t, os.Mkdir(sub, 0755))

	d.handleEvent(Event{Name: sub, Op: fsnotify.Create, Timestamp: time.Now()})

	info, err := os.Stat(sub)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "directories in the watch directory are left alone")
	assert.Equal(t, 0, d.Status().FilesProcessed)
}

func TestHandleEventSurvivesActionFailure(t *testing.T) {
	cfg := testConfig(t, []types.Rule{
		moveRule(`\.bad\.txt$`, "missing"),
		moveRule(`\.txt$`, "text"),
	})
	require.NoError(t, os.Mkdir(filepath.Join(cfg.BaseDir, "text"), 0755))

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	failing := filepath.Join(cfg.WatchPath(), "aaa.bad.txt")
	dropFile(t, failing, "doomed")
	d.handleEvent(Event{Name: failing, Op: fsnotify.Create, Timestamp: time.Now()})

	// The failed move leaves the source behind and counts nothing.
	_, err = os.Stat(failing)
	assert.NoError(t, err)
	assert.Equal(t, 0, d.Status().FilesProcessed)

	// The next event still processes normally.
	ok := filepath.Join(cfg.WatchPath(), "bbb.txt")
	dropFile(t, ok, "fine")
	d.handleEvent(Event{Name: ok, Op: fsnotify.Create, Timestamp: time.Now()})

	_, err = os.Stat(filepath.Join(cfg.BaseDir, "text", "bbb.txt"))
	assert.NoError(t, err)
	assert.Equal(t, 1, d.Status().FilesProcessed)
}

func TestHandleEventNoRuleMatched(t *testing.T) {
	cfg := testConfig(t, []types.Rule{moveRule(`\.pdf$`, "documents")})

	d, err := NewDaemon(cfg)
	require.NoError(t, err)

	src := filepath.Join(cfg.WatchPath(), "mystery.dat")
	dropFile(t, src, "unclassified")

	d.handleEvent(Event{Name: src, Op: fsnotify.Create, Timestamp: time.Now()})

	_, err = os.Stat(src)
	assert.NoError(t, err, "unmatched files stay in the watch directory")
	assert.Equal(t, 0, d.Status().FilesProcessed)
}

func TestNewDaemonRejectsBadPattern(t *testing.T) {
	cfg := testConfig(t, []types.Rule{{
		Regex:   "(",
		Actions: []types.Action{{Kind: types.ActionDelete}},
	}})

	_, err := NewDaemon(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRule(err))
}

func TestDaemonMovesDroppedFile(t *testing.T) {
	cfg := testConfig(t, []types.Rule{moveRule(`\.txt$`, "text")})
	require.NoError(t, os.Mkdir(filepath.Join(cfg.BaseDir, "text"), 0755))

	d, err := NewDaemon(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Start())
	defer d.Stop()

	// Give fsnotify a moment to register the watch.
	time.Sleep(100 * time.Millisecond)

	src := filepath.Join(cfg.WatchPath(), "dropped.txt")
	dropFile(t, src, "payload")

	moved := filepath.Join(cfg.BaseDir, "text", "dropped.txt")
	waitFor(t, func() bool {
		_, err := os.Stat(moved)
		return err == nil
	})

	_, err = os.Stat(src)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, d.Status().Running)
	waitFor(t, func() bool {
		return d.Status().FilesProcessed >= 1
	})
}

func TestDaemonStartTwice(t *testing.T) {
	cfg := testConfig(t, nil)

	d, err := NewDaemon(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Start())
	defer d.Stop()

	err = d.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestDaemonStopIsIdempotent(t *testing.T) {
	cfg := testConfig(t, nil)

	d, err := NewDaemon(cfg)
	require.NoError(t, err)
	require.NoError(t, d.Start())

	d.Stop()
	d.Stop()

	assert.False(t, d.Status().Running)
}
