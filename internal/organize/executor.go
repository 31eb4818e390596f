package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tidyd/internal/errors"
	"tidyd/internal/log"
	"tidyd/pkg/types"
)

// Outcome describes what an executed action did with a file.
type Outcome string

const (
	OutcomeMoved     Outcome = "moved"
	OutcomeExtracted Outcome = "extracted"
	OutcomeDeleted   Outcome = "deleted"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeDryRun    Outcome = "dry-run"
)

// timestampLayout names duplicate files moved with the rename-date strategy.
const timestampLayout = "2006-01-02T15_04_05"

// Executor performs rule actions on files. Destination paths resolve against
// the base directory. In dry-run mode every action logs what it would do and
// touches nothing.
type Executor struct {
	baseDir string
	dryRun  bool
}

// New creates an executor rooted at baseDir.
func New(baseDir string, dryRun bool) *Executor {
	return &Executor{baseDir: baseDir, dryRun: dryRun}
}

// DryRun reports whether the executor only simulates actions.
func (e *Executor) DryRun() bool {
	return e.dryRun
}

// Execute runs a single action against the file at src and reports what
// happened. Failures are per-event errors; the caller logs them and moves on
// to the next file.
func (e *Executor) Execute(action types.Action, src string) (Outcome, error) {
	switch action.Kind {
	case types.ActionMove:
		return e.move(src, action.Dest, action.Duplicate)
	case types.ActionUnzip:
		return e.unzip(src, action.Dest)
	case types.ActionDelete:
		return e.remove(src)
	default:
		return "", errors.Newf("unknown action kind %q", action.Kind)
	}
}

// move renames src into the destination directory, resolving an existing
// target via the duplicate strategy. The destination directory itself is
// expected to exist already.
func (e *Executor) move(src, dest string, strategy types.DuplicateStrategy) (Outcome, error) {
	target := filepath.Join(e.baseDir, dest, filepath.Base(src))

	_, err := os.Stat(target)
	switch {
	case os.IsNotExist(err):
		if e.dryRun {
			log.Infof("Would move %s -> %s", src, target)
			return OutcomeDryRun, nil
		}
		if err := os.Rename(src, target); err != nil {
			return "", errors.NewFileError("failed to move file", src, errors.FileOperationFailed, err)
		}
		log.Infof("Moved %s -> %s", src, target)
		return OutcomeMoved, nil
	case err != nil:
		return "", errors.NewFileError("failed to check move target", target, errors.FileOperationFailed, err)
	}

	switch strategy {
	case types.DuplicateSkip:
		log.Infof("Target %s exists, leaving %s in place", target, src)
		return OutcomeSkipped, nil

	case types.DuplicateOverwrite:
		if e.dryRun {
			log.Infof("Would overwrite %s with %s", target, src)
			return OutcomeDryRun, nil
		}
		if err := os.Rename(src, target); err != nil {
			return "", errors.NewFileError("failed to overwrite target", src, errors.FileOperationFailed, err)
		}
		log.Infof("Moved %s -> %s (overwrote existing)", src, target)
		return OutcomeMoved, nil

	case types.DuplicateRenameDate:
		stamped := filepath.Join(filepath.Dir(target),
			fmt.Sprintf("%s__%s", time.Now().Format(timestampLayout), filepath.Base(src)))
		if e.dryRun {
			log.Infof("Would move %s -> %s", src, stamped)
			return OutcomeDryRun, nil
		}
		if err := os.Rename(src, stamped); err != nil {
			return "", errors.NewFileError("failed to move file under dated name", src, errors.FileOperationFailed, err)
		}
		log.Infof("Moved %s -> %s (target existed)", src, stamped)
		return OutcomeMoved, nil

	default:
		return "", errors.Newf("unknown duplicate strategy %q", strategy)
	}
}

// remove deletes the source file.
func (e *Executor) remove(src string) (Outcome, error) {
	if e.dryRun {
		log.Infof("Would delete %s", src)
		return OutcomeDryRun, nil
	}
	if err := os.Remove(src); err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewFileError("file already gone", src, errors.FileNotFound, err)
		}
		return "", errors.NewFileError("failed to delete file", src, errors.FileOperationFailed, err)
	}
	log.Infof("Deleted %s", src)
	return OutcomeDeleted, nil
}
