package organize

import (
	"os"
	"path/filepath"

	"tidyd/internal/errors"
	"tidyd/internal/log"
	"tidyd/internal/rules"
	"tidyd/pkg/types"
)

// Sweep applies the rule pipeline to every regular file already present in
// dir, in directory-listing order. Per-file failures are logged and counted;
// the pass always runs to the end. Subdirectories are never entered.
func Sweep(eng *rules.Engine, exec *Executor, dir string) (*types.SweepResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewFileError("failed to read watch directory", dir, errors.FileOperationFailed, err)
	}

	res := &types.SweepResult{}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		res.Scanned++

		path := filepath.Join(dir, entry.Name())

		if eng.Ignored(entry.Name()) {
			res.Ignored++
			log.Debugf("Ignoring %s", entry.Name())
			continue
		}

		rule, err := eng.Select(path)
		if err != nil {
			res.Failed++
			log.LogWithError(err).Warn("failed to match file during sweep")
			continue
		}
		if rule == nil {
			log.Debugf("No rule matched %s", entry.Name())
			continue
		}
		res.Matched++

		outcome, err := exec.Execute(rule.Actions[0], path)
		if err != nil {
			res.Failed++
			log.LogWithError(err).Error("action failed during sweep")
			continue
		}

		switch outcome {
		case OutcomeMoved:
			res.Moved++
		case OutcomeExtracted:
			res.Extracted++
		case OutcomeDeleted:
			res.Deleted++
		case OutcomeSkipped:
			res.Skipped++
		}
	}

	return res, nil
}
