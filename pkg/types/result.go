package types

// SweepResult summarizes one pass over the watch directory.
type SweepResult struct {
	Scanned   int `json:"scanned"`   // regular files considered
	Ignored   int `json:"ignored"`   // skipped by ignore patterns
	Matched   int `json:"matched"`   // files a rule claimed
	Moved     int `json:"moved"`     // move actions completed
	Extracted int `json:"extracted"` // unzip actions completed
	Deleted   int `json:"deleted"`   // delete actions completed
	Skipped   int `json:"skipped"`   // duplicate-skip outcomes
	Failed    int `json:"failed"`    // per-file errors
}
