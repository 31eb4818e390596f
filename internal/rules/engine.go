package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"

	"tidyd/internal/errors"
	"tidyd/internal/log"
	"tidyd/pkg/types"
)

// Rule is a single organization rule with its filename pattern compiled.
type Rule struct {
	Regex   *regexp.Regexp // Compiled filename pattern
	MinSize string         // Optional size gate, empty means no gate
	Actions []types.Action // Actions in config order, only the first runs
}

// Pattern returns the source text of the rule's filename pattern.
func (r *Rule) Pattern() string {
	return r.Regex.String()
}

// Engine evaluates filenames against the configured rules in order.
// The first rule whose pattern matches and whose size gate passes wins.
type Engine struct {
	rules  []Rule
	ignore []glob.Glob
	sizes  *SizeMatcher
}

// NewEngine compiles the rule patterns and ignore globs into an engine.
// Rules keep their configured order. A rule carrying more than one action
// is accepted with a warning since only the first action ever runs.
func NewEngine(ruleSpecs []types.Rule, ignore []string) (*Engine, error) {
	sizes, err := NewSizeMatcher()
	if err != nil {
		return nil, err
	}

	eng := &Engine{sizes: sizes}

	for _, spec := range ruleSpecs {
		re, err := regexp.Compile(spec.Regex)
		if err != nil {
			return nil, errors.NewRuleError(
				fmt.Sprintf("invalid rule pattern %q", spec.Regex),
				spec.Regex, errors.InvalidRule, err)
		}
		if len(spec.Actions) > 1 {
			extras := make([]string, 0, len(spec.Actions)-1)
			for _, a := range spec.Actions[1:] {
				extras = append(extras, a.String())
			}
			log.Warnf("rule %q has %d actions but only the first runs, ignoring: %s",
				spec.Regex, len(spec.Actions), strings.Join(extras, "; "))
		}
		eng.rules = append(eng.rules, Rule{
			Regex:   re,
			MinSize: spec.MinSize,
			Actions: spec.Actions,
		})
	}

	for _, pattern := range ignore {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.NewConfigError(
				fmt.Sprintf("invalid ignore pattern %q", pattern),
				"ignore", errors.InvalidConfig, err)
		}
		eng.ignore = append(eng.ignore, g)
	}

	return eng, nil
}

// Rules returns the compiled rules in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Ignored reports whether the file's base name matches any ignore pattern.
func (e *Engine) Ignored(path string) bool {
	name := filepath.Base(path)
	for _, g := range e.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Select returns the first rule matching the file at path, or nil when no
// rule matches. Matching runs against the base name only. The file is
// stat'ed at most once, and only when a matching rule carries a size gate.
func (e *Engine) Select(path string) (*Rule, error) {
	name := filepath.Base(path)

	var info os.FileInfo
	for i := range e.rules {
		rule := &e.rules[i]
		if !rule.Regex.MatchString(name) {
			continue
		}

		if rule.MinSize != "" {
			if info == nil {
				fi, err := os.Stat(path)
				if err != nil {
					if os.IsNotExist(err) {
						return nil, errors.NewFileError("file vanished before size check", path, errors.FileNotFound, err)
					}
					return nil, errors.NewFileError("failed to stat file for size check", path, errors.FileOperationFailed, err)
				}
				info = fi
			}

			passes, err := e.sizes.Exceeds(info.Size(), rule.MinSize)
			if err != nil {
				return nil, err
			}
			if !passes {
				log.LogWithFields(
					log.F("rule", rule.Pattern()),
					log.F("file", name),
					log.F("size", humanize.IBytes(uint64(info.Size()))),
					log.F("minSize", rule.MinSize),
				).Debug("size gate not exceeded, trying next rule")
				continue
			}
		}

		return rule, nil
	}

	return nil, nil
}
