package types

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ActionKind identifies which disposition an Action performs.
type ActionKind string

const (
	ActionMove   ActionKind = "move"
	ActionUnzip  ActionKind = "unzip"
	ActionDelete ActionKind = "delete"
)

// DuplicateStrategy selects how a move resolves an already-existing target path.
type DuplicateStrategy string

const (
	DuplicateRenameDate DuplicateStrategy = "rename-date" // prefix a timestamp and move beside the target
	DuplicateSkip       DuplicateStrategy = "skip"        // leave the source where it is
	DuplicateOverwrite  DuplicateStrategy = "overwrite"   // replace the target
)

// Valid reports whether s is one of the recognized strategies.
func (s DuplicateStrategy) Valid() bool {
	switch s {
	case DuplicateRenameDate, DuplicateSkip, DuplicateOverwrite:
		return true
	}
	return false
}

// Rule pairs a filename pattern with the actions to take on matching files.
// Rules are evaluated in the order they appear in the configuration; the first
// rule whose pattern and size gate both pass decides the file's fate.
type Rule struct {
	Regex   string   `yaml:"regex"`             // Pattern searched anywhere in the file name (e.g. '\.zip$', 'backup').
	MinSize string   `yaml:"minSize,omitempty"` // Optional size gate (e.g. "500k", "2gb"); files must be strictly larger.
	Actions []Action `yaml:"actions"`           // Ordered action list; only the first entry executes.
}

// Action is a single file disposition from a rule's action list. Kind selects
// the variant; Dest and Duplicate carry parameters for the kinds that use them.
type Action struct {
	Kind      ActionKind
	Dest      string            // move, unzip: destination directory relative to baseDir
	Duplicate DuplicateStrategy // move only
}

// actionParams mirrors the mapping body of a move or unzip action in YAML.
type actionParams struct {
	Dest      string            `yaml:"dest,omitempty"`
	Duplicate DuplicateStrategy `yaml:"duplicate,omitempty"`
}

// UnmarshalYAML decodes the action shapes the config file accepts:
//
//	- delete
//	- delete:
//	- move: {dest: archives, duplicate: skip}
//	- unzip: {dest: extracted}
//
// A missing duplicate strategy defaults to rename-date. Unknown action names,
// unknown strategies, and multi-key mappings are rejected.
func (a *Action) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		if ActionKind(strings.ToLower(name)) != ActionDelete {
			return fmt.Errorf("unknown action %q", name)
		}
		*a = Action{Kind: ActionDelete}
		return nil

	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("action must be a single-key mapping, got %d keys", len(node.Content)/2)
		}
		var key string
		if err := node.Content[0].Decode(&key); err != nil {
			return err
		}
		var params actionParams
		switch kind := ActionKind(strings.ToLower(key)); kind {
		case ActionMove:
			if err := node.Content[1].Decode(&params); err != nil {
				return fmt.Errorf("move action: %w", err)
			}
			if params.Duplicate == "" {
				params.Duplicate = DuplicateRenameDate
			}
			if !params.Duplicate.Valid() {
				return fmt.Errorf("unknown duplicate strategy %q", params.Duplicate)
			}
			*a = Action{Kind: ActionMove, Dest: params.Dest, Duplicate: params.Duplicate}
			return nil
		case ActionUnzip:
			if err := node.Content[1].Decode(&params); err != nil {
				return fmt.Errorf("unzip action: %w", err)
			}
			*a = Action{Kind: ActionUnzip, Dest: params.Dest}
			return nil
		case ActionDelete:
			*a = Action{Kind: ActionDelete}
			return nil
		default:
			return fmt.Errorf("unknown action %q", key)
		}

	default:
		return fmt.Errorf("action must be a string or a single-key mapping")
	}
}

// MarshalYAML renders the action back in its canonical config shape.
func (a Action) MarshalYAML() (interface{}, error) {
	switch a.Kind {
	case ActionMove:
		return map[string]actionParams{"move": {Dest: a.Dest, Duplicate: a.Duplicate}}, nil
	case ActionUnzip:
		return map[string]actionParams{"unzip": {Dest: a.Dest}}, nil
	case ActionDelete:
		return string(ActionDelete), nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// String renders the action for logs and rule listings.
func (a Action) String() string {
	switch a.Kind {
	case ActionMove:
		return fmt.Sprintf("move -> %s (%s)", a.Dest, a.Duplicate)
	case ActionUnzip:
		return fmt.Sprintf("unzip -> %s", a.Dest)
	case ActionDelete:
		return "delete"
	default:
		return string(a.Kind)
	}
}
