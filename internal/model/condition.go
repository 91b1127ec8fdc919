package model

import (
	"encoding/json"
	"fmt"
)

// ConditionKind is the closed vocabulary of boolean predicates over the
// current environment (§3).
type ConditionKind string

const (
	CondPathExists       ConditionKind = "path-exists"
	CondGitBranchMatches ConditionKind = "git-branch-matches-glob"
	CondEnvSet           ConditionKind = "env-var-set-and-nonempty"
	CondEnvEquals        ConditionKind = "env-var-equals-literal-string"
	CondFileContains     ConditionKind = "file-contains-substring-or-regex"
	CondNot              ConditionKind = "negation-of-any-condition"
)

// Condition is a tagged variant over the closed condition vocabulary. Each
// variant carries exactly its required parameters; fields irrelevant to the
// variant in play are simply left zero.
type Condition struct {
	Kind ConditionKind

	// path-exists
	Path string

	// git-branch-matches-glob
	Branch string

	// env-var-set-and-nonempty / env-var-equals-literal-string
	EnvName string
	// EnvEqualsRaw holds the raw JSON value bound to "equals" so the
	// evaluator can detect and warn on a non-string literal rather than
	// silently coercing it (per §4.3).
	EnvEqualsRaw json.RawMessage

	// file-contains-substring-or-regex
	FilePath string
	Pattern  string
	Regex    bool

	// negation-of-any-condition
	Negate *Condition

	// Malformed marks a condition record that didn't parse into a
	// recognized shape; the evaluator treats it as always-false with a
	// warning rather than panicking on nil fields.
	Malformed    bool
	MalformedWhy string
}

// conditionWire is the raw JSON shape a condition record is decoded from
// before being classified into a Condition.
type conditionWire struct {
	Type   string          `json:"type"`
	Path   string          `json:"path,omitempty"`
	Branch string          `json:"branch,omitempty"`
	Name   string          `json:"name,omitempty"`
	Equals json.RawMessage `json:"equals,omitempty"`
	File   string          `json:"file,omitempty"`
	Match  string          `json:"match,omitempty"`
	Regex  bool            `json:"regex,omitempty"`
	Of     json.RawMessage `json:"of,omitempty"`
}

// UnmarshalJSON classifies a raw condition record into its tagged variant.
// Per §7 ("schema drift"), an unrecognized type or missing required field
// never errors the whole config file — it becomes a Malformed condition
// that the evaluator later turns into false-with-warning.
func (c *Condition) UnmarshalJSON(b []byte) error {
	var w conditionWire
	if err := json.Unmarshal(b, &w); err != nil {
		c.Malformed = true
		c.MalformedWhy = fmt.Sprintf("condition is not a JSON object: %v", err)
		return nil
	}

	switch ConditionKind(w.Type) {
	case CondPathExists:
		if w.Path == "" {
			c.Malformed = true
			c.MalformedWhy = "path-exists missing \"path\""
			return nil
		}
		c.Kind = CondPathExists
		c.Path = w.Path

	case CondGitBranchMatches:
		if w.Branch == "" {
			c.Malformed = true
			c.MalformedWhy = "git-branch-matches-glob missing \"branch\""
			return nil
		}
		c.Kind = CondGitBranchMatches
		c.Branch = w.Branch

	case CondEnvSet:
		if w.Name == "" {
			c.Malformed = true
			c.MalformedWhy = "env-var-set-and-nonempty missing \"name\""
			return nil
		}
		c.Kind = CondEnvSet
		c.EnvName = w.Name

	case CondEnvEquals:
		if w.Name == "" {
			c.Malformed = true
			c.MalformedWhy = "env-var-equals-literal-string missing \"name\""
			return nil
		}
		c.Kind = CondEnvEquals
		c.EnvName = w.Name
		c.EnvEqualsRaw = w.Equals

	case CondFileContains:
		if w.File == "" || w.Match == "" {
			c.Malformed = true
			c.MalformedWhy = "file-contains-substring-or-regex missing \"file\" or \"match\""
			return nil
		}
		c.Kind = CondFileContains
		c.FilePath = w.File
		c.Pattern = w.Match
		c.Regex = w.Regex

	case CondNot:
		if len(w.Of) == 0 {
			c.Malformed = true
			c.MalformedWhy = "negation-of-any-condition missing \"of\""
			return nil
		}
		var inner Condition
		if err := json.Unmarshal(w.Of, &inner); err != nil {
			c.Malformed = true
			c.MalformedWhy = "negation-of-any-condition \"of\" is not a condition"
			return nil
		}
		c.Kind = CondNot
		c.Negate = &inner

	default:
		c.Malformed = true
		c.MalformedWhy = fmt.Sprintf("unknown condition type %q", w.Type)
	}

	return nil
}

// MarshalJSON re-emits a Condition in the wire shape it was decoded from,
// so skillbusctl's read-modify-write cycle round-trips inserts carrying
// conditions without losing them. A Malformed condition (which carries no
// reconstructible wire shape) marshals back to an empty object — it only
// ever arises from a file skillbusctl already refuses to write to unedited.
func (c Condition) MarshalJSON() ([]byte, error) {
	if c.Malformed {
		return []byte("{}"), nil
	}

	w := conditionWire{Type: string(c.Kind)}
	switch c.Kind {
	case CondPathExists:
		w.Path = c.Path
	case CondGitBranchMatches:
		w.Branch = c.Branch
	case CondEnvSet:
		w.Name = c.EnvName
	case CondEnvEquals:
		w.Name = c.EnvName
		w.Equals = c.EnvEqualsRaw
	case CondFileContains:
		w.File = c.FilePath
		w.Match = c.Pattern
		w.Regex = c.Regex
	case CondNot:
		if c.Negate != nil {
			inner, err := json.Marshal(*c.Negate)
			if err != nil {
				return nil, err
			}
			w.Of = inner
		}
	}
	return json.Marshal(w)
}
