// Package condition implements C3, the condition evaluator: a total function
// from (Condition, Environment) to (bool, optional warning). It never raises;
// every internal error folds into a false result plus a warning line.
package condition

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hazyhaar/skillbus/internal/gitinfo"
	"github.com/hazyhaar/skillbus/internal/model"
)

const (
	// maxFileContainsSize bounds the file read at 1 MiB, per §4.3.
	maxFileContainsSize = 1 << 20
	// maxPatternLen bounds regex compilation cost, per §4.3.
	maxPatternLen = 500
)

// Environment is the slice of the host's world a condition can query.
type Environment struct {
	WorkDir string
	Getenv  func(string) string
	Git     *gitinfo.Repo
}

// NewEnvironment builds an Environment rooted at workDir using the real OS
// environment and a git repository probe.
func NewEnvironment(workDir string) *Environment {
	return &Environment{
		WorkDir: workDir,
		Getenv:  os.Getenv,
		Git:     gitinfo.New(workDir),
	}
}

// regexCache holds compiled patterns for the lifetime of one dispatch
// process. Several subscriptions commonly share the same file-contains
// regex (e.g. many skills gated on the same "has package.json" check);
// caching avoids recompiling it once per subscription. Bounded, not a
// cross-invocation cache — it dies with the process, same as everything
// else dispatch touches (§3 Lifecycles).
var regexCache, _ = lru.New[string, *regexp.Regexp](64)

// Evaluator evaluates conditions against one Environment, accumulating
// warnings and advisories into a shared Diagnostics sink.
type Evaluator struct {
	Env   *Environment
	Diag  *model.Diagnostics
	depth int
}

func New(env *Environment, diag *model.Diagnostics) *Evaluator {
	return &Evaluator{Env: env, Diag: diag}
}

// Eval evaluates one condition, never panicking and never returning an error.
func (e *Evaluator) Eval(c model.Condition) bool {
	if c.Malformed {
		e.Diag.Warnf("malformed condition: %s", c.MalformedWhy)
		return false
	}

	switch c.Kind {
	case model.CondPathExists:
		return e.evalPathExists(c)
	case model.CondGitBranchMatches:
		return e.evalGitBranch(c)
	case model.CondEnvSet:
		return e.evalEnvSet(c)
	case model.CondEnvEquals:
		return e.evalEnvEquals(c)
	case model.CondFileContains:
		return e.evalFileContains(c)
	case model.CondNot:
		return e.evalNot(c)
	default:
		e.Diag.Warnf("condition has unrecognized kind %q", c.Kind)
		return false
	}
}

// EvalAll evaluates conditions left-to-right, short-circuiting at the first
// false (per §4.3 Stacking policy). Returns whether all passed.
func (e *Evaluator) EvalAll(conds []model.Condition) bool {
	for _, c := range conds {
		if !e.Eval(c) {
			return false
		}
	}
	return true
}

func (e *Evaluator) evalPathExists(c model.Condition) bool {
	p := expandHome(c.Path)
	if !filepath.IsAbs(p) {
		p = filepath.Join(e.Env.WorkDir, p)
	}
	_, err := os.Stat(p)
	return err == nil
}

func (e *Evaluator) evalGitBranch(c model.Condition) bool {
	branch, ok := e.Env.Git.CurrentBranch()
	if !ok {
		return false
	}
	matched, err := filepath.Match(c.Branch, branch)
	if err != nil {
		e.Diag.Warnf("git-branch-matches-glob: invalid pattern %q", c.Branch)
		return false
	}
	return matched
}

func (e *Evaluator) evalEnvSet(c model.Condition) bool {
	return e.Env.Getenv(c.EnvName) != ""
}

func (e *Evaluator) evalEnvEquals(c model.Condition) bool {
	if len(c.EnvEqualsRaw) == 0 {
		e.Diag.Warnf("env-var-equals-literal-string %q missing \"equals\"", c.EnvName)
		return false
	}
	var want string
	if err := json.Unmarshal(c.EnvEqualsRaw, &want); err != nil {
		e.Diag.Warnf("env-var-equals-literal-string %q: \"equals\" must be a string literal", c.EnvName)
		return false
	}
	got := e.Env.Getenv(c.EnvName)
	return got == want
}

func (e *Evaluator) evalFileContains(c model.Condition) bool {
	p := expandHome(c.FilePath)
	if !filepath.IsAbs(p) {
		p = filepath.Join(e.Env.WorkDir, p)
	}

	if strings.HasPrefix(filepath.Base(c.FilePath), ".") {
		e.Diag.Advise("file-contains condition reads dotfile %q (possible secret)", c.FilePath)
	}

	info, err := os.Stat(p)
	if err != nil {
		return false
	}
	if info.Size() > maxFileContainsSize {
		e.Diag.Warnf("file-contains: %q exceeds 1 MiB, skipped", c.FilePath)
		return false
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return false
	}
	text := decodeLossy(data)

	if len(c.Pattern) > maxPatternLen {
		e.Diag.Warnf("file-contains: pattern for %q exceeds %d characters, skipped", c.FilePath, maxPatternLen)
		return false
	}

	if !c.Regex {
		return strings.Contains(text, c.Pattern)
	}

	re, err := e.compileRegex(c.Pattern)
	if err != nil {
		e.Diag.Warnf("file-contains: invalid regex %q", c.Pattern)
		return false
	}
	return re.MatchString(text)
}

func (e *Evaluator) compileRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Add(pattern, re)
	return re, nil
}

func (e *Evaluator) evalNot(c model.Condition) bool {
	if c.Negate == nil {
		e.Diag.Warnf("negation-of-any-condition wraps nothing")
		return false
	}
	if c.Negate.Kind == model.CondNot {
		e.Diag.Advise("double negation in condition tree")
	}
	return !e.Eval(*c.Negate)
}

// expandHome expands a leading "~" to the user's home directory.
func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		if p == "~" {
			return home
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// decodeLossy decodes bytes as UTF-8, substituting the replacement
// character for invalid sequences, so binary content never panics or
// aborts the substring/regex scan (§4.3).
func decodeLossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}
