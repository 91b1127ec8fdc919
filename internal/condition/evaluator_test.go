package condition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/skillbus/internal/gitinfo"
	"github.com/hazyhaar/skillbus/internal/model"
)

func newTestEvaluator(t *testing.T, workDir string, getenv func(string) string) *Evaluator {
	t.Helper()
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	env := &Environment{WorkDir: workDir, Getenv: getenv, Git: gitinfo.New(workDir)}
	return New(env, &model.Diagnostics{})
}

func TestEvalPathExists(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "present.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ev := newTestEvaluator(t, dir, nil)

	if !ev.Eval(model.Condition{Kind: model.CondPathExists, Path: "present.txt"}) {
		t.Error("expected present.txt to exist")
	}
	if ev.Eval(model.Condition{Kind: model.CondPathExists, Path: "absent.txt"}) {
		t.Error("expected absent.txt to not exist")
	}
}

func TestEvalEnvSetAndEquals(t *testing.T) {
	getenv := func(k string) string {
		if k == "FOO" {
			return "bar"
		}
		return ""
	}
	ev := newTestEvaluator(t, t.TempDir(), getenv)

	if !ev.Eval(model.Condition{Kind: model.CondEnvSet, EnvName: "FOO"}) {
		t.Error("expected FOO to be set")
	}
	if ev.Eval(model.Condition{Kind: model.CondEnvSet, EnvName: "MISSING"}) {
		t.Error("expected MISSING to be unset")
	}
	if !ev.Eval(model.Condition{Kind: model.CondEnvEquals, EnvName: "FOO", EnvEqualsRaw: []byte(`"bar"`)}) {
		t.Error("expected FOO to equal \"bar\"")
	}
	if ev.Eval(model.Condition{Kind: model.CondEnvEquals, EnvName: "FOO", EnvEqualsRaw: []byte(`"baz"`)}) {
		t.Error("expected FOO to not equal \"baz\"")
	}
}

func TestEvalFileContainsLiteralAndRegex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg.json")
	if err := os.WriteFile(path, []byte(`{"name": "widget"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	ev := newTestEvaluator(t, dir, nil)

	if !ev.Eval(model.Condition{Kind: model.CondFileContains, FilePath: "pkg.json", Pattern: "widget"}) {
		t.Error("expected literal substring match")
	}
	if !ev.Eval(model.Condition{Kind: model.CondFileContains, FilePath: "pkg.json", Pattern: `"name":\s*"\w+"`, Regex: true}) {
		t.Error("expected regex match")
	}
	if ev.Eval(model.Condition{Kind: model.CondFileContains, FilePath: "missing.json", Pattern: "widget"}) {
		t.Error("expected false for a missing file")
	}
}

func TestEvalNot(t *testing.T) {
	ev := newTestEvaluator(t, t.TempDir(), func(string) string { return "" })
	inner := model.Condition{Kind: model.CondEnvSet, EnvName: "MISSING"}
	if !ev.Eval(model.Condition{Kind: model.CondNot, Negate: &inner}) {
		t.Error("expected negation of a false condition to be true")
	}
}

func TestEvalAllShortCircuits(t *testing.T) {
	ev := newTestEvaluator(t, t.TempDir(), func(string) string { return "" })
	conds := []model.Condition{
		{Kind: model.CondEnvSet, EnvName: "MISSING"},
		{Kind: model.CondEnvSet, EnvName: "ALSO_MISSING"},
	}
	if ev.EvalAll(conds) {
		t.Error("expected EvalAll to fail on the first false condition")
	}
}

func TestEvalMalformedWarns(t *testing.T) {
	ev := newTestEvaluator(t, t.TempDir(), nil)
	if ev.Eval(model.Condition{Malformed: true, MalformedWhy: "broken"}) {
		t.Error("a malformed condition should evaluate false")
	}
	if len(ev.Diag.Warnings) != 1 {
		t.Errorf("expected one warning, got %v", ev.Diag.Warnings)
	}
}
