package resolve

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/skillbus/internal/fastfilter"
	"github.com/hazyhaar/skillbus/internal/telemetry"
)

// SessionStats is the one required registry handler (§4.5): it reads the
// telemetry log for workDir and returns a compact human-readable summary of
// match counts by skill, condition-skip counts by insert, and no-coverage
// skills. The aggregation itself runs as three GROUP BY queries against an
// in-memory SQLite table loaded from the JSONL log, the same query-over-
// table idiom the teacher's Engine uses for its persistent schema
// (internal/core/db.go), here repurposed for a throwaway per-invocation
// table that never touches disk.
func SessionStats(workDir string) string {
	paths := fastfilter.Resolve(workDir, noopGetenv)
	logPath := filepath.Join(paths.StateDir, "telemetry.jsonl")

	events, err := telemetry.ReadEvents(logPath)
	if err != nil || len(events) == 0 {
		return ""
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return ""
	}
	defer db.Close()

	const schema = `
	CREATE TABLE events (
		kind    TEXT NOT NULL,
		skill   TEXT NOT NULL DEFAULT '',
		insert_name TEXT NOT NULL DEFAULT ''
	);`
	if _, err := db.Exec(schema); err != nil {
		return ""
	}

	stmt, err := db.Prepare(`INSERT INTO events (kind, skill, insert_name) VALUES (?, ?, ?)`)
	if err != nil {
		return ""
	}
	for _, ev := range events {
		if _, err := stmt.Exec(ev.Kind, ev.Skill, ev.Insert); err != nil {
			stmt.Close()
			return ""
		}
	}
	stmt.Close()

	var b strings.Builder

	matchRows, err := db.Query(`
		SELECT skill, COUNT(*) c FROM events
		WHERE kind = ? GROUP BY skill ORDER BY c DESC, skill ASC`, telemetry.EventMatch)
	if err == nil {
		b.WriteString("matches by skill:\n")
		any := false
		for matchRows.Next() {
			var skill string
			var count int
			if matchRows.Scan(&skill, &count) == nil {
				fmt.Fprintf(&b, "  %s: %d\n", skill, count)
				any = true
			}
		}
		matchRows.Close()
		if !any {
			b.WriteString("  (none)\n")
		}
	}

	skipRows, err := db.Query(`
		SELECT insert_name, COUNT(*) c FROM events
		WHERE kind = ? GROUP BY insert_name ORDER BY c DESC, insert_name ASC`, telemetry.EventConditionSkip)
	if err == nil {
		b.WriteString("condition skips by insert:\n")
		any := false
		for skipRows.Next() {
			var ins string
			var count int
			if skipRows.Scan(&ins, &count) == nil {
				fmt.Fprintf(&b, "  %s: %d\n", ins, count)
				any = true
			}
		}
		skipRows.Close()
		if !any {
			b.WriteString("  (none)\n")
		}
	}

	noCoverageRows, err := db.Query(`
		SELECT DISTINCT skill FROM events WHERE kind = ? ORDER BY skill ASC`, telemetry.EventNoMatch)
	if err == nil {
		b.WriteString("skills with no coverage:\n")
		any := false
		for noCoverageRows.Next() {
			var skill string
			if noCoverageRows.Scan(&skill) == nil {
				fmt.Fprintf(&b, "  %s\n", skill)
				any = true
			}
		}
		noCoverageRows.Close()
		if !any {
			b.WriteString("  (none)\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func noopGetenv(string) string { return "" }
