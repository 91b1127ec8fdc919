// Package telemetry implements C8: an append-only JSONL event log with
// size-based rotation. Every operation here is best-effort — a write or
// rotation failure is swallowed, never propagated into dispatch (§7
// "Telemetry write failure. Swallow; never propagate.").
package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Event kinds, per §4.8.
const (
	EventMatch          = "match"
	EventConditionSkip  = "condition-skip"
	EventNoMatch        = "no-match"
	EventSkillComplete  = "skill-complete"
)

// Which-list values for condition-skip events.
const (
	ListInsert       = "insert-level"
	ListSubscription = "subscription-level"
)

// Event is one JSONL record. Fields not relevant to a given Kind are left
// at their zero value and omitted on encode.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Session   string    `json:"session"`
	Kind      string    `json:"event"`

	Skill   string `json:"skill,omitempty"`
	Insert  string `json:"insert,omitempty"`
	Timing  string `json:"timing,omitempty"`
	Source  string `json:"source,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Which   string `json:"which,omitempty"`
	Index   int    `json:"index,omitempty"`
}

// Sink writes events to one log path, PID-tagged as a single session.
type Sink struct {
	Path       string
	Session    string
	MaxSizeKB  int
	Enabled    bool
}

// NewSink builds a Sink rooted at path. session is typically the process
// ID, stable for the lifetime of one dispatch (§4.8 Session identifier).
func NewSink(path, session string, maxSizeKB int, enabled bool) *Sink {
	return &Sink{Path: path, Session: session, MaxSizeKB: maxSizeKB, Enabled: enabled}
}

func (s *Sink) newID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return s.Session
	}
	return id.String()
}

// Write appends ev to the log, stamping ID, Timestamp, and Session if unset,
// then rotates if the file now exceeds the configured ceiling. now is
// injected by the caller (dispatch's process start time) so telemetry never
// calls time.Now() itself beyond what's needed for the stamp, keeping
// behavior observable in tests.
func (s *Sink) Write(ev Event, now time.Time) {
	if !s.Enabled || s.Path == "" {
		return
	}
	if ev.ID == "" {
		ev.ID = s.newID()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now
	}
	if ev.Session == "" {
		ev.Session = s.Session
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	_, _ = f.Write(append(line, '\n'))
	_ = f.Close()

	s.rotateIfNeeded()
}

// rotateIfNeeded truncates the log to its most recent half when it exceeds
// MaxSizeKB. A ceiling of zero disables rotation entirely. Not atomic: a
// concurrent writer from another process can interleave with the
// read-truncate-rewrite and lose events (§5 Shared resources) — acceptable
// because rotation is rare relative to per-invocation writes.
func (s *Sink) rotateIfNeeded() {
	if s.MaxSizeKB <= 0 {
		return
	}
	info, err := os.Stat(s.Path)
	if err != nil || info.Size() <= int64(s.MaxSizeKB)*1024 {
		return
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	keep := lines[len(lines)/2:]
	rewritten := strings.Join(keep, "\n") + "\n"
	_ = os.WriteFile(s.Path, []byte(rewritten), 0o644)
}

// SizeReport renders a human-readable size string for CLI status output,
// e.g. "143 kB". Swallows stat failure by reporting zero size.
func (s *Sink) SizeReport() string {
	info, err := os.Stat(s.Path)
	if err != nil {
		return humanize.Bytes(0)
	}
	return humanize.Bytes(uint64(info.Size()))
}

// ReadEvents reads every well-formed line from path, skipping malformed
// lines (including a truncated final line from an interrupted write, per §5
// Cancellation) rather than failing the whole read.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open telemetry log: %w", err)
	}
	defer f.Close()

	var events []Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}
