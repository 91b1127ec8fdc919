// Package devconsole implements skillbusctl's interactive "repl" console:
// a small developer loop that reloads configuration on file change and
// answers "list", "settings", and "reload" without re-invoking the CLI per
// command. It does not run simulate; that stays a separate skillbusctl
// subcommand. Adapted from the teacher's ui.Chat
// readline loop (internal/ui/chat.go) and its Engine.WatchFile fsnotify
// hookup (internal/core/db.go) — this is the one place in the transformed
// module where hot-reload survives, since dispatch itself is explicitly
// one-shot and never watches anything (§3 Lifecycles).
package devconsole

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/fsnotify/fsnotify"

	"github.com/hazyhaar/skillbus/internal/config"
	"github.com/hazyhaar/skillbus/internal/fastfilter"
	"github.com/hazyhaar/skillbus/internal/model"
)

// Console is the interactive developer loop.
type Console struct {
	workDir string
	paths   fastfilter.Paths
	rl      *readline.Instance
	ctx     context.Context
	cancel  context.CancelFunc

	mu   sync.RWMutex
	view model.EffectiveView
}

// New builds a Console rooted at workDir, loading the current effective
// view once up front.
func New(workDir string) (*Console, error) {
	ctx, cancel := context.WithCancel(context.Background())

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mskillbus>\033[0m ",
		HistoryFile:     filepath.Join(workDir, ".skillbus", "repl_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("readline: %w", err)
	}

	c := &Console{
		workDir: workDir,
		paths:   fastfilter.Resolve(workDir, os.Getenv),
		rl:      rl,
		ctx:     ctx,
		cancel:  cancel,
	}
	c.reload()
	return c, nil
}

func (c *Console) reload() {
	diag := &model.Diagnostics{}
	view := config.Load(c.paths, diag)
	c.mu.Lock()
	c.view = view
	c.mu.Unlock()
	for _, w := range diag.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
}

// watchConfig fires reload whenever either configuration file is written,
// mirroring the teacher's Engine.WatchFile (fsnotify Write events only).
func (c *Console) watchConfig() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-c.ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					c.reload()
					fmt.Fprintln(os.Stderr, "skill-bus: configuration reloaded")
				}
			case <-watcher.Errors:
			}
		}
	}()
	_ = watcher.Add(c.paths.Project)
	_ = watcher.Add(c.paths.Global)
}

// Run starts the interactive loop, blocking until EOF, "exit", or an
// interrupt signal.
func (c *Console) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		c.cancel()
		c.rl.Close()
	}()

	c.watchConfig()
	defer c.rl.Close()

	for {
		line, err := c.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		c.handle(line)
	}
}

func (c *Console) handle(line string) {
	fields := strings.Fields(line)
	c.mu.RLock()
	view := c.view
	c.mu.RUnlock()

	switch fields[0] {
	case "list":
		if len(view.Subscriptions) == 0 {
			fmt.Println("(no subscriptions)")
		}
		for i, s := range view.Subscriptions {
			fmt.Printf("%2d. [%s] %-30s on=%-30s when=%-8s\n", i+1, s.Scope, s.Insert, s.On, s.When)
		}
	case "settings":
		fmt.Printf("%+v\n", view.Settings)
	case "reload":
		c.reload()
		fmt.Println("reloaded")
	default:
		fmt.Println("commands: list, settings, reload, exit")
	}
}
