// Command skillbus is the hook entrypoint (C9): a short-lived process that
// reads one event on stdin and writes one response on stdout. The host
// invokes a separate instance per event kind, named on the command line.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hazyhaar/skillbus/internal/dispatch"
	"github.com/hazyhaar/skillbus/internal/output"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: skillbus <pre-tool|post-tool|prompt-submit>")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(0)
	}

	var kind dispatch.EventKind
	switch flag.Arg(0) {
	case "pre-tool":
		kind = dispatch.EventToolPre
	case "post-tool":
		kind = dispatch.EventToolPost
	case "prompt-submit":
		kind = dispatch.EventPromptSubmit
	default:
		flag.Usage()
		os.Exit(0)
	}

	stdin, err := io.ReadAll(os.Stdin)
	if err != nil {
		os.Exit(0)
	}

	start := time.Now()
	resp := dispatch.Run(kind, stdin, dispatch.Deps{
		Getenv: os.Getenv,
		Now:    start,
		Elapsed: func() time.Duration {
			return time.Since(start)
		},
	})

	data, err := output.Marshal(resp)
	if err != nil {
		os.Exit(0)
	}
	if len(data) <= len("{}") {
		// Pass-through: empty stdout, per §6.
		os.Exit(0)
	}
	fmt.Println(string(data))
}
