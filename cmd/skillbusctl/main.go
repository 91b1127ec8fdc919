// Command skillbusctl is the external collaborator (§6 CLI surface): the
// developer-facing tool for inspecting and editing hook configuration.
// Dispatch (cmd/skillbus) never writes configuration; this binary is the
// only write path.
package main

import (
	"fmt"
	"os"

	"github.com/hazyhaar/skillbus/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
