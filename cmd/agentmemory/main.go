// Command agentmemory is the CLI entry point for the local hybrid search
// and code-navigation engine.
package main

import (
	"os"

	"github.com/agentmemory/agentmemory/cmd/agentmemory/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
