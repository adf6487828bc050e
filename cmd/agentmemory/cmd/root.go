// Package cmd provides the CLI commands for agentmemory.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
	"github.com/agentmemory/agentmemory/internal/logging"
	"github.com/agentmemory/agentmemory/pkg/version"
)

var debugMode bool

// NewRootCmd builds the root command and registers every subcommand.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "agentmemory",
		Short:   "Local-first hybrid search and code-navigation engine",
		Version: version.Version,
		Long: `agentmemory indexes Markdown notes and source code into a single
local SQLite file and serves hybrid (BM25 + vector) search, code tree
navigation, and deterministic summaries — entirely offline, with zero
external services.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("agentmemory version {{.Version}}\n")
	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging alongside the database")

	root.AddCommand(
		newSearchCmd(),
		newIndexCmd(),
		newStatusCmd(),
		newAddCmd(),
		newGetCmd(),
		newListCmd(),
		newCodeIndexCmd(),
		newCodeNavCmd(),
		newCodeTreeCmd(),
		newCodeRefsCmd(),
		newCodeSummarizeCmd(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	err := root.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	return agentmemoryerrors.ExitCode(agentmemoryerrors.CategoryOf(err))
}

// setupLogging wires debug-mode file+stderr logging alongside the database
// directory; it is a no-op cleanup when --debug was not passed.
func setupLogging(dbDir string) func() {
	if !debugMode {
		return func() {}
	}
	logger, cleanup, err := logging.Setup(logging.DebugConfig(dbDir))
	if err != nil {
		return func() {}
	}
	slog.SetDefault(logger)
	return cleanup
}
