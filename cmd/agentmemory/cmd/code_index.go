package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentmemory/agentmemory/internal/ast"
	"github.com/agentmemory/agentmemory/internal/index"
	"github.com/agentmemory/agentmemory/internal/output"
)

func newCodeIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code-index <path>",
		Short: "Extract and index the code-node tree for a repository path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			extractor := ast.NewExtractor()
			defer extractor.Close()

			indexer := index.NewCodeIndexer(a.store, extractor)
			stats, err := indexer.IndexRepo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.store.TouchLastIndexed(); err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			out.Successf("indexed %d files (%d skipped, %d nodes created)",
				stats.FilesIndexed, stats.FilesSkipped, stats.NodesCreated)
			return nil
		},
	}
	return cmd
}
