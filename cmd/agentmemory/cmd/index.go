package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentmemory/agentmemory/internal/chunk"
	"github.com/agentmemory/agentmemory/internal/config"
	"github.com/agentmemory/agentmemory/internal/index"
	"github.com/agentmemory/agentmemory/internal/output"
)

func newIndexCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index Markdown notes matching the configured scan patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			patterns := config.ScanPatterns()
			if path != "" {
				patterns = []string{filepath.Join(path, "*.md")}
			}

			chunker := chunk.NewMarkdownChunker(chunk.Options{
				MaxChars:     a.cfg.ChunkMaxChars,
				OverlapChars: a.cfg.ChunkOverlapChars,
			})
			indexer := index.NewNoteIndexer(a.store, chunker, a.embedder, 0)

			stats, err := indexer.IndexPatterns(cmd.Context(), patterns)
			if err != nil {
				return err
			}
			if err := a.store.TouchLastIndexed(); err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			out.Successf("indexed %d files (%d skipped, %d chunks created)",
				stats.FilesIndexed, stats.FilesSkipped, stats.ChunksCreated)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "index *.md files under this directory instead of the default scan patterns")
	return cmd
}
