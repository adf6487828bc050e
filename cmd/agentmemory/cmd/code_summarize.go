package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentmemory/agentmemory/internal/output"
	"github.com/agentmemory/agentmemory/internal/summarize"
)

func newCodeSummarizeCmd() *cobra.Command {
	var repoPath string

	cmd := &cobra.Command{
		Use:   "code-summarize",
		Short: "Generate deterministic one-line summaries for every indexed code node",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if repoPath != "" {
				if abs, err := filepath.Abs(repoPath); err == nil {
					repoPath = abs
				}
			}

			sm := summarize.New(a.store)
			count, err := sm.SummarizeRepo(repoPath)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			out.Successf("summarized %d nodes", count)
			return nil
		},
	}
	cmd.Flags().StringVar(&repoPath, "repo", "", "scope summarization to a single indexed repo path")
	return cmd
}
