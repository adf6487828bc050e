package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
	"github.com/agentmemory/agentmemory/internal/navigate"
	"github.com/agentmemory/agentmemory/internal/output"
)

func newCodeNavCmd() *cobra.Command {
	var (
		asJSON   bool
		repoPath string
	)

	cmd := &cobra.Command{
		Use:   "code-nav <query>",
		Short: "Beam-search the indexed code tree for nodes matching query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			for _, a := range args[1:] {
				query += " " + a
			}
			if query == "" {
				return agentmemoryerrors.BadInput(agentmemoryerrors.ErrCodeEmptyQuery, "query must not be empty")
			}

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

			nav := navigate.New(a.store)
			result, err := nav.Navigate(query, repoPath)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if asJSON {
				return out.JSON(result)
			}
			if len(result.Nodes) == 0 {
				out.Status("", "no matching nodes")
				return nil
			}
			for _, step := range result.Steps {
				out.Statusf("", "depth %d: selected %v (from %v)", step.Depth, step.Selected, step.Candidates)
			}
			for _, n := range result.Nodes {
				out.Statusf("", "%s %s  %s:%d", n.Kind, n.QualifiedName, n.FilePath, n.StartLine)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON ({nodes: [...], steps: [{depth, candidates, selected}]})")
	cmd.Flags().StringVar(&repoPath, "repo", "", "scope navigation to a single indexed repo path")
	return cmd
}
