package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentmemory/agentmemory/internal/output"
	"github.com/agentmemory/agentmemory/internal/store"
)

// treeNode is the JSON-renderable shape for "code-tree --json".
type treeNode struct {
	ID       int64      `json:"id"`
	Kind     string     `json:"kind"`
	Name     string     `json:"name"`
	Depth    int        `json:"depth"`
	Children []treeNode `json:"children,omitempty"`
}

func newCodeTreeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "code-tree [path]",
		Short: "Render the indexed code tree for a repository path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := ""
			if len(args) > 0 {
				repoPath = args[0]
				if abs, err := filepath.Abs(repoPath); err == nil {
					repoPath = abs
				}
			}

			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			roots, err := a.store.RootsByRepo(repoPath)
			if err != nil {
				return err
			}

			trees := make([]treeNode, 0, len(roots))
			for _, r := range roots {
				t, err := buildTree(a.store, r)
				if err != nil {
					return err
				}
				trees = append(trees, t)
			}

			out := output.New(cmd.OutOrStdout())
			if asJSON {
				return out.JSON(trees)
			}
			if len(trees) == 0 {
				out.Status("", "no code nodes indexed")
				return nil
			}
			for _, t := range trees {
				printTree(out, t)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

func buildTree(s *store.Store, n store.CodeNode) (treeNode, error) {
	t := treeNode{ID: n.ID, Kind: n.Kind, Name: n.Name, Depth: n.Depth}
	children, err := s.ChildrenOf(n.ID)
	if err != nil {
		return t, err
	}
	for _, c := range children {
		ct, err := buildTree(s, c)
		if err != nil {
			return t, err
		}
		t.Children = append(t.Children, ct)
	}
	return t, nil
}

func printTree(out *output.Writer, t treeNode) {
	out.Status("", strings.Repeat("  ", t.Depth)+t.Kind+" "+t.Name)
	for _, c := range t.Children {
		printTree(out, c)
	}
}
