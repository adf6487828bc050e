package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentmemory/agentmemory/internal/output"
)

type statusReport struct {
	DBPath        string `json:"db_path"`
	SizeBytes     int64  `json:"size_bytes"`
	Chunks        int    `json:"chunks"`
	CodeNodes     int    `json:"code_nodes"`
	LastIndexedAt string `json:"last_indexed_at"`
	VectorEnabled bool   `json:"vector_enabled"`
}

func newStatusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show index counts, last-indexed timestamp, db path, and size",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			counts, err := a.store.CountRows()
			if err != nil {
				return err
			}
			size, err := a.store.Size()
			if err != nil {
				return err
			}
			lastIndexed, err := a.store.GetMeta("last_indexed_at")
			if err != nil {
				return err
			}

			report := statusReport{
				DBPath:        a.store.Path(),
				SizeBytes:     size,
				Chunks:        counts.Chunks,
				CodeNodes:     counts.CodeNodes,
				LastIndexedAt: lastIndexed,
				VectorEnabled: a.store.VectorCapable(),
			}

			out := output.New(cmd.OutOrStdout())
			if asJSON {
				return out.JSON(report)
			}
			out.Statusf("", "db: %s (%d bytes)", report.DBPath, report.SizeBytes)
			out.Statusf("", "chunks: %d  code_nodes: %d", report.Chunks, report.CodeNodes)
			out.Statusf("", "last indexed: %s", valueOrNone(report.LastIndexedAt))
			out.Statusf("", "vector search: %v", report.VectorEnabled)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

func valueOrNone(s string) string {
	if s == "" {
		return "never"
	}
	return s
}
