package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentmemory/agentmemory/internal/config"
	"github.com/agentmemory/agentmemory/internal/output"
)

func newListCmd() *cobra.Command {
	var (
		source string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Enumerate chunks, newest first, optionally filtered by source",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if limit <= 0 {
				limit = a.cfg.DefaultLimit
				if limit <= 0 {
					limit = config.DefaultLimit
				}
			}

			chunks, err := a.store.ListChunks(source, limit)
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if asJSON {
				return out.JSON(chunks)
			}
			for _, c := range chunks {
				out.Statusf("", "%s  %s:%d  %s", c.ContentID[:12], c.SourcePath, c.StartLine, c.Source)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "filter by source class (daily, session, memory, manual, other)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of rows (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}
