package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentmemory/agentmemory/internal/output"
)

func newGetCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Look up a chunk by its full content-derived id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			chunk, err := a.store.GetChunkByContentID(args[0])
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if asJSON {
				return out.JSON(chunk)
			}
			out.Statusf("", "%s (%s)", chunk.SourcePath, chunk.Source)
			out.Status("", chunk.Text)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}
