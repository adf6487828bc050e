package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
	"github.com/agentmemory/agentmemory/internal/output"
)

func newCodeRefsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "code-refs <node_id>",
		Short: "List the references (imports, calls) originating at a code node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodeID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return agentmemoryerrors.BadInput(agentmemoryerrors.ErrCodeMalformedID, "node_id must be an integer")
			}

			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if _, err := a.store.GetCodeNode(nodeID); err != nil {
				return err
			}

			refs, err := a.store.RefsBySource(nodeID)
			if err != nil {
				return err
			}
			resolved := make([]resolvedRef, len(refs))
			for i, r := range refs {
				rr, err := a.store.ResolveRef(r)
				if err != nil {
					return err
				}
				resolved[i] = resolvedRef{
					TargetName: rr.TargetName,
					Kind:       rr.Kind,
					Line:       rr.Line,
					Resolved:   rr.TargetID.Valid,
				}
			}

			out := output.New(cmd.OutOrStdout())
			if asJSON {
				return out.JSON(resolved)
			}
			if len(resolved) == 0 {
				out.Status("", "no references")
				return nil
			}
			for _, r := range resolved {
				out.Statusf("", "%s %s:%d (resolved=%v)", r.Kind, r.TargetName, r.Line, r.Resolved)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON")
	return cmd
}

type resolvedRef struct {
	TargetName string `json:"target_name"`
	Kind       string `json:"kind"`
	Line       int    `json:"line"`
	Resolved   bool   `json:"resolved"`
}
