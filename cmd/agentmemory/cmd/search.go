package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
	"github.com/agentmemory/agentmemory/internal/output"
	"github.com/agentmemory/agentmemory/internal/retrieve"
)

func newSearchCmd() *cobra.Command {
	var (
		limit      int
		vectorOnly bool
		keyword    bool
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed chunks by hybrid, vector, or keyword score",
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
			if limit <= 0 {
				limit = a.cfg.DefaultLimit
			}

			r := retrieve.New(a.store, a.embedder)
			var results []retrieve.SearchResult
			switch {
			case vectorOnly:
				results, err = r.SearchVector(cmd.Context(), query, limit)
			case keyword:
				results, err = r.SearchKeyword(cmd.Context(), query, limit)
			default:
				results, err = r.SearchHybrid(cmd.Context(), query, limit)
			}
			if err != nil {
				return err
			}

			out := output.New(cmd.OutOrStdout())
			if asJSON {
				return out.JSON(results)
			}
			if len(results) == 0 {
				out.Status("", fmt.Sprintf("no results for %q", query))
				return nil
			}
			for i, res := range results {
				out.Statusf("", "%d. %s:%d (score %.3f)", i+1, res.Path, res.StartLine, res.Score)
				out.Status("", "   "+snippet(res.Text))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (default from config)")
	cmd.Flags().BoolVar(&vectorOnly, "vector", false, "vector-only search")
	cmd.Flags().BoolVar(&keyword, "keyword", false, "keyword-only (BM25) search")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON ({id, text, path, source, score, start_line, end_line})")
	return cmd
}

func snippet(text string) string {
	const max = 120
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
