package cmd

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/spf13/cobra"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
	"github.com/agentmemory/agentmemory/internal/output"
	"github.com/agentmemory/agentmemory/internal/store"
)

func newAddCmd() *cobra.Command {
	var (
		source string
		tags   string
	)

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a chunk of text directly, bypassing file discovery",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := args[0]
			for _, a := range args[1:] {
				text += " " + a
			}
			if text == "" {
				return agentmemoryerrors.BadInput(agentmemoryerrors.ErrCodeEmptyQuery, "content must not be empty")
			}
			if source == "" {
				source = "manual"
			}

			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			path := manualPath(tags)
			contentID := manualContentID(text, tags)

			vec, err := a.embedder.EmbedQuery(cmd.Context(), text)
			if err != nil {
				vec = nil
			}

			now := time.Now().UTC().Format(time.RFC3339)
			id, err := a.store.InsertChunk(store.Chunk{
				ContentID:      contentID,
				SourcePath:     path,
				Source:         source,
				StartLine:      1,
				EndLine:        1,
				BodyHash:       sha256Hex([]byte(text)),
				EmbeddingModel: a.embedder.ModelName(),
				Text:           text,
				CreatedAt:      now,
				UpdatedAt:      now,
			}, vec)
			if err != nil {
				return err
			}
			_ = id

			out := output.New(cmd.OutOrStdout())
			out.Success(contentID)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "source label (defaults to manual)")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags, folded into the chunk path")
	return cmd
}

// manualPath reproduces the original implementation's overloading of the
// memory path as tag storage for manually-added chunks.
func manualPath(tags string) string {
	if tags == "" {
		return "manual"
	}
	return "manual:" + tags
}

// manualContentID derives a stable id for manually-added chunks:
// sha256("manual:" + sha256(text) + ":" + tags).
func manualContentID(text, tags string) string {
	return sha256Hex([]byte("manual:" + sha256Hex([]byte(text)) + ":" + tags))
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
