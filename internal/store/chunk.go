package store

import (
	"database/sql"
	"errors"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
)

// Chunk is a retrievable unit of note text.
type Chunk struct {
	ID             int64  `json:"id"`
	ContentID      string `json:"content_id"`
	SourcePath     string `json:"source_path"`
	Source         string `json:"source"`
	StartLine      int    `json:"start_line"`
	EndLine        int    `json:"end_line"`
	BodyHash       string `json:"body_hash"`
	EmbeddingModel string `json:"embedding_model"`
	Text           string `json:"text"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ReplaceFileChunks atomically replaces every chunk belonging to
// sourcePath with newChunks, inserting the matching vector rows when
// vectors is non-nil and the store is vector-capable.
// The chunk's own rowid is reused as the chunks_vec key.
func (s *Store) ReplaceFileChunks(sourcePath string, newChunks []Chunk, vectors [][]float32) ([]int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteChunksForPath(tx, sourcePath); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(newChunks))
	for i, c := range newChunks {
		res, err := tx.Exec(`INSERT INTO chunks
			(content_id, source_path, source, start_line, end_line, body_hash, embedding_model, text, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(content_id) DO UPDATE SET
				source_path = excluded.source_path, source = excluded.source,
				start_line = excluded.start_line, end_line = excluded.end_line,
				body_hash = excluded.body_hash, embedding_model = excluded.embedding_model,
				text = excluded.text, updated_at = excluded.updated_at`,
			c.ContentID, c.SourcePath, c.Source, c.StartLine, c.EndLine,
			c.BodyHash, c.EmbeddingModel, c.Text, c.CreatedAt, c.UpdatedAt)
		if err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		ids = append(ids, id)

		if s.vectorEnabled && vectors != nil && i < len(vectors) {
			blob, err := serializeVector(vectors[i])
			if err != nil {
				return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
			}
			if _, err := tx.Exec(`INSERT INTO chunks_vec(chunk_id, embedding) VALUES (?, ?)`, id, blob); err != nil {
				return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return ids, nil
}

func deleteChunksForPath(tx *sql.Tx, sourcePath string) error {
	rows, err := tx.Query(`SELECT id FROM chunks WHERE source_path = ?`, sourcePath)
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		ids = append(ids, id)
	}
	_ = rows.Close()

	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM chunks_vec WHERE chunk_id = ?`, id); err != nil {
			return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM chunks WHERE source_path = ?`, sourcePath); err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}

// InsertChunk adds (or replaces, by content_id) a single chunk outside the
// per-file reindex path, used by the "add" command.
func (s *Store) InsertChunk(c Chunk, vector []float32) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`INSERT INTO chunks
		(content_id, source_path, source, start_line, end_line, body_hash, embedding_model, text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(content_id) DO UPDATE SET
			source_path = excluded.source_path, source = excluded.source,
			start_line = excluded.start_line, end_line = excluded.end_line,
			body_hash = excluded.body_hash, embedding_model = excluded.embedding_model,
			text = excluded.text, updated_at = excluded.updated_at`,
		c.ContentID, c.SourcePath, c.Source, c.StartLine, c.EndLine,
		c.BodyHash, c.EmbeddingModel, c.Text, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}

	if s.vectorEnabled && vector != nil {
		blob, err := serializeVector(vector)
		if err != nil {
			return 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		if _, err := tx.Exec(`DELETE FROM chunks_vec WHERE chunk_id = ?`, id); err != nil {
			return 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		if _, err := tx.Exec(`INSERT INTO chunks_vec(chunk_id, embedding) VALUES (?, ?)`, id, blob); err != nil {
			return 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return id, nil
}

// GetChunkByContentID looks up a chunk by its stable content-derived id.
func (s *Store) GetChunkByContentID(contentID string) (*Chunk, error) {
	row := s.db.QueryRow(`SELECT id, content_id, source_path, source, start_line, end_line,
		body_hash, embedding_model, text, created_at, updated_at
		FROM chunks WHERE content_id = ?`, contentID)
	return scanChunk(row)
}

func scanChunk(row *sql.Row) (*Chunk, error) {
	var c Chunk
	err := row.Scan(&c.ID, &c.ContentID, &c.SourcePath, &c.Source, &c.StartLine, &c.EndLine,
		&c.BodyHash, &c.EmbeddingModel, &c.Text, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, agentmemoryerrors.NotFound(agentmemoryerrors.ErrCodeChunkNotFound, "no chunk with that id", err)
		}
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return &c, nil
}

// ListChunks enumerates chunks, optionally filtered by source, newest first.
func (s *Store) ListChunks(source string, limit int) ([]Chunk, error) {
	var rows *sql.Rows
	var err error
	if source != "" {
		rows, err = s.db.Query(`SELECT id, content_id, source_path, source, start_line, end_line,
			body_hash, embedding_model, text, created_at, updated_at
			FROM chunks WHERE source = ? ORDER BY id DESC LIMIT ?`, source, limit)
	} else {
		rows, err = s.db.Query(`SELECT id, content_id, source_path, source, start_line, end_line,
			body_hash, embedding_model, text, created_at, updated_at
			FROM chunks ORDER BY id DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer rows.Close()

	var out []Chunk
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.ContentID, &c.SourcePath, &c.Source, &c.StartLine, &c.EndLine,
			&c.BodyHash, &c.EmbeddingModel, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ChunksByRowIDs fetches chunks for a set of rowids, used by the retriever
// to join FTS/vector candidate rowids back to their text.
func (s *Store) ChunksByRowIDs(ids []int64) (map[int64]Chunk, error) {
	out := make(map[int64]Chunk, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args := inClauseQuery(`SELECT id, content_id, source_path, source, start_line, end_line,
		body_hash, embedding_model, text, created_at, updated_at
		FROM chunks WHERE id IN (`, ids)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer rows.Close()
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.ID, &c.ContentID, &c.SourcePath, &c.Source, &c.StartLine, &c.EndLine,
			&c.BodyHash, &c.EmbeddingModel, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func inClauseQuery(prefix string, ids []int64) (string, []any) {
	args := make([]any, len(ids))
	placeholders := ""
	for i, id := range ids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args[i] = id
	}
	return prefix + placeholders + ")", args
}
