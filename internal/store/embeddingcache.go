package store

import (
	"database/sql"
	"errors"
	"math"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
)

// GetCachedEmbedding returns the cached vector for textHash/model, or nil if
// absent. This is a pure speed optimization
// layered under internal/embed's in-memory LRU.
func (s *Store) GetCachedEmbedding(textHash, model string) ([]float32, error) {
	var blob []byte
	err := s.db.QueryRow(`SELECT vector FROM embedding_cache WHERE text_hash = ? AND model = ?`,
		textHash, model).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return deserializeFloat32(blob), nil
}

// PutCachedEmbedding stores a vector keyed by text hash and model tag.
func (s *Store) PutCachedEmbedding(textHash, model string, vector []float32) error {
	blob, err := serializeVector(vector)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO embedding_cache(text_hash, model, vector) VALUES (?, ?, ?)
		ON CONFLICT(text_hash) DO UPDATE SET model = excluded.model, vector = excluded.vector`,
		textHash, model, blob)
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}

func deserializeFloat32(blob []byte) []float32 {
	out := make([]float32, len(blob)/4)
	for i := range out {
		bits := uint32(blob[i*4]) | uint32(blob[i*4+1])<<8 | uint32(blob[i*4+2])<<16 | uint32(blob[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}
