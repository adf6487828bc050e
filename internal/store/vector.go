package store

import (
	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// serializeVector encodes a float32 vector as little-endian bytes, the
// layout sqlite-vec's vec0 virtual tables expect.
func serializeVector(v []float32) ([]byte, error) {
	return sqlite_vec.SerializeFloat32(v)
}

// VectorCandidate is one row from a chunks_vec distance query.
type VectorCandidate struct {
	ChunkID  int64
	Distance float64
}

// VectorSearch returns the nearest candidatePoolSize chunks to query by
// cosine distance, ascending (closest first). Empty when the store has no
// vector capability.
func (s *Store) VectorSearch(query []float32, candidatePoolSize int) ([]VectorCandidate, error) {
	if !s.vectorEnabled {
		return nil, nil
	}
	blob, err := serializeVector(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT chunk_id, vec_distance_cosine(embedding, ?) AS distance
		FROM chunks_vec ORDER BY distance LIMIT ?`, blob, candidatePoolSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VectorCandidate
	for rows.Next() {
		var c VectorCandidate
		if err := rows.Scan(&c.ChunkID, &c.Distance); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
