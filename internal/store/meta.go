package store

import (
	"database/sql"
	"errors"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
)

// SetMeta upserts a key/value pair in the meta table.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO meta(key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}

// GetMeta returns the value for key, or "" if absent.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return value, nil
}

// setMetaIfAbsent writes key only if it does not already exist, used to
// record the embedder model tag the first time it is used.
func (s *Store) setMetaIfAbsent(key, value string) error {
	existing, err := s.GetMeta(key)
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}
	return s.SetMeta(key, value)
}

// RecordEmbedderModel stores the embedder model tag at first use. Mixing
// models across a single database is undefined behaviour;
// this call only ever writes the tag once.
func (s *Store) RecordEmbedderModel(model string) error {
	return s.setMetaIfAbsent("embedder_model", model)
}

// TouchLastIndexed records the current time as the last-indexed timestamp.
func (s *Store) TouchLastIndexed() error {
	return s.SetMeta("last_indexed_at", nowRFC3339())
}

// Counts reports the row counts the "status" command surfaces.
type Counts struct {
	Chunks    int
	CodeNodes int
}

// CountRows returns the current chunk and code-node row counts.
func (s *Store) CountRows() (Counts, error) {
	var c Counts
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&c.Chunks); err != nil {
		return c, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM code_nodes`).Scan(&c.CodeNodes); err != nil {
		return c, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return c, nil
}
