package store

import agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"

// FTSCandidate is one ranked row from an FTS5 query, carrying the raw rank
// column so callers can apply the 1/(1+|rank|) normalization themselves.
type FTSCandidate struct {
	RowID int64
	Rank  float64
}

// SearchChunksFTS runs a MATCH query against chunks_fts and returns the top
// candidatePoolSize rows ordered by rank ascending (FTS5's bm25 rank is
// negative-is-better). sanitizedQuery must already have been through
// retrieve's sanitizer. A MATCH syntax error that slips past sanitization
// comes back as an ErrCodeFTSSyntax error, not a bare driver error, so
// callers can tell a degraded index apart from a fatal DB fault.
func (s *Store) SearchChunksFTS(sanitizedQuery string, candidatePoolSize int) ([]FTSCandidate, error) {
	rows, err := s.db.Query(`SELECT rowid, rank FROM chunks_fts WHERE chunks_fts MATCH ?
		ORDER BY rank LIMIT ?`, sanitizedQuery, candidatePoolSize)
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeFTSSyntax, err)
	}
	defer rows.Close()
	return scanFTSCandidates(rows)
}

// SearchCodeNodesFTS runs a MATCH query against code_nodes_fts, optionally
// restricted to a candidate rowid set. When candidateIDs is nil, the whole
// index is searched. Query errors are wrapped as ErrCodeFTSSyntax, same as
// SearchChunksFTS.
func (s *Store) SearchCodeNodesFTS(sanitizedQuery string, candidateIDs []int64, limit int) ([]FTSCandidate, error) {
	if candidateIDs == nil {
		rows, err := s.db.Query(`SELECT rowid, rank FROM code_nodes_fts WHERE code_nodes_fts MATCH ?
			ORDER BY rank LIMIT ?`, sanitizedQuery, limit)
		if err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeFTSSyntax, err)
		}
		defer rows.Close()
		return scanFTSCandidates(rows)
	}
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	query, args := inClauseQuery(`SELECT rowid, rank FROM code_nodes_fts WHERE code_nodes_fts MATCH ? AND rowid IN (`, candidateIDs)
	query += ` ORDER BY rank LIMIT ?`
	args = append([]any{sanitizedQuery}, args...)
	args = append(args, limit)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeFTSSyntax, err)
	}
	defer rows.Close()
	return scanFTSCandidates(rows)
}

func scanFTSCandidates(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]FTSCandidate, error) {
	var out []FTSCandidate
	for rows.Next() {
		var c FTSCandidate
		if err := rows.Scan(&c.RowID, &c.Rank); err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeFTSSyntax, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeFTSSyntax, err)
	}
	return out, nil
}
