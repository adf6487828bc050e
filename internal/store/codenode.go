package store

import (
	"database/sql"
	"errors"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
)

// CodeNode is a structural element of source code.
// ParentID uses sql.NullInt64 because root nodes have no parent.
type CodeNode struct {
	ID            int64         `json:"id"`
	RepoPath      string        `json:"repo_path"`
	FilePath      string        `json:"file_path"`
	Kind          string        `json:"kind"`
	Name          string        `json:"name"`
	QualifiedName string        `json:"qualified_name"`
	ParentID      sql.NullInt64 `json:"parent_id"`
	StartLine     int           `json:"start_line"`
	EndLine       int           `json:"end_line"`
	Signature     string        `json:"signature"`
	Docstring     string        `json:"docstring"`
	BodyHash      string        `json:"body_hash"`
	Summary       string        `json:"summary"`
	Depth         int           `json:"depth"`

	// Children is never a stored column; no store query fills it.
	Children []int64 `json:"-"`
}

// CodeRef is a cross-reference from a node to a target by name. TargetID is resolved lazily the first time it is read.
type CodeRef struct {
	ID         int64         `json:"id"`
	SourceID   int64         `json:"source_id"`
	TargetName string        `json:"target_name"`
	TargetID   sql.NullInt64 `json:"target_id"`
	Kind       string        `json:"kind"`
	Line       int           `json:"line"`
}

// ReplaceCodeTree deletes the existing tree, refs, and FTS rows for
// (repoPath, filePath) and reinserts nodes depth-first so parents receive
// ids before children. nodes must already be in
// parent-before-child order; parentIdx holds, for each node, the index of
// its parent in nodes, or -1 for roots.
func (s *Store) ReplaceCodeTree(repoPath, filePath string, nodes []CodeNode, parentIdx []int, refs []CodeRef) ([]int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteCodeTreeTx(tx, repoPath, filePath); err != nil {
		return nil, err
	}

	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		var parentID sql.NullInt64
		if parentIdx[i] >= 0 {
			parentID = sql.NullInt64{Int64: ids[parentIdx[i]], Valid: true}
		}
		res, err := tx.Exec(`INSERT INTO code_nodes
			(repo_path, file_path, kind, name, qualified_name, parent_id, start_line, end_line,
			 signature, docstring, body_hash, summary, depth)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			repoPath, filePath, n.Kind, n.Name, n.QualifiedName, parentID, n.StartLine, n.EndLine,
			n.Signature, n.Docstring, n.BodyHash, n.Summary, n.Depth)
		if err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		ids[i] = id
	}

	for _, r := range refs {
		var sourceID int64
		if r.SourceID >= 0 && int(r.SourceID) < len(ids) {
			sourceID = ids[r.SourceID]
		}
		if _, err := tx.Exec(`INSERT INTO code_refs(source_id, target_name, target_id, kind, line)
			VALUES (?, ?, NULL, ?, ?)`, sourceID, r.TargetName, r.Kind, r.Line); err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return ids, nil
}

// DeleteCodeTree removes all nodes, refs, and FTS rows for one file.
func (s *Store) DeleteCodeTree(repoPath, filePath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := deleteCodeTreeTx(tx, repoPath, filePath); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}

func deleteCodeTreeTx(tx *sql.Tx, repoPath, filePath string) error {
	rows, err := tx.Query(`SELECT id FROM code_nodes WHERE repo_path = ? AND file_path = ?`, repoPath, filePath)
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
		if _, err := tx.Exec(`DELETE FROM code_refs WHERE source_id = ?`, id); err != nil {
			return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM code_nodes WHERE repo_path = ? AND file_path = ?`, repoPath, filePath); err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}

// GetCodeNode looks up a single node by id.
func (s *Store) GetCodeNode(id int64) (*CodeNode, error) {
	row := s.db.QueryRow(`SELECT id, repo_path, file_path, kind, name, qualified_name, parent_id,
		start_line, end_line, signature, docstring, body_hash, summary, depth
		FROM code_nodes WHERE id = ?`, id)
	n, err := scanCodeNode(row)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func scanCodeNode(row *sql.Row) (*CodeNode, error) {
	var n CodeNode
	err := row.Scan(&n.ID, &n.RepoPath, &n.FilePath, &n.Kind, &n.Name, &n.QualifiedName, &n.ParentID,
		&n.StartLine, &n.EndLine, &n.Signature, &n.Docstring, &n.BodyHash, &n.Summary, &n.Depth)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, agentmemoryerrors.NotFound(agentmemoryerrors.ErrCodeNodeNotFound, "no code node with that id", err)
		}
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return &n, nil
}

// ChildrenOf returns the direct children of parentID, in start-line order.
func (s *Store) ChildrenOf(parentID int64) ([]CodeNode, error) {
	rows, err := s.db.Query(`SELECT id, repo_path, file_path, kind, name, qualified_name, parent_id,
		start_line, end_line, signature, docstring, body_hash, summary, depth
		FROM code_nodes WHERE parent_id = ? ORDER BY start_line`, parentID)
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer rows.Close()
	return scanCodeNodeRows(rows)
}

// ChildrenOfMany returns direct children for a batch of parent ids, used by
// the navigator to expand an entire frontier in one query.
func (s *Store) ChildrenOfMany(parentIDs []int64) ([]CodeNode, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	query, args := inClauseQuery(`SELECT id, repo_path, file_path, kind, name, qualified_name, parent_id,
		start_line, end_line, signature, docstring, body_hash, summary, depth
		FROM code_nodes WHERE parent_id IN (`, parentIDs)
	query += ` ORDER BY start_line`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer rows.Close()
	return scanCodeNodeRows(rows)
}

// NodesByRepo returns every node whose repo_path matches repoPath (or every
// node, if repoPath is empty), used as the candidate scope for navigation
// and tree rendering.
func (s *Store) NodesByRepo(repoPath string) ([]CodeNode, error) {
	var rows *sql.Rows
	var err error
	if repoPath != "" {
		rows, err = s.db.Query(`SELECT id, repo_path, file_path, kind, name, qualified_name, parent_id,
			start_line, end_line, signature, docstring, body_hash, summary, depth
			FROM code_nodes WHERE repo_path = ? ORDER BY file_path, start_line`, repoPath)
	} else {
		rows, err = s.db.Query(`SELECT id, repo_path, file_path, kind, name, qualified_name, parent_id,
			start_line, end_line, signature, docstring, body_hash, summary, depth
			FROM code_nodes ORDER BY file_path, start_line`)
	}
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer rows.Close()
	return scanCodeNodeRows(rows)
}

// RootsByRepo returns nodes with depth 0 (and no parent), optionally scoped
// to a single repo, used by the "code-tree" rendering surface.
func (s *Store) RootsByRepo(repoPath string) ([]CodeNode, error) {
	var rows *sql.Rows
	var err error
	if repoPath != "" {
		rows, err = s.db.Query(`SELECT id, repo_path, file_path, kind, name, qualified_name, parent_id,
			start_line, end_line, signature, docstring, body_hash, summary, depth
			FROM code_nodes WHERE repo_path = ? AND parent_id IS NULL ORDER BY file_path, start_line`, repoPath)
	} else {
		rows, err = s.db.Query(`SELECT id, repo_path, file_path, kind, name, qualified_name, parent_id,
			start_line, end_line, signature, docstring, body_hash, summary, depth
			FROM code_nodes WHERE parent_id IS NULL ORDER BY file_path, start_line`)
	}
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer rows.Close()
	return scanCodeNodeRows(rows)
}

func scanCodeNodeRows(rows *sql.Rows) ([]CodeNode, error) {
	var out []CodeNode
	for rows.Next() {
		var n CodeNode
		if err := rows.Scan(&n.ID, &n.RepoPath, &n.FilePath, &n.Kind, &n.Name, &n.QualifiedName, &n.ParentID,
			&n.StartLine, &n.EndLine, &n.Signature, &n.Docstring, &n.BodyHash, &n.Summary, &n.Depth); err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UpdateSummary writes back a node's generated summary and rebuilds the
// FTS row via the update trigger.
func (s *Store) UpdateSummary(id int64, summary string) error {
	_, err := s.db.Exec(`UPDATE code_nodes SET summary = ? WHERE id = ?`, summary, id)
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}

// RefsBySource returns the CodeRef rows originating at nodeID.
func (s *Store) RefsBySource(nodeID int64) ([]CodeRef, error) {
	rows, err := s.db.Query(`SELECT id, source_id, target_name, target_id, kind, line
		FROM code_refs WHERE source_id = ? ORDER BY line`, nodeID)
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer rows.Close()

	var out []CodeRef
	for rows.Next() {
		var r CodeRef
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetName, &r.TargetID, &r.Kind, &r.Line); err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ResolveRef looks up a node whose name or qualified_name equals the ref's
// target_name and stores the match back onto the ref row. A dangling ref that cannot be resolved is
// left with a null target_id and is not an error.
func (s *Store) ResolveRef(ref CodeRef) (CodeRef, error) {
	if ref.TargetID.Valid {
		return ref, nil
	}
	var id int64
	err := s.db.QueryRow(`SELECT id FROM code_nodes WHERE name = ? OR qualified_name = ? LIMIT 1`,
		ref.TargetName, ref.TargetName).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ref, nil
		}
		return ref, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	ref.TargetID = sql.NullInt64{Int64: id, Valid: true}
	if _, err := s.db.Exec(`UPDATE code_refs SET target_id = ? WHERE id = ?`, id, ref.ID); err != nil {
		return ref, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return ref, nil
}

// AllNodeIDsDepthDescending returns every node id ordered by depth
// descending, the bottom-up traversal order the summarizer needs.
func (s *Store) AllNodeIDsDepthDescending(repoPath string) ([]int64, error) {
	var rows *sql.Rows
	var err error
	if repoPath != "" {
		rows, err = s.db.Query(`SELECT id FROM code_nodes WHERE repo_path = ? ORDER BY depth DESC, id`, repoPath)
	} else {
		rows, err = s.db.Query(`SELECT id FROM code_nodes ORDER BY depth DESC, id`)
	}
	if err != nil {
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RebuildCodeFTS forces the code_nodes_fts external-content index to be
// rebuilt from code_nodes, used once after a batch of summary updates.
func (s *Store) RebuildCodeFTS() error {
	_, err := s.db.Exec(`INSERT INTO code_nodes_fts(code_nodes_fts) VALUES ('rebuild')`)
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}
