package store

import (
	"database/sql"
	"errors"

	agentmemoryerrors "github.com/agentmemory/agentmemory/internal/errors"
)

// NoteFingerprint is a per-file change-detection row for note indexing.
type NoteFingerprint struct {
	SourcePath  string
	ContentHash string
	MTime       int64
	Size        int64
}

// GetNoteFingerprint returns nil, nil if no fingerprint is stored yet.
func (s *Store) GetNoteFingerprint(sourcePath string) (*NoteFingerprint, error) {
	var fp NoteFingerprint
	err := s.db.QueryRow(`SELECT source_path, content_hash, mtime, size FROM note_fingerprints WHERE source_path = ?`,
		sourcePath).Scan(&fp.SourcePath, &fp.ContentHash, &fp.MTime, &fp.Size)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return &fp, nil
}

// UpsertNoteFingerprint records the current hash/mtime/size for a note file.
func (s *Store) UpsertNoteFingerprint(fp NoteFingerprint) error {
	_, err := s.db.Exec(`INSERT INTO note_fingerprints(source_path, content_hash, mtime, size, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET content_hash = excluded.content_hash,
			mtime = excluded.mtime, size = excluded.size, updated_at = excluded.updated_at`,
		fp.SourcePath, fp.ContentHash, fp.MTime, fp.Size, nowRFC3339())
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}

// CodeFingerprint is a per-file change-detection row for code indexing,
// scoped per repo.
type CodeFingerprint struct {
	RepoPath    string
	FilePath    string
	ContentHash string
	MTime       int64
	Size        int64
}

// GetCodeFingerprint returns nil, nil if no fingerprint is stored yet.
func (s *Store) GetCodeFingerprint(repoPath, filePath string) (*CodeFingerprint, error) {
	var fp CodeFingerprint
	err := s.db.QueryRow(`SELECT repo_path, file_path, content_hash, mtime, size
		FROM code_fingerprints WHERE repo_path = ? AND file_path = ?`, repoPath, filePath).
		Scan(&fp.RepoPath, &fp.FilePath, &fp.ContentHash, &fp.MTime, &fp.Size)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return &fp, nil
}

// UpsertCodeFingerprint records the current hash/mtime/size for a code file.
// Called even when the AST extractor returned zero nodes, so a "known
// empty" file is not re-parsed every run.
func (s *Store) UpsertCodeFingerprint(fp CodeFingerprint) error {
	_, err := s.db.Exec(`INSERT INTO code_fingerprints(repo_path, file_path, content_hash, mtime, size, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(repo_path, file_path) DO UPDATE SET content_hash = excluded.content_hash,
			mtime = excluded.mtime, size = excluded.size, updated_at = excluded.updated_at`,
		fp.RepoPath, fp.FilePath, fp.ContentHash, fp.MTime, fp.Size, nowRFC3339())
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	return nil
}

// DeleteCodeFingerprintsMissing removes fingerprints whose file is no
// longer present under repoPath, preventing stale rows after deletions.
func (s *Store) DeleteCodeFingerprintsMissing(repoPath string, stillPresent map[string]bool) error {
	rows, err := s.db.Query(`SELECT file_path FROM code_fingerprints WHERE repo_path = ?`, repoPath)
	if err != nil {
		return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
	}
	var stale []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			_ = rows.Close()
			return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
		if !stillPresent[fp] {
			stale = append(stale, fp)
		}
	}
	_ = rows.Close()

	for _, fp := range stale {
		if err := s.DeleteCodeTree(repoPath, fp); err != nil {
			return err
		}
		if _, err := s.db.Exec(`DELETE FROM code_fingerprints WHERE repo_path = ? AND file_path = ?`, repoPath, fp); err != nil {
			return agentmemoryerrors.Wrap(agentmemoryerrors.ErrCodeDBWrite, err)
		}
	}
	return nil
}
