package store

// schemaVersion is bumped whenever the DDL below changes shape.
const schemaVersion = "1"

// Table and virtual-index DDL. Chunks and code nodes each carry their own
// FTS5 mirror in external-content mode: the FTS table stores no column data
// itself, it only indexes the backing table's rowid-aligned text.
const ddl = `
CREATE TABLE IF NOT EXISTS chunks (
	id INTEGER PRIMARY KEY,
	content_id TEXT NOT NULL UNIQUE,
	source_path TEXT NOT NULL,
	source TEXT NOT NULL,
	start_line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	body_hash TEXT NOT NULL,
	embedding_model TEXT NOT NULL,
	text TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_chunks_source_path ON chunks(source_path);
CREATE INDEX IF NOT EXISTS idx_chunks_source ON chunks(source);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
	text,
	content='chunks',
	content_rowid='id',
	tokenize='porter unicode61'
);

CREATE TRIGGER IF NOT EXISTS chunks_ai AFTER INSERT ON chunks BEGIN
	INSERT INTO chunks_fts(rowid, text) VALUES (new.id, new.text);
END;
CREATE TRIGGER IF NOT EXISTS chunks_ad AFTER DELETE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.id, old.text);
END;
CREATE TRIGGER IF NOT EXISTS chunks_au AFTER UPDATE ON chunks BEGIN
	INSERT INTO chunks_fts(chunks_fts, rowid, text) VALUES ('delete', old.id, old.text);
	INSERT INTO chunks_fts(rowid, text) VALUES (new.id, new.text);
END;

CREATE TABLE IF NOT EXISTS note_fingerprints (
	source_path TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	mtime INTEGER NOT NULL,
	size INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS code_nodes (
	id INTEGER PRIMARY KEY,
	repo_path TEXT NOT NULL,
	file_path TEXT NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	qualified_name TEXT NOT NULL,
	parent_id INTEGER,
	start_line INTEGER NOT NULL,
	end_line INTEGER NOT NULL,
	signature TEXT NOT NULL,
	docstring TEXT NOT NULL,
	body_hash TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	depth INTEGER NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES code_nodes(id)
);

CREATE INDEX IF NOT EXISTS idx_code_nodes_repo_file ON code_nodes(repo_path, file_path);
CREATE INDEX IF NOT EXISTS idx_code_nodes_parent ON code_nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_code_nodes_name ON code_nodes(name);
CREATE INDEX IF NOT EXISTS idx_code_nodes_qname ON code_nodes(qualified_name);

CREATE VIRTUAL TABLE IF NOT EXISTS code_nodes_fts USING fts5(
	name,
	qualified_name,
	summary,
	signature,
	docstring,
	content='code_nodes',
	content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS code_nodes_ai AFTER INSERT ON code_nodes BEGIN
	INSERT INTO code_nodes_fts(rowid, name, qualified_name, summary, signature, docstring)
	VALUES (new.id, new.name, new.qualified_name, new.summary, new.signature, new.docstring);
END;
CREATE TRIGGER IF NOT EXISTS code_nodes_ad AFTER DELETE ON code_nodes BEGIN
	INSERT INTO code_nodes_fts(code_nodes_fts, rowid, name, qualified_name, summary, signature, docstring)
	VALUES ('delete', old.id, old.name, old.qualified_name, old.summary, old.signature, old.docstring);
END;
CREATE TRIGGER IF NOT EXISTS code_nodes_au AFTER UPDATE ON code_nodes BEGIN
	INSERT INTO code_nodes_fts(code_nodes_fts, rowid, name, qualified_name, summary, signature, docstring)
	VALUES ('delete', old.id, old.name, old.qualified_name, old.summary, old.signature, old.docstring);
	INSERT INTO code_nodes_fts(rowid, name, qualified_name, summary, signature, docstring)
	VALUES (new.id, new.name, new.qualified_name, new.summary, new.signature, new.docstring);
END;

CREATE TABLE IF NOT EXISTS code_refs (
	id INTEGER PRIMARY KEY,
	source_id INTEGER NOT NULL,
	target_name TEXT NOT NULL,
	target_id INTEGER,
	kind TEXT NOT NULL,
	line INTEGER NOT NULL,
	FOREIGN KEY (source_id) REFERENCES code_nodes(id)
);

CREATE INDEX IF NOT EXISTS idx_code_refs_source ON code_refs(source_id);

CREATE TABLE IF NOT EXISTS code_fingerprints (
	repo_path TEXT NOT NULL,
	file_path TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	mtime INTEGER NOT NULL,
	size INTEGER NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (repo_path, file_path)
);

CREATE TABLE IF NOT EXISTS embedding_cache (
	text_hash TEXT PRIMARY KEY,
	model TEXT NOT NULL,
	vector BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const vecTableDDLTemplate = `CREATE VIRTUAL TABLE IF NOT EXISTS chunks_vec USING vec0(
	chunk_id INTEGER PRIMARY KEY,
	embedding float[%d]
);`
