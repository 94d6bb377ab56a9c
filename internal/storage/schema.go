package storage

import "context"

// Schema is the canonical PostgreSQL layout for the data model: source/side
// provenance, content-addressed hashes, the path/content/word graph, and
// the title/keyword indexes. Uniqueness on (digest, source_id, side_id) and
// (path_id, word_id) is enforced natively so C3's insert-if-absent contract
// can rely on ON CONFLICT ... RETURNING rather than a select-then-insert
// race.
const Schema = `
CREATE TABLE IF NOT EXISTS sources (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	country     TEXT NOT NULL DEFAULT '',
	job         TEXT NOT NULL DEFAULT '',
	importance  DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	created_on  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sides (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	importance  DOUBLE PRECISION NOT NULL DEFAULT 0.5,
	created_on  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS hashes (
	id         BIGSERIAL PRIMARY KEY,
	digest     CHAR(64) NOT NULL,
	source_id  BIGINT NOT NULL REFERENCES sources(id),
	side_id    BIGINT NOT NULL REFERENCES sides(id),
	UNIQUE (digest, source_id, side_id)
);

CREATE TABLE IF NOT EXISTS paths (
	id          BIGSERIAL PRIMARY KEY,
	file_name   TEXT NOT NULL,
	file_path   TEXT NOT NULL,
	size_bytes  BIGINT NOT NULL CHECK (size_bytes >= 0),
	file_type   TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'Unread' CHECK (status IN ('Read','Unread')),
	file_date   TIMESTAMPTZ,
	created_on  TIMESTAMPTZ NOT NULL DEFAULT now(),
	hash_id     BIGINT NOT NULL REFERENCES hashes(id)
);

CREATE TABLE IF NOT EXISTS contents (
	id              BIGSERIAL PRIMARY KEY,
	compressed_blob BYTEA NOT NULL,
	content_date    TIMESTAMPTZ NOT NULL DEFAULT now(),
	path_id         BIGINT NOT NULL REFERENCES paths(id)
);
CREATE INDEX IF NOT EXISTS contents_path_id_idx ON contents (path_id, id);

CREATE TABLE IF NOT EXISTS words (
	id    BIGSERIAL PRIMARY KEY,
	text  TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS word_paths (
	path_id  BIGINT NOT NULL REFERENCES paths(id),
	word_id  BIGINT NOT NULL REFERENCES words(id),
	count    INTEGER NOT NULL CHECK (count >= 1),
	PRIMARY KEY (path_id, word_id)
);

CREATE TABLE IF NOT EXISTS titles (
	id                      BIGSERIAL PRIMARY KEY,
	compressed_word_id_list BYTEA NOT NULL,
	status                  TEXT NOT NULL CHECK (status IN ('Main','Branch')),
	parent_title_id         BIGINT REFERENCES titles(id),
	path_id                 BIGINT NOT NULL REFERENCES paths(id)
);

CREATE TABLE IF NOT EXISTS keywords (
	id                      BIGSERIAL PRIMARY KEY,
	compressed_word_id_list BYTEA NOT NULL,
	category_id             BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS keyword_paths (
	path_id     BIGINT NOT NULL REFERENCES paths(id),
	keyword_id  BIGINT NOT NULL REFERENCES keywords(id),
	count       INTEGER NOT NULL CHECK (count >= 1),
	PRIMARY KEY (path_id, keyword_id)
);
`

// Migrate applies the schema; it is idempotent and safe to run on every
// startup.
func Migrate(ctx context.Context, db *DB) error {
	_, err := db.pool.Exec(ctx, Schema)
	return err
}
