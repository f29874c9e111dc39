package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kataras/cloudinary-source/pkg/node"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id             TEXT PRIMARY KEY,
	public_id      TEXT NOT NULL,
	type           TEXT NOT NULL,
	content_digest TEXT NOT NULL,
	body           TEXT NOT NULL,
	updated_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_nodes_public_id ON nodes(public_id);
`

// SQLite persists nodes into an SQLite database, one row per node id.
// Registering a node whose id already exists replaces the row.
type SQLite struct {
	node.Helpers
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive across calls.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// CreateNode upserts n.
func (s *SQLite) CreateNode(ctx context.Context, n node.Node) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode node %s: %w", n.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (id, public_id, type, content_digest, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			public_id = excluded.public_id,
			type = excluded.type,
			content_digest = excluded.content_digest,
			body = excluded.body,
			updated_at = excluded.updated_at`,
		n.ID, n.PublicID(), n.Internal.Type, n.Internal.ContentDigest, string(body), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("insert node %s: %w", n.ID, err)
	}
	return nil
}

// StoredNode is a row of the nodes table.
type StoredNode struct {
	ID            string
	PublicID      string
	Type          string
	ContentDigest string
	Body          string
	UpdatedAt     time.Time
}

// Nodes returns all stored nodes ordered by public id.
func (s *SQLite) Nodes(ctx context.Context) ([]StoredNode, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, public_id, type, content_digest, body, updated_at FROM nodes ORDER BY public_id`)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var out []StoredNode
	for rows.Next() {
		var (
			n  StoredNode
			ms int64
		)
		if err := rows.Scan(&n.ID, &n.PublicID, &n.Type, &n.ContentDigest, &n.Body, &ms); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		n.UpdatedAt = time.UnixMilli(ms)
		out = append(out, n)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
