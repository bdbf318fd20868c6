package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"northstar/api/internal/okr"
)

// documentKey: the engine manages a single document per deployment.
const documentKey = "default"

// PostgresStore keeps the document as one JSONB row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates the document table if it is missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS okr_documents (
			id TEXT PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure okr_documents: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*okr.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM okr_documents WHERE id=$1`, documentKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return DecodeDocument(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	return DecodeDocument(raw), nil
}

func (s *PostgresStore) Save(ctx context.Context, doc *okr.Document) error {
	raw, err := EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO okr_documents (id, payload)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET payload=EXCLUDED.payload, updated_at=NOW()
	`, documentKey, raw)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
