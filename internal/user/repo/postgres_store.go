package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-user-registry/internal/user/entity"
)

// PostgresStore keeps the same single document as one jsonb row of the
// documents table, addressed by name.
type PostgresStore struct {
	db   *sqlx.DB
	name string
}

func NewPostgresStore(db *sqlx.DB, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name}
}

// EnsureTable creates the documents table if not exists (idempotent).
func (s *PostgresStore) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS documents (
  name TEXT PRIMARY KEY,
  body JSONB NOT NULL DEFAULT '[]'::jsonb,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Load returns the stored collection, or an empty one if the row is absent.
func (s *PostgresStore) Load(ctx context.Context) ([]entity.User, error) {
	const q = `SELECT body FROM documents WHERE name=$1`
	var body []byte
	if err := s.db.GetContext(ctx, &body, q, s.name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []entity.User{}, nil
		}
		return nil, fmt.Errorf("load document %s: %w", s.name, err)
	}
	var users []entity.User
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", s.name, err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// Save upserts the whole document in one statement.
func (s *PostgresStore) Save(ctx context.Context, users []entity.User) error {
	body, err := encodeDocument(users)
	if err != nil {
		return err
	}
	const q = `INSERT INTO documents (name, body, updated_at)
		  VALUES (:name, CAST(:body AS jsonb), NOW())
		  ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()`
	params := map[string]any{
		"name": s.name,
		"body": string(body),
	}
	if _, err := s.db.NamedExecContext(ctx, q, params); err != nil {
		return fmt.Errorf("save document %s: %w", s.name, err)
	}
	return nil
}
