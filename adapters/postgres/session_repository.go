package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"maiveui/domain/core"
	"maiveui/internal/errors"
	"maiveui/ports"

	"github.com/jmoiron/sqlx"
)

// sessionRepository implements ports.SessionStore on PostgreSQL so wizard
// sessions survive process restarts.
type sessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sqlx.DB) ports.SessionStore {
	return &sessionRepository{db: db}
}

// EnsureSchema creates the sessions table if it does not exist
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	const ddl = `CREATE TABLE IF NOT EXISTS wizard_sessions (
		dataset_id TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrap(err, "failed to create wizard_sessions table")
	}
	return nil
}

// Get retrieves a session by dataset id
func (r *sessionRepository) Get(ctx context.Context, id core.DatasetID) (*ports.Session, error) {
	const query = `SELECT payload FROM wizard_sessions WHERE dataset_id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("session")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}

	var session ports.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errors.Wrap(err, "failed to decode session payload")
	}
	return &session, nil
}

// Set upserts a session under its dataset id
func (r *sessionRepository) Set(ctx context.Context, session *ports.Session) error {
	if session == nil || session.Data == nil || session.Data.ID == "" {
		return errors.InvalidInput("session must carry a dataset id")
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to encode session payload")
	}

	const query = `INSERT INTO wizard_sessions (dataset_id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (dataset_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, session.Data.ID.String(), payload, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "failed to store session")
	}
	return nil
}

// Delete removes a session
func (r *sessionRepository) Delete(ctx context.Context, id core.DatasetID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wizard_sessions WHERE dataset_id = $1`, id.String()); err != nil {
		return errors.Wrap(err, "failed to delete session")
	}
	return nil
}

// Clear removes every session
func (r *sessionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wizard_sessions`); err != nil {
		return errors.Wrap(err, "failed to clear sessions")
	}
	return nil
}
