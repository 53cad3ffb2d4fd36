package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/community-hub/internal/model"
)

// SessionRepo persists and validates sessions (single 'id_hash' column).
// Sessions are the only revocable authentication proof: access tokens
// reference a session by hash and die with it.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row keyed by the hash of the opaque
// identifier, together with its per-session CSRF token.
func (r *SessionRepo) Create(ctx context.Context, userID uint64, idHash, csrfToken string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, id_hash, csrf_token, expires_at) VALUES (?,?,?,?)",
		userID, idHash, csrfToken, exp)
	return err
}

// Validate returns the session if a non-revoked, non-expired row exists
// for the hash. Expired or revoked rows yield sql.ErrNoRows so callers
// treat all invalid sessions uniformly.
func (r *SessionRepo) Validate(ctx context.Context, idHash string) (model.Session, error) {
	var (
		s         model.Session
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, id_hash, csrf_token, expires_at, revoked_at, created_at FROM sessions WHERE id_hash=? LIMIT 1",
		idHash).Scan(&s.ID, &s.UserID, &s.IDHash, &s.CSRFToken, &s.ExpiresAt, &revokedAt, &s.CreatedAt)
	if err != nil {
		return model.Session{}, err
	}
	if revokedAt.Valid {
		return model.Session{}, sql.ErrNoRows
	}
	if time.Now().UTC().After(s.ExpiresAt) {
		return model.Session{}, sql.ErrNoRows
	}
	return s, nil
}

// RevokeByHash marks a session as revoked.
func (r *SessionRepo) RevokeByHash(ctx context.Context, idHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=NOW() WHERE id_hash=? AND revoked_at IS NULL",
		idHash)
	return err
}

// RevokeAllForUser revokes every active session of a user.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
