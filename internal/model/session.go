package model

import "time"

// Session models an entry in the `sessions` table. The opaque session
// identifier handed to the client is not stored; only its SHA-256 hash.
// Every authentication proof in the system, including the short-lived
// access token, references a session row, so revoking the row ends the
// session across both proofs.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the session.
//  IDHash    – SHA-256 hex digest of the opaque session identifier.
//  CSRFToken – per-session anti-forgery token required on state-changing requests.
//  ExpiresAt – expiration timestamp of the session.
//  RevokedAt – when the session was revoked (null while active).
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        uint64     // sessions.id
	UserID    uint64     // sessions.user_id
	IDHash    string     // sessions.id_hash
	CSRFToken string     // sessions.csrf_token
	ExpiresAt time.Time  // sessions.expires_at
	RevokedAt *time.Time // sessions.revoked_at (nullable)
	CreatedAt time.Time  // sessions.created_at
}
