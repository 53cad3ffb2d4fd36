package model

import "time"

// Role names stored in users.role. Moderators and admins may act on the
// moderation queue; admins additionally manage the gallery and shop catalog.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents an application user record as stored in the `users`
// table. A user authenticates either with a local password or through an
// OAuth provider, never both: PasswordHash is nil for OAuth-linked
// accounts and OAuthProvider/OAuthID are nil for local accounts.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique email address.
//  Username      – unique display handle.
//  Name          – optional full name.
//  PasswordHash  – bcrypt hashed password (nil for OAuth accounts).
//  OAuthProvider – provider name, e.g. "google" (nil for local accounts).
//  OAuthID       – stable user identifier at the provider.
//  Role          – one of RoleUser, RoleModerator, RoleAdmin.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Email         string    // users.email
	Username      string    // users.username
	Name          string    // users.name
	PasswordHash  *string   // users.password_hash (nullable)
	OAuthProvider *string   // users.oauth_provider (nullable)
	OAuthID       *string   // users.oauth_id (nullable)
	Role          string    // users.role
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}

// IsLocal reports whether the user carries a local credential.
func (u User) IsLocal() bool { return u.PasswordHash != nil }
