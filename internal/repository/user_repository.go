package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,email,username,name,password_hash,oauth_provider,oauth_id,role,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Name,
		&u.PasswordHash, &u.OAuthProvider, &u.OAuthID,
		&u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateLocal inserts a password-backed user and returns its ID.
// Duplicate email/username map to the matching sentinel error.
func (r *UserRepo) CreateLocal(ctx context.Context, email, username, name, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, name, password_hash, role) VALUES (?,?,?,?,?)",
		email, username, name, hash, model.RoleUser)
	if err != nil {
		return 0, dupUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// CreateOAuth inserts a provider-linked user without a local credential.
func (r *UserRepo) CreateOAuth(ctx context.Context, email, username, name, provider, providerID string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, name, oauth_provider, oauth_id, role) VALUES (?,?,?,?,?,?)",
		email, username, name, provider, providerID, model.RoleUser)
	if err != nil {
		return 0, dupUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByLogin fetches a user by normalized email or by username. Local
// login accepts either identifier in the same field.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (model.User, error) {
	login = strings.TrimSpace(login)
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? OR username=? LIMIT 1",
		strings.ToLower(login), login))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByOAuth fetches a user by its provider identity pair.
func (r *UserRepo) GetByOAuth(ctx context.Context, provider, providerID string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE oauth_provider=? AND oauth_id=? LIMIT 1",
		provider, providerID))
}

// EmailInUse reports whether any account, local or OAuth, owns the email.
func (r *UserRepo) EmailInUse(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=?",
		strings.ToLower(strings.TrimSpace(email))).Scan(&n)
	return n > 0, err
}

// UpdateProfile syncs the display name, used on OAuth profile refresh.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, name string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET name=? WHERE id=?", name, id)
	return err
}

// dupUserErr maps MySQL duplicate-key failures (error 1062) onto the
// field-specific sentinels by inspecting the violated index name.
func dupUserErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "username") {
		return ErrUsernameExists
	}
	return ErrEmailExists
}
