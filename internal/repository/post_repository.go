package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/community-hub/internal/model"
)

// PostRepo provides CRUD operations for forum posts. Moderation status
// decisions are made by the moderation package; this repository only
// persists them.
type PostRepo struct{ DB *sql.DB }

func NewPostRepo(db *sql.DB) *PostRepo { return &PostRepo{DB: db} }

// PostDetail is a post joined with its author and category names for
// listing responses.
type PostDetail struct {
	ID           uint64 `json:"id"`
	CategoryID   uint64 `json:"category_id"`
	CategoryName string `json:"category_name"`
	UserID       uint64 `json:"user_id"`
	Author       string `json:"author"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

const postDetailQ = `SELECT p.id, p.category_id, c.name, p.user_id, u.username,
                            p.title, p.content, p.status, p.created_at
                     FROM posts p
                     JOIN categories c ON c.id = p.category_id
                     JOIN users u ON u.id = p.user_id`

func scanPostDetail(rows *sql.Rows) (PostDetail, error) {
	var (
		d  PostDetail
		ts sql.NullTime
	)
	err := rows.Scan(&d.ID, &d.CategoryID, &d.CategoryName, &d.UserID, &d.Author,
		&d.Title, &d.Content, &d.Status, &ts)
	if ts.Valid {
		d.CreatedAt = ts.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return d, err
}

// Create inserts a post with the given moderation status and returns its ID.
func (r *PostRepo) Create(ctx context.Context, categoryID, userID uint64, title, content, status string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO posts (category_id, user_id, title, content, status) VALUES (?,?,?,?,?)",
		categoryID, userID, title, content, status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a post row by id.
func (r *PostRepo) GetByID(ctx context.Context, id uint64) (model.Post, error) {
	var p model.Post
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, category_id, user_id, title, content, status, created_at, updated_at FROM posts WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.CategoryID, &p.UserID, &p.Title, &p.Content, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// ListByStatus returns posts in the given moderation state, newest
// first, optionally filtered by category.
func (r *PostRepo) ListByStatus(ctx context.Context, status string, categoryID uint64) ([]PostDetail, error) {
	q := postDetailQ + " WHERE p.status = ?"
	args := []interface{}{status}
	if categoryID != 0 {
		q += " AND p.category_id = ?"
		args = append(args, categoryID)
	}
	q += " ORDER BY p.created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]PostDetail, 0)
	for rows.Next() {
		d, err := scanPostDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetStatus updates the moderation state of a post.
func (r *PostRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE posts SET status=? WHERE id=?", status, id)
	return err
}

// UpdateContent replaces title and content and sets the given status in
// one statement, so a moderator's edit-then-approve is atomic.
func (r *PostRepo) UpdateContent(ctx context.Context, id uint64, title, content, status string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE posts SET title=?, content=?, status=? WHERE id=?",
		title, content, status, id)
	return err
}

// Delete removes a post permanently. Comments and their ratings go with
// it through ON DELETE CASCADE.
func (r *PostRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM posts WHERE id=?", id)
	return err
}
