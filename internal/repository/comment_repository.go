package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/community-hub/internal/model"
)

type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

// CommentDetail is a comment joined with its author plus derived rating
// totals. Likes and dislikes are counted from comment_ratings rows at
// read time; no stored counters exist to drift out of sync.
type CommentDetail struct {
	ID        uint64 `json:"id"`
	PostID    uint64 `json:"post_id"`
	UserID    uint64 `json:"user_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	Likes     int64  `json:"likes"`
	Dislikes  int64  `json:"dislikes"`
	CreatedAt string `json:"created_at"`
}

const commentDetailQ = `SELECT cm.id, cm.post_id, cm.user_id, u.username,
                               cm.content, cm.status,
                               COALESCE(SUM(r.value = 1), 0),
                               COALESCE(SUM(r.value = -1), 0),
                               cm.created_at
                        FROM comments cm
                        JOIN users u ON u.id = cm.user_id
                        LEFT JOIN comment_ratings r ON r.comment_id = cm.id`

func scanCommentDetail(rows *sql.Rows) (CommentDetail, error) {
	var (
		d  CommentDetail
		ts sql.NullTime
	)
	err := rows.Scan(&d.ID, &d.PostID, &d.UserID, &d.Author,
		&d.Content, &d.Status, &d.Likes, &d.Dislikes, &ts)
	if ts.Valid {
		d.CreatedAt = ts.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return d, err
}

// Create inserts a comment with the given moderation status.
func (r *CommentRepo) Create(ctx context.Context, postID, userID uint64, content, status string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO comments (post_id, user_id, content, status) VALUES (?,?,?,?)",
		postID, userID, content, status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a comment row by id.
func (r *CommentRepo) GetByID(ctx context.Context, id uint64) (model.Comment, error) {
	var c model.Comment
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, post_id, user_id, content, status, created_at, updated_at FROM comments WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListForPost returns a post's comments in the given moderation state,
// oldest first, with derived rating totals.
func (r *CommentRepo) ListForPost(ctx context.Context, postID uint64, status string) ([]CommentDetail, error) {
	q := commentDetailQ + ` WHERE cm.post_id = ? AND cm.status = ?
	                        GROUP BY cm.id, cm.post_id, cm.user_id, u.username, cm.content, cm.status, cm.created_at
	                        ORDER BY cm.created_at ASC`
	rows, err := r.DB.QueryContext(ctx, q, postID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CommentDetail, 0)
	for rows.Next() {
		d, err := scanCommentDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListPending returns the moderation queue across all posts, oldest first.
func (r *CommentRepo) ListPending(ctx context.Context) ([]CommentDetail, error) {
	q := commentDetailQ + ` WHERE cm.status = ?
	                        GROUP BY cm.id, cm.post_id, cm.user_id, u.username, cm.content, cm.status, cm.created_at
	                        ORDER BY cm.created_at ASC`
	rows, err := r.DB.QueryContext(ctx, q, model.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CommentDetail, 0)
	for rows.Next() {
		d, err := scanCommentDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetStatus updates the moderation state of a comment.
func (r *CommentRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE comments SET status=? WHERE id=?", status, id)
	return err
}

// UpdateContent replaces the body and sets the given status in one
// statement, keeping a moderator's edit-then-approve atomic.
func (r *CommentRepo) UpdateContent(ctx context.Context, id uint64, content, status string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE comments SET content=?, status=? WHERE id=?", content, status, id)
	return err
}

// Delete removes a comment permanently; its ratings cascade.
func (r *CommentRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM comments WHERE id=?", id)
	return err
}
