package repository

import (
	"context"
	"database/sql"
)

// RatingRepo implements the per-user like/dislike toggle on comments.
// The toggle is a check-then-act sequence, so it runs inside one
// transaction with the existing row locked; concurrent ratings by the
// same user cannot produce duplicate rows or lost updates.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Toggle outcomes for a (previous, requested) rating pair.
const (
	ratingInsert = iota // no prior rating: insert the requested value
	ratingDelete        // same value again: remove the row (back to neutral)
	ratingUpdate        // opposite value: overwrite
)

// nextRatingOp decides the toggle action. prev is nil when the user has
// no rating on the comment yet.
func nextRatingOp(prev *int, value int) int {
	switch {
	case prev == nil:
		return ratingInsert
	case *prev == value:
		return ratingDelete
	default:
		return ratingUpdate
	}
}

// RatingState is returned by Toggle so handlers can respond with the
// caller's resulting vote and the fresh totals without a second round trip.
type RatingState struct {
	MyRating int   `json:"my_rating"` // +1, -1, or 0 after the toggle
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// Toggle applies the three-way toggle for (commentID, userID) with the
// given value (+1 or -1). It returns ErrNotFound when the comment does
// not exist. The whole operation is one transaction.
func (r *RatingRepo) Toggle(ctx context.Context, commentID, userID uint64, value int) (RatingState, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return RatingState{}, err
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the comment row so a concurrent delete cannot race the insert.
	var exists uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM comments WHERE id=? FOR UPDATE", commentID).Scan(&exists)
	if err == sql.ErrNoRows {
		return RatingState{}, ErrNotFound
	}
	if err != nil {
		return RatingState{}, err
	}

	var prev *int
	var v int
	err = tx.QueryRowContext(ctx,
		"SELECT value FROM comment_ratings WHERE comment_id=? AND user_id=? FOR UPDATE",
		commentID, userID).Scan(&v)
	switch err {
	case nil:
		prev = &v
	case sql.ErrNoRows:
	default:
		return RatingState{}, err
	}

	state := RatingState{MyRating: value}
	switch nextRatingOp(prev, value) {
	case ratingInsert:
		_, err = tx.ExecContext(ctx,
			"INSERT INTO comment_ratings (comment_id, user_id, value) VALUES (?,?,?)",
			commentID, userID, value)
	case ratingDelete:
		state.MyRating = 0
		_, err = tx.ExecContext(ctx,
			"DELETE FROM comment_ratings WHERE comment_id=? AND user_id=?",
			commentID, userID)
	case ratingUpdate:
		_, err = tx.ExecContext(ctx,
			"UPDATE comment_ratings SET value=? WHERE comment_id=? AND user_id=?",
			value, commentID, userID)
	}
	if err != nil {
		return RatingState{}, err
	}

	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(value = 1), 0), COALESCE(SUM(value = -1), 0)
		 FROM comment_ratings WHERE comment_id=?`,
		commentID).Scan(&state.Likes, &state.Dislikes)
	if err != nil {
		return RatingState{}, err
	}
	if err := tx.Commit(); err != nil {
		return RatingState{}, err
	}
	return state, nil
}
