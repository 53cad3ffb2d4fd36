package model

import "time"

// Moderation states shared by posts and comments. Content enters the
// system as StatusPending unless the author's role is in the configured
// auto-approve set; only approved content appears in public listings.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Rating values accepted for comment ratings.
const (
	RatingLike    = 1
	RatingDislike = -1
)

// Category is a row in the `categories` table. Every post belongs to
// exactly one category.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name
}

// Post represents a forum post as stored in the `posts` table.
//
// Fields:
//  ID         – primary key identifier.
//  CategoryID – category the post belongs to.
//  UserID     – author of the post.
//  Title      – post title.
//  Content    – post body.
//  Status     – moderation state (pending/approved/rejected).
//  CreatedAt  – timestamp of creation.
//  UpdatedAt  – timestamp of last update.
type Post struct {
	ID         uint64    // posts.id
	CategoryID uint64    // posts.category_id
	UserID     uint64    // posts.user_id
	Title      string    // posts.title
	Content    string    // posts.content
	Status     string    // posts.status
	CreatedAt  time.Time // posts.created_at
	UpdatedAt  time.Time // posts.updated_at
}

// Comment represents a row in the `comments` table. Comments follow the
// same moderation lifecycle as posts.
type Comment struct {
	ID        uint64    // comments.id
	PostID    uint64    // comments.post_id
	UserID    uint64    // comments.user_id
	Content   string    // comments.content
	Status    string    // comments.status
	CreatedAt time.Time // comments.created_at
	UpdatedAt time.Time // comments.updated_at
}

// CommentRating is a (comment, user) pair holding a +1 or -1 value.
// At most one row exists per pair; like/dislike totals are derived by
// counting rows, never stored.
type CommentRating struct {
	CommentID uint64    // comment_ratings.comment_id
	UserID    uint64    // comment_ratings.user_id
	Value     int       // comment_ratings.value (+1 or -1)
	CreatedAt time.Time // comment_ratings.created_at
}
