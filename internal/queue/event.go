// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by publishers and the audit consumer.
const (
	ContentModeratedQueue  = "content.moderated"
	PurchaseCompletedQueue = "purchase.completed"
)

// ContentModeratedEvent is published whenever a moderation decision is
// made on a post or comment. It carries enough information for
// downstream consumers to audit or notify without querying the primary
// database.
type ContentModeratedEvent struct {
	ContentType string `json:"content_type"` // "post" or "comment"
	ContentID   uint64 `json:"content_id"`
	Action      string `json:"action"` // "approve" or "reject"
	NewStatus   string `json:"new_status"`
	ModeratorID uint64 `json:"moderator_id"`
	AuthorID    uint64 `json:"author_id"`
	DecidedAt   string `json:"decided_at"`
}

// PurchaseCompletedEvent is published when a pending purchase is paid.
type PurchaseCompletedEvent struct {
	PurchaseID  uint64 `json:"purchase_id"`
	UserID      uint64 `json:"user_id"`
	PlayerID    uint64 `json:"player_id"`
	PlayerName  string `json:"player_name"`
	PriceCents  uint32 `json:"price_cents"`
	CompletedAt string `json:"completed_at"`
}
