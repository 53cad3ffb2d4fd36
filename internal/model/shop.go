package model

import "time"

// Purchase states. A purchase is created PENDING and moves to COMPLETED
// through an explicit pay action; the transition is one-directional.
const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
)

// Player is a row in the `players` table, the mock jersey shop catalog.
// Prices are stored in cents to avoid floating point money.
type Player struct {
	ID         uint64 // players.id
	Name       string // players.name
	Club       string // players.club
	PriceCents uint32 // players.price_cents
}

// Purchase records a user's simulated jersey order in the `purchases`
// table. PriceCents snapshots the player's price at purchase time so
// later catalog edits do not rewrite history.
type Purchase struct {
	ID         uint64    // purchases.id
	UserID     uint64    // purchases.user_id
	PlayerID   uint64    // purchases.player_id
	PriceCents uint32    // purchases.price_cents
	Status     string    // purchases.status
	CreatedAt  time.Time // purchases.created_at
	UpdatedAt  time.Time // purchases.updated_at
}
