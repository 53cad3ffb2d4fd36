package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/community-hub/internal/model"
)

// ShopRepo serves the mock jersey shop: the player catalog and the
// simulated purchases against it.
type ShopRepo struct{ DB *sql.DB }

func NewShopRepo(db *sql.DB) *ShopRepo { return &ShopRepo{DB: db} }

// ListPlayers returns the catalog ordered by name.
func (r *ShopRepo) ListPlayers(ctx context.Context) ([]model.Player, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, club, price_cents FROM players ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Player, 0)
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Club, &p.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlayer fetches one catalog entry.
func (r *ShopRepo) GetPlayer(ctx context.Context, id uint64) (model.Player, error) {
	var p model.Player
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, club, price_cents FROM players WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Name, &p.Club, &p.PriceCents)
	return p, err
}

// CreatePurchase opens a pending order snapshotting the player's
// current price.
func (r *ShopRepo) CreatePurchase(ctx context.Context, userID, playerID uint64, priceCents uint32) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO purchases (user_id, player_id, price_cents, status) VALUES (?,?,?,?)",
		userID, playerID, priceCents, model.PurchasePending)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetPurchase fetches one purchase row.
func (r *ShopRepo) GetPurchase(ctx context.Context, id uint64) (model.Purchase, error) {
	var p model.Purchase
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, player_id, price_cents, status, created_at, updated_at FROM purchases WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.UserID, &p.PlayerID, &p.PriceCents, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// PurchaseDetail joins a purchase with its player for listings.
type PurchaseDetail struct {
	ID         uint64 `json:"id"`
	PlayerID   uint64 `json:"player_id"`
	PlayerName string `json:"player_name"`
	Club       string `json:"club"`
	PriceCents uint32 `json:"price_cents"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// ListByUser returns the caller's purchases, newest first.
func (r *ShopRepo) ListByUser(ctx context.Context, userID uint64) ([]PurchaseDetail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT pu.id, pu.player_id, pl.name, pl.club, pu.price_cents, pu.status, pu.created_at
		 FROM purchases pu
		 JOIN players pl ON pl.id = pu.player_id
		 WHERE pu.user_id = ?
		 ORDER BY pu.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]PurchaseDetail, 0)
	for rows.Next() {
		var (
			d  PurchaseDetail
			ts sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.PlayerID, &d.PlayerName, &d.Club,
			&d.PriceCents, &d.Status, &ts); err != nil {
			return nil, err
		}
		if ts.Valid {
			d.CreatedAt = ts.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Pay transitions a purchase from pending to completed. The transition
// is one-directional: a completed purchase yields ErrConflict, a
// missing one ErrNotFound, and a purchase owned by someone else
// ErrForbidden. The status check and update run in one transaction.
func (r *ShopRepo) Pay(ctx context.Context, purchaseID, userID uint64) (model.Purchase, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Purchase{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var p model.Purchase
	err = tx.QueryRowContext(ctx,
		"SELECT id, user_id, player_id, price_cents, status, created_at, updated_at FROM purchases WHERE id=? FOR UPDATE",
		purchaseID).Scan(&p.ID, &p.UserID, &p.PlayerID, &p.PriceCents, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Purchase{}, ErrNotFound
	}
	if err != nil {
		return model.Purchase{}, err
	}
	if p.UserID != userID {
		return model.Purchase{}, ErrForbidden
	}
	if p.Status != model.PurchasePending {
		return model.Purchase{}, ErrConflict
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE purchases SET status=? WHERE id=?", model.PurchaseCompleted, p.ID); err != nil {
		return model.Purchase{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Purchase{}, err
	}
	p.Status = model.PurchaseCompleted
	return p, nil
}
