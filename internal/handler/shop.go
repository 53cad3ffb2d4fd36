package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/queue"
	"github.com/iliyamo/community-hub/internal/repository"
	queue_publisher "github.com/iliyamo/community-hub/internal/service"
)

// ShopHandler implements the mock jersey shop: the public player
// catalog and the simulated two-step purchase flow. No money moves.
type ShopHandler struct {
	Shop *repository.ShopRepo
}

func NewShopHandler(s *repository.ShopRepo) *ShopHandler {
	return &ShopHandler{Shop: s}
}

type createPurchaseReq struct {
	PlayerID uint64 `json:"player_id"`
}

type playerPart struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Club       string `json:"club"`
	PriceCents uint32 `json:"price_cents"`
}

type purchasePart struct {
	ID         uint64 `json:"id"`
	PlayerID   uint64 `json:"player_id"`
	PriceCents uint32 `json:"price_cents"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

func toPurchasePart(p model.Purchase) purchasePart {
	return purchasePart{
		ID:         p.ID,
		PlayerID:   p.PlayerID,
		PriceCents: p.PriceCents,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListPlayers returns the jersey catalog. Public, no auth required.
func (h *ShopHandler) ListPlayers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	players, err := h.Shop.ListPlayers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]playerPart, 0, len(players))
	for _, p := range players {
		out = append(out, playerPart{ID: p.ID, Name: p.Name, Club: p.Club, PriceCents: p.PriceCents})
	}
	return c.JSON(http.StatusOK, echo.Map{"players": out})
}

// CreatePurchase opens a pending order for the caller. The player's
// current price is snapshotted so later catalog edits do not change
// what an open order costs.
func (h *ShopHandler) CreatePurchase(c echo.Context) error {
	var req createPurchaseReq
	if err := c.Bind(&req); err != nil || req.PlayerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "player_id required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Shop.GetPlayer(ctx, req.PlayerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "player not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	id, err := h.Shop.CreatePurchase(ctx, middleware.UserID(c), p.ID, p.PriceCents)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create purchase failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":          id,
		"player_id":   p.ID,
		"price_cents": p.PriceCents,
		"status":      model.PurchasePending,
	})
}

// GetPurchase returns one of the caller's purchases. Other users'
// orders are hidden as not found rather than forbidden.
func (h *ShopHandler) GetPurchase(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Shop.GetPurchase(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.UserID != middleware.UserID(c) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"purchase": toPurchasePart(p)})
}

// ListPurchases returns the caller's own purchase history.
func (h *ShopHandler) ListPurchases(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	purchases, err := h.Shop.ListByUser(ctx, middleware.UserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"purchases": purchases})
}

// Pay completes a pending purchase. Paying twice is a conflict, paying
// someone else's order is forbidden. The completed order is reported to
// the broker for the audit trail.
func (h *ShopHandler) Pay(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Shop.Pay(ctx, id, middleware.UserID(c))
	if err != nil {
		switch err {
		case repository.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "purchase not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "purchase already completed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment failed"})
	}

	playerName := ""
	if pl, err := h.Shop.GetPlayer(ctx, p.PlayerID); err == nil {
		playerName = pl.Name
	}
	ev := queue.PurchaseCompletedEvent{
		PurchaseID:  p.ID,
		UserID:      p.UserID,
		PlayerID:    p.PlayerID,
		PlayerName:  playerName,
		PriceCents:  p.PriceCents,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer pubCancel()
		_ = queue_publisher.PublishPurchaseCompleted(pubCtx, ev)
	}()

	return c.JSON(http.StatusOK, echo.Map{"id": p.ID, "status": p.Status})
}
