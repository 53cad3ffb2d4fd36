package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/moderation"
	"github.com/iliyamo/community-hub/internal/queue"
	"github.com/iliyamo/community-hub/internal/repository"
	queue_publisher "github.com/iliyamo/community-hub/internal/service"
)

// PostHandler implements the forum post endpoints including the
// moderation operations.
type PostHandler struct {
	Cfg        config.Config
	Posts      *repository.PostRepo
	Categories *repository.CategoryRepo
}

func NewPostHandler(cfg config.Config, p *repository.PostRepo, c *repository.CategoryRepo) *PostHandler {
	return &PostHandler{Cfg: cfg, Posts: p, Categories: c}
}

type createPostReq struct {
	CategoryID uint64 `json:"category_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

type updatePostReq struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type postPart struct {
	ID         uint64 `json:"id"`
	CategoryID uint64 `json:"category_id"`
	UserID     uint64 `json:"user_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toPostPart(p model.Post) postPart {
	return postPart{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		UserID:     p.UserID,
		Title:      p.Title,
		Content:    p.Content,
		Status:     p.Status,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// publishModerated reports a moderation decision to the broker without
// blocking or failing the request.
func publishModerated(contentType string, contentID uint64, action, newStatus string, moderatorID, authorID uint64) {
	ev := queue.ContentModeratedEvent{
		ContentType: contentType,
		ContentID:   contentID,
		Action:      action,
		NewStatus:   newStatus,
		ModeratorID: moderatorID,
		AuthorID:    authorID,
		DecidedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishContentModerated(ctx, ev)
	}()
}

// ListCategories returns all forum categories.
func (h *PostHandler) ListCategories(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cats, err := h.Categories.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]echo.Map, 0, len(cats))
	for _, cat := range cats {
		out = append(out, echo.Map{"id": cat.ID, "name": cat.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": out})
}

// List returns approved posts, optionally filtered by category. Pending
// and rejected posts never appear here.
func (h *PostHandler) List(c echo.Context) error {
	var categoryID uint64
	if s := c.QueryParam("category_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category_id"})
		}
		categoryID = id
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	posts, err := h.Posts.ListByStatus(ctx, model.StatusApproved, categoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// ListPending returns the post moderation queue (moderator/admin only,
// enforced by the route middleware).
func (h *PostHandler) ListPending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	posts, err := h.Posts.ListByStatus(ctx, model.StatusPending, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// Create inserts a new post. The author's role decides the initial
// moderation state through the shared auto-approve policy.
func (h *PostHandler) Create(c echo.Context) error {
	var req createPostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/content required"})
	}
	if req.CategoryID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Categories.Exists(ctx, req.CategoryID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
	}

	uid := middleware.UserID(c)
	status := moderation.InitialStatus(middleware.Role(c), h.Cfg.AutoApproveRoles)
	id, err := h.Posts.Create(ctx, req.CategoryID, uid, req.Title, req.Content, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create post failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": status})
}

// Get returns a single post. Non-approved posts are visible only to
// their author and to moderators.
func (h *PostHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.Status != model.StatusApproved {
		uid := middleware.UserID(c)
		if uid != p.UserID && !moderation.CanModerate(middleware.Role(c)) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"post": toPostPart(p)})
}

// moderate applies an approve/reject action to a post. Re-applying the
// current state is a no-op reported as success.
func (h *PostHandler) moderate(c echo.Context, action string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	next, changed, err := moderation.Decide(p.Status, action)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if changed {
		if err := h.Posts.SetStatus(ctx, id, next); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		publishModerated("post", id, action, next, middleware.UserID(c), p.UserID)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": next})
}

func (h *PostHandler) Approve(c echo.Context) error { return h.moderate(c, moderation.ActionApprove) }
func (h *PostHandler) Reject(c echo.Context) error  { return h.moderate(c, moderation.ActionReject) }

// Update edits a post. Moderators edit-then-approve in one step
// (content cleanup before publishing); the author's own edit sends the
// post back through the moderation policy.
func (h *PostHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updatePostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	uid := middleware.UserID(c)
	role := middleware.Role(c)
	var status string
	switch {
	case moderation.CanModerate(role):
		status = model.StatusApproved
	case uid == p.UserID:
		status = moderation.InitialStatus(role, h.Cfg.AutoApproveRoles)
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Posts.UpdateContent(ctx, id, req.Title, req.Content, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if moderation.CanModerate(role) && p.Status != model.StatusApproved {
		publishModerated("post", id, moderation.ActionApprove, status, uid, p.UserID)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// Delete removes a post permanently; comments and ratings cascade.
// Owners and moderators may delete.
func (h *PostHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !moderation.CanDelete(middleware.UserID(c), middleware.Role(c), p.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Posts.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
