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
	"github.com/iliyamo/community-hub/internal/repository"
)

// CommentHandler implements comment endpoints: creation under a post,
// the moderation queue, decisions and the like/dislike toggle.
type CommentHandler struct {
	Cfg      config.Config
	Posts    *repository.PostRepo
	Comments *repository.CommentRepo
	Ratings  *repository.RatingRepo
}

func NewCommentHandler(cfg config.Config, p *repository.PostRepo, cm *repository.CommentRepo, rt *repository.RatingRepo) *CommentHandler {
	return &CommentHandler{Cfg: cfg, Posts: p, Comments: cm, Ratings: rt}
}

type createCommentReq struct {
	Content string `json:"content"`
}

type rateReq struct {
	Value int `json:"value"` // +1 or -1
}

// ListForPost returns a post's approved comments with derived rating
// totals. The post itself must be approved (or visible to the caller).
func (h *CommentHandler) ListForPost(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Posts.GetByID(ctx, postID)
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
	comments, err := h.Comments.ListForPost(ctx, postID, model.StatusApproved)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

// ListPending returns the comment moderation queue (moderator/admin only).
func (h *CommentHandler) ListPending(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	comments, err := h.Comments.ListPending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

// Create adds a comment under an approved post. The author's role
// decides the initial state through the same auto-approve policy used
// for posts.
func (h *CommentHandler) Create(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req createCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	p, err := h.Posts.GetByID(ctx, postID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if p.Status != model.StatusApproved {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	}

	status := moderation.InitialStatus(middleware.Role(c), h.Cfg.AutoApproveRoles)
	id, err := h.Comments.Create(ctx, postID, middleware.UserID(c), req.Content, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "status": status})
}

// moderate applies an approve/reject decision to a comment.
func (h *CommentHandler) moderate(c echo.Context, action string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	next, changed, err := moderation.Decide(cm.Status, action)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if changed {
		if err := h.Comments.SetStatus(ctx, id, next); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
		publishModerated("comment", id, action, next, middleware.UserID(c), cm.UserID)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": next})
}

func (h *CommentHandler) Approve(c echo.Context) error { return h.moderate(c, moderation.ActionApprove) }
func (h *CommentHandler) Reject(c echo.Context) error  { return h.moderate(c, moderation.ActionReject) }

// Update edits a comment. Moderators edit-then-approve atomically; the
// author's own edit re-enters the moderation policy.
func (h *CommentHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req createCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	uid := middleware.UserID(c)
	role := middleware.Role(c)
	var status string
	switch {
	case moderation.CanModerate(role):
		status = model.StatusApproved
	case uid == cm.UserID:
		status = moderation.InitialStatus(role, h.Cfg.AutoApproveRoles)
	default:
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Comments.UpdateContent(ctx, id, req.Content, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if moderation.CanModerate(role) && cm.Status != model.StatusApproved {
		publishModerated("comment", id, moderation.ActionApprove, status, uid, cm.UserID)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": status})
}

// Rate applies the three-way toggle: first vote inserts, repeating the
// same vote removes it, the opposite vote overwrites. Totals come back
// with the response so clients need no follow-up read.
func (h *CommentHandler) Rate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Value != model.RatingLike && req.Value != model.RatingDislike {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "value must be 1 or -1"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	state, err := h.Ratings.Toggle(ctx, id, middleware.UserID(c), req.Value)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rate failed"})
	}
	return c.JSON(http.StatusOK, state)
}

// Delete removes a comment; owners and moderators may delete.
func (h *CommentHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !moderation.CanDelete(middleware.UserID(c), middleware.Role(c), cm.UserID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Comments.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
