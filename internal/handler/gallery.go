package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/repository"
)

// ActiveGalleryPath is the route whose responses the cache middleware
// stores; curation writes invalidate exactly this entry.
const ActiveGalleryPath = "/api/gallery/active"

// GalleryHandler implements the curated photo gallery: the public
// active carousel plus the admin surface for images, collections and
// ordering.
type GalleryHandler struct {
	Gallery *repository.GalleryRepo
	Cache   config.CacheConfig
	RDB     *redis.Client
}

func NewGalleryHandler(g *repository.GalleryRepo, cache config.CacheConfig, rdb *redis.Client) *GalleryHandler {
	return &GalleryHandler{Gallery: g, Cache: cache, RDB: rdb}
}

// invalidateActive drops the cached carousel response so the next
// public read reflects the mutation instead of a stale hit. Every
// curation write calls it; the cost of an occasional unnecessary DEL is
// below the cost of tracking which collection is active per write.
func (h *GalleryHandler) invalidateActive() {
	if h.RDB == nil || !h.Cache.Enabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = h.RDB.Del(ctx, middleware.CacheKey(h.Cache, ActiveGalleryPath, "")).Err()
}

type createImageReq struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type createCollectionReq struct {
	Name string `json:"name"`
}

type addItemReq struct {
	ImageID uint64 `json:"image_id"`
}

type reorderReq struct {
	ImageIDs []uint64 `json:"image_ids"`
}

type imagePart struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

type collectionPart struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func toImageParts(images []model.Image) []imagePart {
	out := make([]imagePart, 0, len(images))
	for _, im := range images {
		out = append(out, imagePart{ID: im.ID, Title: im.Title, URL: im.URL})
	}
	return out
}

func toCollectionPart(col model.Collection) collectionPart {
	return collectionPart{ID: col.ID, Name: col.Name, IsActive: col.IsActive}
}

// Active returns the active collection's items in position order. When
// no collection is active the carousel is simply empty, not an error.
func (h *GalleryHandler) Active(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	col, err := h.Gallery.GetActive(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusOK, echo.Map{"collection": nil, "items": []struct{}{}})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	items, err := h.Gallery.ListItems(ctx, col.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"collection": echo.Map{"id": col.ID, "name": col.Name},
		"items":      items,
	})
}

// ----- images -----

func (h *GalleryHandler) CreateImage(c echo.Context) error {
	var req createImageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)
	if req.Title == "" || req.URL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/url required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	id, err := h.Gallery.CreateImage(ctx, req.Title, req.URL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create image failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

func (h *GalleryHandler) ListImages(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	images, err := h.Gallery.ListImages(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"images": toImageParts(images)})
}

// DeleteImage removes an image and, through cascade, its membership in
// every collection.
func (h *GalleryHandler) DeleteImage(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Gallery.DeleteImage(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "image not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.invalidateActive()
	return c.NoContent(http.StatusNoContent)
}

// ----- collections -----

func (h *GalleryHandler) CreateCollection(c echo.Context) error {
	var req createCollectionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	id, err := h.Gallery.CreateCollection(ctx, req.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create collection failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

func (h *GalleryHandler) ListCollections(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cols, err := h.Gallery.ListCollections(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]collectionPart, 0, len(cols))
	for _, col := range cols {
		out = append(out, toCollectionPart(col))
	}
	return c.JSON(http.StatusOK, echo.Map{"collections": out})
}

func (h *GalleryHandler) GetCollection(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	col, err := h.Gallery.GetCollection(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	items, err := h.Gallery.ListItems(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"collection": toCollectionPart(col), "items": items})
}

func (h *GalleryHandler) DeleteCollection(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Gallery.DeleteCollection(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	h.invalidateActive()
	return c.NoContent(http.StatusNoContent)
}

// Activate makes the target collection the single active one. The
// clear-then-set runs atomically in the repository, so two concurrent
// activations can never leave two collections active.
func (h *GalleryHandler) Activate(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Gallery.Activate(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "activate failed"})
	}
	h.invalidateActive()
	return c.JSON(http.StatusOK, echo.Map{"id": id, "is_active": true})
}

// ----- items -----

func (h *GalleryHandler) AddItem(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req addItemReq
	if err := c.Bind(&req); err != nil || req.ImageID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image_id required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Gallery.AddItem(ctx, id, req.ImageID); err != nil {
		msg := strings.ToLower(err.Error())
		// Duplicate membership or unknown collection/image both surface
		// as constraint violations from MySQL.
		if strings.Contains(msg, "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "image already in collection"})
		}
		if strings.Contains(msg, "1452") {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection or image not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "add item failed"})
	}
	h.invalidateActive()
	return c.NoContent(http.StatusNoContent)
}

func (h *GalleryHandler) RemoveItem(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	imageID, err := strconv.ParseUint(c.Param("imageID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid image id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Gallery.RemoveItem(ctx, id, imageID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove item failed"})
	}
	h.invalidateActive()
	return c.NoContent(http.StatusNoContent)
}

// Reorder replaces the display order of a collection. The payload must
// be a total order: every current member exactly once. Partial lists
// are rejected so stale positions can never collide with new ones.
func (h *GalleryHandler) Reorder(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req reorderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.Gallery.GetCollection(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "collection not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	current, err := h.Gallery.ItemIDs(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !isPermutation(current, req.ImageIDs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image_ids must list every collection item exactly once"})
	}
	if err := h.Gallery.Reorder(ctx, id, req.ImageIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reorder failed"})
	}
	h.invalidateActive()
	return c.NoContent(http.StatusNoContent)
}

// isPermutation reports whether proposed contains exactly the elements
// of current, in any order, with no duplicates or strangers.
func isPermutation(current, proposed []uint64) bool {
	if len(current) != len(proposed) {
		return false
	}
	want := make(map[uint64]bool, len(current))
	for _, id := range current {
		want[id] = true
	}
	seen := make(map[uint64]bool, len(proposed))
	for _, id := range proposed {
		if !want[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
