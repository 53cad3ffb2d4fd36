package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/community-hub/internal/model"
)

// GalleryRepo manages images, collections and their ordered membership.
// The single-active invariant is enforced here: activation clears and
// sets the flag inside one transaction so two concurrent activations
// can never leave two collections active.
type GalleryRepo struct{ DB *sql.DB }

func NewGalleryRepo(db *sql.DB) *GalleryRepo { return &GalleryRepo{DB: db} }

// ----- images -----

// CreateImage registers an image and returns its ID.
func (r *GalleryRepo) CreateImage(ctx context.Context, title, url string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO gallery_images (title, url) VALUES (?,?)", title, url)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListImages returns the full image registry, newest first.
func (r *GalleryRepo) ListImages(ctx context.Context) ([]model.Image, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, title, url, created_at FROM gallery_images ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Image, 0)
	for rows.Next() {
		var im model.Image
		if err := rows.Scan(&im.ID, &im.Title, &im.URL, &im.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	return out, rows.Err()
}

// DeleteImage removes an image permanently. Membership rows in every
// collection cascade with it (referential integrity rule).
func (r *GalleryRepo) DeleteImage(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM gallery_images WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ----- collections -----

// CreateCollection inserts an inactive collection and returns its ID.
func (r *GalleryRepo) CreateCollection(ctx context.Context, name string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO gallery_collections (name) VALUES (?)", name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetCollection fetches one collection row.
func (r *GalleryRepo) GetCollection(ctx context.Context, id uint64) (model.Collection, error) {
	var c model.Collection
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, is_active, created_at FROM gallery_collections WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt)
	return c, err
}

// ListCollections returns all collections, active first then by name.
func (r *GalleryRepo) ListCollections(ctx context.Context) ([]model.Collection, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, is_active, created_at FROM gallery_collections ORDER BY is_active DESC, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Collection, 0)
	for rows.Next() {
		var c model.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCollection removes a collection and its membership rows.
func (r *GalleryRepo) DeleteCollection(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM gallery_collections WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Activate makes the target collection the single active one. The
// clear-all and set-one statements run in one transaction; interleaved
// activations serialize on the row locks and the invariant holds.
func (r *GalleryRepo) Activate(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM gallery_collections WHERE id=? FOR UPDATE", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE gallery_collections SET is_active=0 WHERE is_active=1"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE gallery_collections SET is_active=1 WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// ----- items -----

// ItemImage is an image row joined with its position in a collection.
type ItemImage struct {
	ImageID  uint64 `json:"image_id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

// AddItem appends an image to a collection. The position defaults to
// one past the current maximum so new items land at the end.
func (r *GalleryRepo) AddItem(ctx context.Context, collectionID, imageID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO gallery_items (collection_id, image_id, position)
		 SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM gallery_items WHERE collection_id = ?`,
		collectionID, imageID, collectionID)
	return err
}

// RemoveItem drops an image from a collection without touching the
// image itself.
func (r *GalleryRepo) RemoveItem(ctx context.Context, collectionID, imageID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM gallery_items WHERE collection_id=? AND image_id=?",
		collectionID, imageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ItemIDs returns the image ids currently in a collection, ordered by
// position. Callers use it to validate that a reorder payload is a
// total order over the membership.
func (r *GalleryRepo) ItemIDs(ctx context.Context, collectionID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT image_id FROM gallery_items WHERE collection_id=? ORDER BY position",
		collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Reorder rewrites positions so the collection's items appear in the
// order given. The caller must pass every member exactly once; the
// rewrite runs in one transaction so readers never observe a half-
// applied order.
func (r *GalleryRepo) Reorder(ctx context.Context, collectionID uint64, orderedImageIDs []uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for i, imageID := range orderedImageIDs {
		if _, err := tx.ExecContext(ctx,
			"UPDATE gallery_items SET position=? WHERE collection_id=? AND image_id=?",
			i+1, collectionID, imageID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListItems returns a collection's images ordered by ascending position.
func (r *GalleryRepo) ListItems(ctx context.Context, collectionID uint64) ([]ItemImage, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT gi.image_id, im.title, im.url, gi.position
		 FROM gallery_items gi
		 JOIN gallery_images im ON im.id = gi.image_id
		 WHERE gi.collection_id = ?
		 ORDER BY gi.position ASC`, collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ItemImage, 0)
	for rows.Next() {
		var it ItemImage
		if err := rows.Scan(&it.ImageID, &it.Title, &it.URL, &it.Position); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// GetActive returns the active collection, or sql.ErrNoRows when none
// is active.
func (r *GalleryRepo) GetActive(ctx context.Context) (model.Collection, error) {
	var c model.Collection
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, is_active, created_at FROM gallery_collections WHERE is_active=1 LIMIT 1").
		Scan(&c.ID, &c.Name, &c.IsActive, &c.CreatedAt)
	return c, err
}
