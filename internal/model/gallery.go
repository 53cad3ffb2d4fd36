package model

import "time"

// Image is a row in the `gallery_images` table. Images exist
// independently of collections; deleting an image removes it from every
// collection that references it.
type Image struct {
	ID        uint64    // gallery_images.id
	Title     string    // gallery_images.title
	URL       string    // gallery_images.url
	CreatedAt time.Time // gallery_images.created_at
}

// Collection is a named, ordered set of images in the
// `gallery_collections` table. At most one collection is active
// system-wide; the active collection drives the public carousel.
type Collection struct {
	ID        uint64    // gallery_collections.id
	Name      string    // gallery_collections.name
	IsActive  bool      // gallery_collections.is_active
	CreatedAt time.Time // gallery_collections.created_at
}

// CollectionItem maps an image into a collection at a display position.
// Positions order items ascending and need not be contiguous.
type CollectionItem struct {
	CollectionID uint64 // gallery_items.collection_id
	ImageID      uint64 // gallery_items.image_id
	Position     int    // gallery_items.position
}
