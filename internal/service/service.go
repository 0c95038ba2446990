package service

import "context"

// Backend defines the raw operations against a posts collection.
// All upstream calls go through this interface.
// Commands and the mirror never import an HTTP client directly.
type Backend interface {
	// ListItems returns the collection in upstream order.
	ListItems(ctx context.Context) ([]Item, error)

	// GetItem returns a single item by ID.
	GetItem(ctx context.Context, id int) (Item, error)

	// CreateItem creates an item. The backend assigns the ID.
	CreateItem(ctx context.Context, title, description string) (Item, error)

	// ReplaceItem replaces every remote field of the item with the given values.
	ReplaceItem(ctx context.Context, id int, title, description string) (Item, error)

	// DeleteItem deletes an item by ID.
	DeleteItem(ctx context.Context, id int) error
}
