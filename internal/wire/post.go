// Package wire defines the JSON shape of a post on the remote HTTP surface.
package wire

import "labposts/internal/service"

// UserID is sent with every write; the demo API requires one.
const UserID = 1

// Post is a post as the remote API sends and receives it.
// The item description travels as "body".
type Post struct {
	ID     int    `json:"id,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId,omitempty"`
}

// ToItem converts a wire post to an Item. Completed is always false.
func (p Post) ToItem() service.Item {
	return service.Item{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Body,
	}
}

// FromItem converts an Item to its wire shape.
func FromItem(item service.Item) Post {
	return Post{
		ID:     item.ID,
		Title:  item.Title,
		Body:   item.Description,
		UserID: UserID,
	}
}
