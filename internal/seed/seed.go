// Package seed provides the fixture posts shipped with labposts.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"

	"labposts/internal/service"
	"labposts/internal/wire"
)

//go:embed posts.jsonc
var postsJSONC []byte

// Parse strips JSONC comments and trailing commas from data, then
// decodes it as a list of wire posts.
func Parse(data []byte) ([]service.Item, error) {
	var posts []wire.Post
	if err := json.Unmarshal(jsonc.ToJSON(data), &posts); err != nil {
		return nil, fmt.Errorf("parsing seed posts: %w", err)
	}

	items := make([]service.Item, 0, len(posts))
	for _, p := range posts {
		items = append(items, p.ToItem())
	}
	return items, nil
}

// Items returns a fresh copy of the embedded fixture posts.
func Items() []service.Item {
	items, err := Parse(postsJSONC)
	if err != nil {
		// The fixture is compiled in; a parse failure is a build defect.
		panic(err)
	}
	return items
}
