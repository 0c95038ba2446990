package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	// DefaultListLimit is the number of items kept from a list response.
	DefaultListLimit = 10

	// MsgNotFound is the failure message for an id unknown upstream.
	MsgNotFound = "not found"
)

// Gateway normalizes Backend outcomes into Results. It never retries and
// never caches: each call is one round trip.
type Gateway struct {
	backend Backend
	limit   int
}

// NewGateway creates a Gateway over backend. A non-positive limit uses
// DefaultListLimit.
func NewGateway(backend Backend, limit int) *Gateway {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return &Gateway{backend: backend, limit: limit}
}

// List fetches the collection, truncated to the configured prefix length.
func (g *Gateway) List(ctx context.Context) Result[[]Item] {
	items, err := g.backend.ListItems(ctx)
	if err != nil {
		return failure[[]Item](err)
	}
	if len(items) > g.limit {
		items = items[:g.limit]
	}
	out := make([]Item, len(items))
	for i, item := range items {
		item.Completed = false
		out[i] = item
	}
	return Ok(out)
}

// Fetch returns a single item.
func (g *Gateway) Fetch(ctx context.Context, id int) Result[Item] {
	item, err := g.backend.GetItem(ctx, id)
	if err != nil {
		return failure[Item](err)
	}
	item.Completed = false
	return Ok(item)
}

// Create creates an item. Title validation is the caller's job.
func (g *Gateway) Create(ctx context.Context, title, description string) Result[Item] {
	item, err := g.backend.CreateItem(ctx, title, description)
	if err != nil {
		return failure[Item](err)
	}
	item.Completed = false
	return Ok(item)
}

// Replace sends a full replacement of the item's remote fields.
func (g *Gateway) Replace(ctx context.Context, id int, title, description string) Result[Item] {
	item, err := g.backend.ReplaceItem(ctx, id, title, description)
	if err != nil {
		return failure[Item](err)
	}
	return Ok(item)
}

// Remove deletes an item.
func (g *Gateway) Remove(ctx context.Context, id int) Result[struct{}] {
	if err := g.backend.DeleteItem(ctx, id); err != nil {
		return failure[struct{}](err)
	}
	return Ok(struct{}{})
}

func failure[T any](err error) Result[T] {
	kind, msg := Classify(err)
	return Fail[T](kind, msg)
}

// Classify maps an error to its kind and a user-facing message.
func Classify(err error) (ErrorKind, string) {
	if err == nil {
		return KindNone, ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransport, "request timed out"
	}
	if errors.Is(err, context.Canceled) {
		return KindTransport, "request cancelled"
	}
	if errors.Is(err, ErrValidation) {
		return KindValidation, err.Error()
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		if errors.Is(err, ErrNotFound) {
			return KindRemote, MsgNotFound
		}
		return KindRemote, strings.TrimSpace(fmt.Sprintf("remote error: %d %s", remote.StatusCode, http.StatusText(remote.StatusCode)))
	}
	if errors.Is(err, ErrNotFound) {
		return KindRemote, MsgNotFound
	}

	var decode *DecodeError
	if errors.As(err, &decode) {
		return KindDecode, "malformed response: " + decode.Err.Error()
	}

	var transport *TransportError
	if errors.As(err, &transport) {
		return KindTransport, "network error: " + transport.Err.Error()
	}

	return KindTransport, err.Error()
}
