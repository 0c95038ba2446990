// Package mirror keeps a local copy of the remote posts collection and
// applies edits confirmed by the gateway.
//
// The Controller is the only owner of the mirror state. Renderers read it
// through Snapshot and change it only through the Controller's operations.
// Network-backed operations follow one envelope: mark the mirror pending
// and clear the last error, call the gateway once, then either apply the
// success mutation or record the failure message. At most one
// network-backed operation runs at a time; a second one is refused with a
// busy result and leaves the state untouched.
package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"labposts/internal/service"
)

const (
	// MsgTitleRequired is recorded when a title is empty after trimming.
	MsgTitleRequired = "title required"

	// MsgBusy is returned when an operation is already in flight.
	MsgBusy = "another operation is in progress"

	// MsgNoEdit is returned by CommitEdit without an open edit session.
	MsgNoEdit = "no edit in progress"
)

// ErrItemNotFound is returned by BeginEdit for an id absent from the mirror.
var ErrItemNotFound = errors.New("item not found")

// Gateway is the subset of service.Gateway the controller drives.
type Gateway interface {
	List(ctx context.Context) service.Result[[]service.Item]
	Create(ctx context.Context, title, description string) service.Result[service.Item]
	Replace(ctx context.Context, id int, title, description string) service.Result[service.Item]
	Remove(ctx context.Context, id int) service.Result[struct{}]
}

// Controller owns the mirror state.
type Controller struct {
	mu                sync.Mutex
	gateway           Gateway
	logger            *slog.Logger
	preserveCompleted bool
	state             State
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPreserveCompleted keeps local Completed flags across Refresh for
// items whose ID is still present upstream.
func WithPreserveCompleted(preserve bool) Option {
	return func(c *Controller) {
		c.preserveCompleted = preserve
	}
}

// New creates a Controller with an empty mirror.
func New(gateway Gateway, opts ...Option) *Controller {
	c := &Controller{
		gateway: gateway,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Item returns the mirrored item with the given id.
func (c *Controller) Item(id int) (service.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.state.indexOf(id)
	if i < 0 {
		return service.Item{}, false
	}
	return c.state.Items[i], true
}

// Refresh replaces the mirror with the upstream list. Local Completed flags
// are dropped unless WithPreserveCompleted is set. An open edit session whose
// target is no longer listed is closed.
func (c *Controller) Refresh(ctx context.Context) service.Result[[]service.Item] {
	if !c.begin() {
		return service.Fail[[]service.Item](service.KindBusy, MsgBusy)
	}

	res := c.gateway.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pending = false
	if !res.OK {
		c.fail("refresh", res.Message)
		return res
	}

	items := cloneItems(res.Value)
	if c.preserveCompleted {
		for i := range items {
			if j := c.state.indexOf(items[i].ID); j >= 0 {
				items[i].Completed = c.state.Items[j].Completed
			}
		}
	}
	c.state.Items = items
	if s := c.state.EditSession; s != nil && c.state.indexOf(s.TargetID) < 0 {
		c.state.EditSession = nil
	}
	c.logger.Debug("refreshed", "items", len(items))
	return service.Ok(cloneItems(items))
}

// SetDraft stores the new-item input draft.
func (c *Controller) SetDraft(title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Draft = Draft{Title: title, Description: description}
}

// AddItem creates an item upstream and prepends it to the mirror. An empty
// title is rejected locally without a network call. The draft is cleared on
// success and kept on failure.
func (c *Controller) AddItem(ctx context.Context, title, description string) service.Result[service.Item] {
	c.mu.Lock()
	if c.state.Pending {
		c.mu.Unlock()
		return service.Fail[service.Item](service.KindBusy, MsgBusy)
	}
	c.state.Draft = Draft{Title: title, Description: description}
	if strings.TrimSpace(title) == "" {
		c.state.LastError = MsgTitleRequired
		c.mu.Unlock()
		return service.Fail[service.Item](service.KindValidation, MsgTitleRequired)
	}
	c.state.Pending = true
	c.state.LastError = ""
	c.mu.Unlock()

	res := c.gateway.Create(ctx, title, description)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pending = false
	if !res.OK {
		c.fail("add", res.Message)
		return res
	}

	item := res.Value
	item.Completed = false
	c.state.Items = append([]service.Item{item}, c.state.Items...)
	c.state.Draft = Draft{}
	return service.Ok(item)
}

// BeginEdit opens an edit session for id seeded from the item's current
// values, discarding any prior session.
func (c *Controller) BeginEdit(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.state.indexOf(id)
	if i < 0 {
		return ErrItemNotFound
	}
	item := c.state.Items[i]
	c.state.EditSession = &EditSession{
		TargetID:         id,
		DraftTitle:       item.Title,
		DraftDescription: item.Description,
	}
	return nil
}

// SetEditDraft updates the drafts of the open edit session. No-op without one.
func (c *Controller) SetEditDraft(title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.EditSession == nil {
		return
	}
	c.state.EditSession.DraftTitle = title
	c.state.EditSession.DraftDescription = description
}

// CommitEdit sends the open session's drafts as a full replacement. On
// success the item keeps its ID and Completed flag and takes title and
// description from the gateway's echo; the session is closed. On failure the
// session stays open.
func (c *Controller) CommitEdit(ctx context.Context) service.Result[service.Item] {
	c.mu.Lock()
	if c.state.Pending {
		c.mu.Unlock()
		return service.Fail[service.Item](service.KindBusy, MsgBusy)
	}
	session := c.state.EditSession
	if session == nil {
		c.mu.Unlock()
		return service.Fail[service.Item](service.KindValidation, MsgNoEdit)
	}
	if strings.TrimSpace(session.DraftTitle) == "" {
		c.state.LastError = MsgTitleRequired
		c.mu.Unlock()
		return service.Fail[service.Item](service.KindValidation, MsgTitleRequired)
	}
	id, title, description := session.TargetID, session.DraftTitle, session.DraftDescription
	c.state.Pending = true
	c.state.LastError = ""
	c.mu.Unlock()

	res := c.gateway.Replace(ctx, id, title, description)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pending = false
	if !res.OK {
		c.fail("commit edit", res.Message)
		return res
	}

	var updated service.Item
	if i := c.state.indexOf(id); i >= 0 {
		updated = c.state.Items[i]
		updated.Title = res.Value.Title
		updated.Description = res.Value.Description
		c.state.Items[i] = updated
	} else {
		updated = service.Item{ID: id, Title: res.Value.Title, Description: res.Value.Description}
	}
	// A session opened while the call was in flight is not ours to close.
	if c.state.EditSession == session {
		c.state.EditSession = nil
	}
	return service.Ok(updated)
}

// CancelEdit closes the edit session, if any.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.EditSession = nil
}

// RemoveItem deletes id upstream and drops it from the mirror. Asking the
// user for confirmation is the caller's job.
func (c *Controller) RemoveItem(ctx context.Context, id int) service.Result[struct{}] {
	if !c.begin() {
		return service.Fail[struct{}](service.KindBusy, MsgBusy)
	}

	res := c.gateway.Remove(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Pending = false
	if !res.OK {
		c.fail("remove", res.Message)
		return res
	}

	if i := c.state.indexOf(id); i >= 0 {
		c.state.Items = append(c.state.Items[:i:i], c.state.Items[i+1:]...)
	}
	if s := c.state.EditSession; s != nil && s.TargetID == id {
		c.state.EditSession = nil
	}
	return res
}

// ToggleCompleted flips the local Completed flag of id. Returns false when
// id is not in the mirror.
func (c *Controller) ToggleCompleted(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.state.indexOf(id)
	if i < 0 {
		return false
	}
	c.state.Items[i].Completed = !c.state.Items[i].Completed
	return true
}

// DismissError clears the last error.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.LastError = ""
}

// begin enters the pending state. Returns false if an operation is in flight.
func (c *Controller) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Pending {
		return false
	}
	c.state.Pending = true
	c.state.LastError = ""
	return true
}

// fail records a failure message. Callers hold mu.
func (c *Controller) fail(op, message string) {
	c.state.LastError = message
	c.logger.Debug("operation failed", "op", op, "error", message)
}
