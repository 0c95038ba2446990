package mirror

import "labposts/internal/service"

// EditSession is an in-progress edit of exactly one item.
type EditSession struct {
	TargetID         int
	DraftTitle       string
	DraftDescription string
}

// Draft is the input for a new item.
type Draft struct {
	Title       string
	Description string
}

// State is the mirror as renderers see it.
type State struct {
	// Items in display order, most recently created first.
	Items []service.Item

	// Pending is true while a network-backed operation is in flight.
	// Renderers must not trigger new operations while it is set.
	Pending bool

	// LastError is the message of the last failure; empty when none.
	LastError string

	// EditSession is nil when no edit is open.
	EditSession *EditSession

	Draft Draft
}

// Editing reports whether the edit session targets id.
func (s State) Editing(id int) bool {
	return s.EditSession != nil && s.EditSession.TargetID == id
}

// CompletedCount returns the number of items marked completed.
func (s State) CompletedCount() int {
	n := 0
	for _, item := range s.Items {
		if item.Completed {
			n++
		}
	}
	return n
}

func (s State) indexOf(id int) int {
	for i, item := range s.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s State) clone() State {
	out := s
	out.Items = cloneItems(s.Items)
	if s.EditSession != nil {
		session := *s.EditSession
		out.EditSession = &session
	}
	return out
}

func cloneItems(items []service.Item) []service.Item {
	if items == nil {
		return nil
	}
	out := make([]service.Item, len(items))
	copy(out, items)
	return out
}
