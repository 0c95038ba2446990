// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"labposts/internal/service"
)

// FakeBackend is an in-memory implementation of service.Backend for testing.
// Unlike memory.Store it records calls and supports per-operation error
// injection.
type FakeBackend struct {
	mu     sync.Mutex
	items  []service.Item
	nextID int

	// Error injection for testing
	ListErr    error
	GetErr     error
	CreateErr  error
	ReplaceErr error
	DeleteErr  error

	// Echo overrides the value returned by create/replace when set,
	// to simulate an upstream that reports something other than what was sent.
	Echo *service.Item

	// Calls counts backend calls by operation name.
	Calls map[string]int
}

// NewFakeBackend creates a FakeBackend holding items.
func NewFakeBackend(items ...service.Item) *FakeBackend {
	f := &FakeBackend{nextID: 1, Calls: make(map[string]int)}
	for _, item := range items {
		f.items = append(f.items, item)
		if item.ID >= f.nextID {
			f.nextID = item.ID + 1
		}
	}
	return f
}

// SetItems replaces the upstream collection.
func (f *FakeBackend) SetItems(items ...service.Item) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]service.Item(nil), items...)
}

// TotalCalls returns the number of backend calls made.
func (f *FakeBackend) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		n += c
	}
	return n
}

// ListItems implements service.Backend.
func (f *FakeBackend) ListItems(ctx context.Context) ([]service.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["list"]++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	result := make([]service.Item, len(f.items))
	copy(result, f.items)
	return result, nil
}

// GetItem implements service.Backend.
func (f *FakeBackend) GetItem(ctx context.Context, id int) (service.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["get"]++
	if f.GetErr != nil {
		return service.Item{}, f.GetErr
	}
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return service.Item{}, service.ErrNotFound
}

// CreateItem implements service.Backend.
func (f *FakeBackend) CreateItem(ctx context.Context, title, description string) (service.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["create"]++
	if f.CreateErr != nil {
		return service.Item{}, f.CreateErr
	}
	if f.Echo != nil {
		return *f.Echo, nil
	}
	item := service.Item{ID: f.nextID, Title: title, Description: description}
	f.nextID++
	f.items = append(f.items, item)
	return item, nil
}

// ReplaceItem implements service.Backend.
func (f *FakeBackend) ReplaceItem(ctx context.Context, id int, title, description string) (service.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["replace"]++
	if f.ReplaceErr != nil {
		return service.Item{}, f.ReplaceErr
	}
	if f.Echo != nil {
		return *f.Echo, nil
	}
	for i, item := range f.items {
		if item.ID == id {
			f.items[i] = service.Item{ID: id, Title: title, Description: description}
			return f.items[i], nil
		}
	}
	return service.Item{}, service.ErrNotFound
}

// DeleteItem implements service.Backend.
func (f *FakeBackend) DeleteItem(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["delete"]++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, item := range f.items {
		if item.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}
