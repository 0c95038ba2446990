// Package memory implements service.Backend over an in-memory collection
// seeded from fixture data.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"labposts/internal/service"
)

// Store is an echo-style posts collection held in memory.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	items   []service.Item
	nextID  int
	latency time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLatency delays every operation by d, honoring context cancellation.
func WithLatency(d time.Duration) Option {
	return func(s *Store) {
		s.latency = d
	}
}

// New creates a Store holding a copy of items. IDs for new items continue
// after the largest seeded ID.
func New(items []service.Item, opts ...Option) *Store {
	s := &Store{
		items:  make([]service.Item, 0, len(items)),
		nextID: 1,
	}
	for _, item := range items {
		item.Completed = false
		s.items = append(s.items, item)
		if item.ID >= s.nextID {
			s.nextID = item.ID + 1
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListItems implements service.Backend.
func (s *Store) ListItems(ctx context.Context) ([]service.Item, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]service.Item, len(s.items))
	copy(result, s.items)
	return result, nil
}

// GetItem implements service.Backend.
func (s *Store) GetItem(ctx context.Context, id int) (service.Item, error) {
	if err := s.wait(ctx); err != nil {
		return service.Item{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return service.Item{}, fmt.Errorf("post %d: %w", id, service.ErrNotFound)
	}
	return s.items[i], nil
}

// CreateItem implements service.Backend.
func (s *Store) CreateItem(ctx context.Context, title, description string) (service.Item, error) {
	if err := s.wait(ctx); err != nil {
		return service.Item{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item := service.Item{ID: s.nextID, Title: title, Description: description}
	s.nextID++
	s.items = append(s.items, item)
	return item, nil
}

// ReplaceItem implements service.Backend.
func (s *Store) ReplaceItem(ctx context.Context, id int, title, description string) (service.Item, error) {
	if err := s.wait(ctx); err != nil {
		return service.Item{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return service.Item{}, fmt.Errorf("post %d: %w", id, service.ErrNotFound)
	}
	s.items[i] = service.Item{ID: id, Title: title, Description: description}
	return s.items[i], nil
}

// DeleteItem implements service.Backend.
func (s *Store) DeleteItem(ctx context.Context, id int) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("post %d: %w", id, service.ErrNotFound)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

// indexOf returns the position of id, or -1. Callers hold mu.
func (s *Store) indexOf(id int) int {
	for i, item := range s.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
