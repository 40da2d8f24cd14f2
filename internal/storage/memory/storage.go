package memorystorage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lomoval/otus-golang/events_manager/internal/storage"
)

type Storage struct {
	mu        sync.RWMutex
	data      map[int64]storage.Event
	idSeq     int64
	connected bool
}

func New() *Storage {
	return &Storage{data: make(map[int64]storage.Event)}
}

func (s *Storage) Connect(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *Storage) AddEvent(_ context.Context, e *storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return storage.ErrStorageClosed
	}

	e.ID = s.nextID()
	s.data[e.ID] = copyEvent(*e)
	return nil
}

func (s *Storage) GetEvents(_ context.Context) ([]storage.Event, error) {
	return s.selectBy(func(storage.Event) bool { return true })
}

func (s *Storage) GetEvent(_ context.Context, id int64) (storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return storage.Event{}, storage.ErrStorageClosed
	}

	e, ok := s.data[id]
	if !ok {
		return storage.Event{}, fmt.Errorf("event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return copyEvent(e), nil
}

func (s *Storage) UpdateEvent(_ context.Context, e storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return storage.ErrStorageClosed
	}

	if _, ok := s.data[e.ID]; !ok {
		return fmt.Errorf("failed to update event with id %d: %w", e.ID, storage.ErrNotFoundEvent)
	}
	s.data[e.ID] = copyEvent(e)
	return nil
}

func (s *Storage) RemoveEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return storage.ErrStorageClosed
	}

	if _, ok := s.data[id]; !ok {
		return fmt.Errorf("failed to remove event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	delete(s.data, id)
	return nil
}

// SearchEvents folds ASCII letters only, as SQLite LIKE does.
func (s *Storage) SearchEvents(_ context.Context, term string) ([]storage.Event, error) {
	term = asciiLower(term)
	contains := func(v *string) bool {
		return v != nil && strings.Contains(asciiLower(*v), term)
	}
	return s.selectBy(func(e storage.Event) bool {
		return contains(&e.Title) || contains(e.Description) || contains(e.Location)
	})
}

// Events are returned in ID order.
func (s *Storage) selectBy(match func(storage.Event) bool) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return nil, storage.ErrStorageClosed
	}

	events := make([]storage.Event, 0)
	for _, e := range s.data {
		if match(e) {
			events = append(events, copyEvent(e))
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events, nil
}

// IDs are never reused, even after removal.
func (s *Storage) nextID() int64 {
	s.idSeq++
	return s.idSeq
}

func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + 'a' - 'A'
		}
		return r
	}, s)
}

func copyEvent(e storage.Event) storage.Event {
	e.Description = copyString(e.Description)
	e.Date = copyString(e.Date)
	e.Location = copyString(e.Location)
	return e
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	return storage.String(*s)
}
