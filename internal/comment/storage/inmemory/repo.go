package inmemory

import (
	"context"
	"sync"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage"
)

// Set is the flat, unordered comment set of one book. Records keep the order
// in which they arrived; the projection relies on it to break ties.
type Set struct {
	mu sync.RWMutex

	items []model.Comment
	pos   map[model.ID]int
}

func New() *Set {
	return &Set{pos: make(map[model.ID]int)}
}

// Reset replaces the whole set.
func (s *Set) Reset(comments []model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(make([]model.Comment, 0, len(comments)), comments...)
	s.reindexLocked()
}

// Insert appends c. Ids are not de-duplicated.
func (s *Set) Insert(c model.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, c)
	if _, ok := s.pos[c.ID]; !ok {
		s.pos[c.ID] = len(s.items) - 1
	}
}

// ReplaceByID patches the first record with the given id. It reports whether
// a record was found.
func (s *Set) ReplaceByID(id model.ID, p model.Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.pos[id]
	if !ok {
		return false
	}
	p.Apply(&s.items[i])
	return true
}

// RemoveWhere drops every record matching pred and returns how many went.
func (s *Set) RemoveWhere(pred func(model.Comment) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.items[:0]
	for _, c := range s.items {
		if !pred(c) {
			out = append(out, c)
		}
	}
	removed := len(s.items) - len(out)
	s.items = append([]model.Comment(nil), out...)
	s.reindexLocked()
	return removed
}

func (s *Set) Get(id model.ID) (model.Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.pos[id]
	if !ok {
		return model.Comment{}, false
	}
	return s.items[i], true
}

// All returns a copy of the set in arrival order.
func (s *Set) All() []model.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append(make([]model.Comment, 0, len(s.items)), s.items...)
}

func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Set) reindexLocked() {
	s.pos = make(map[model.ID]int, len(s.items))
	for i, c := range s.items {
		if _, ok := s.pos[c.ID]; !ok {
			s.pos[c.ID] = i
		}
	}
}

// Snapshots is a process-local storage.Snapshots.
type Snapshots struct {
	mu     sync.RWMutex
	byBook map[model.ID][]model.Comment
}

func NewSnapshots() *Snapshots {
	return &Snapshots{byBook: make(map[model.ID][]model.Comment)}
}

func (s *Snapshots) Save(ctx context.Context, bookID model.ID, comments []model.Comment) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byBook[bookID] = append([]model.Comment(nil), comments...)
	return nil
}

func (s *Snapshots) Load(ctx context.Context, bookID model.ID) ([]model.Comment, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byBook[bookID]
	if !ok {
		return nil, storage.ErrNoSnapshot
	}
	return append([]model.Comment(nil), c...), nil
}
