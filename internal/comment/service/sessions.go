package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage"
)

// Sessions keeps one open session per book.
type Sessions struct {
	remote Remote
	snaps  storage.Snapshots
	opts   Options
	log    zerolog.Logger

	mu     sync.RWMutex
	byBook map[model.ID]*Session
	group  singleflight.Group
}

func New(r Remote, snaps storage.Snapshots, opts Options, log zerolog.Logger) *Sessions {
	return &Sessions{
		remote: r,
		snaps:  snaps,
		opts:   opts,
		log:    log,
		byBook: make(map[model.ID]*Session),
	}
}

// Get returns the session of a book, opening it on first use. Concurrent
// first calls share one open.
func (s *Sessions) Get(ctx context.Context, bookID model.ID) (*Session, Result) {
	s.mu.RLock()
	sess, found := s.byBook[bookID]
	s.mu.RUnlock()
	if found {
		return sess, ok
	}

	type opened struct {
		sess *Session
		res  Result
	}
	v, _, _ := s.group.Do(string(bookID), func() (any, error) {
		s.mu.RLock()
		existing, found := s.byBook[bookID]
		s.mu.RUnlock()
		if found {
			return opened{sess: existing, res: ok}, nil
		}

		// Shared by every waiter, so one caller going away must not cancel it.
		sess := NewSession(bookID, s.remote, s.snaps, s.opts, s.log)
		res := sess.Open(context.WithoutCancel(ctx))
		if !sess.Ready() {
			return opened{res: res}, nil
		}

		s.mu.Lock()
		s.byBook[bookID] = sess
		s.mu.Unlock()
		return opened{sess: sess, res: res}, nil
	})

	o := v.(opened)
	return o.sess, o.res
}

// Forget drops a book's session so the next Get opens it again.
func (s *Sessions) Forget(bookID model.ID) {
	s.mu.Lock()
	delete(s.byBook, bookID)
	s.mu.Unlock()
}
