package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage/inmemory"
)

// ticket orders operations by the moment they were issued.
type ticket uint64

// Repository holds the flat comment set of one book.
//
// Every remote call takes a ticket before it is sent. A load is applied only
// if nothing issued after it has been applied already, so a slow reload can
// never overwrite the effect of a newer reaction, pin or delete.
type Repository struct {
	bookID model.ID
	remote Remote
	snaps  storage.Snapshots
	log    zerolog.Logger

	// persistMu orders snapshot writes; each write reads the set while
	// holding it, so the last write always carries the latest set.
	persistMu sync.Mutex

	mu      sync.Mutex
	set     *inmemory.Set
	issued  ticket
	applied ticket
	state   model.LoadState
	stale   bool
	loadErr error
}

func NewRepository(bookID model.ID, r Remote, snaps storage.Snapshots, log zerolog.Logger) *Repository {
	if snaps == nil {
		snaps = storage.Nop{}
	}
	return &Repository{
		bookID: bookID,
		remote: r,
		snaps:  snaps,
		log:    log,
		set:    inmemory.New(),
		state:  model.LoadIdle,
	}
}

func (r *Repository) begin() ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	return r.issued
}

func (r *Repository) markApplied(t ticket) {
	if t > r.applied {
		r.applied = t
	}
}

// Load fetches the full comment set. On failure the current set is kept and
// the state turns to failed; a first failed load falls back to the last
// snapshot, if any.
func (r *Repository) Load(ctx context.Context) Result {
	t := r.begin()

	r.mu.Lock()
	if r.state == model.LoadIdle {
		r.state = model.LoadLoading
	}
	r.mu.Unlock()

	comments, err := r.remote.ListComments(ctx, r.bookID)
	if err != nil {
		r.log.Error().Err(err).Str("book_id", string(r.bookID)).Msg("load comments")
		if !r.loadFailed(ctx, t, err) {
			return fail(KindStale, ErrStale)
		}
		return remoteFailure(err)
	}

	r.mu.Lock()
	if t < r.applied {
		r.mu.Unlock()
		r.log.Debug().Str("book_id", string(r.bookID)).Uint64("ticket", uint64(t)).Msg("discard stale load")
		return fail(KindStale, ErrStale)
	}
	r.set.Reset(comments)
	r.markApplied(t)
	r.state = model.LoadLoaded
	r.stale = false
	r.loadErr = nil
	r.mu.Unlock()

	r.persist(ctx)
	return ok
}

// loadFailed records a failed load issued at t. It reports false when
// something newer has been applied meanwhile; the failure is then dropped.
func (r *Repository) loadFailed(ctx context.Context, t ticket, err error) bool {
	r.mu.Lock()
	if t < r.applied {
		r.mu.Unlock()
		r.log.Debug().Str("book_id", string(r.bookID)).Uint64("ticket", uint64(t)).Msg("discard stale load failure")
		return false
	}
	r.state = model.LoadFailed
	r.loadErr = err
	seed := r.applied == 0 && r.set.Len() == 0
	r.mu.Unlock()

	if !seed {
		return true
	}

	cached, serr := r.snaps.Load(context.WithoutCancel(ctx), r.bookID)
	if errors.Is(serr, storage.ErrNoSnapshot) {
		return true
	}
	if serr != nil {
		r.log.Warn().Err(serr).Str("book_id", string(r.bookID)).Msg("load snapshot")
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.applied == 0 && r.set.Len() == 0 {
		r.set.Reset(cached)
		r.stale = true
	}
	return true
}

// Insert appends a server-returned comment.
func (r *Repository) Insert(ctx context.Context, c model.Comment) {
	r.insertAt(ctx, r.begin(), c)
}

func (r *Repository) insertAt(ctx context.Context, t ticket, c model.Comment) {
	r.mu.Lock()
	// A load issued after the create may already carry the new record.
	if t < r.applied {
		if _, dup := r.set.Get(c.ID); dup {
			r.mu.Unlock()
			return
		}
	}
	r.set.Insert(c)
	r.markApplied(t)
	r.mu.Unlock()

	r.persist(ctx)
}

// ReplaceByID patches one comment; unknown ids are ignored.
func (r *Repository) ReplaceByID(ctx context.Context, id model.ID, p model.Patch) bool {
	return r.replaceAt(ctx, r.begin(), id, p)
}

func (r *Repository) replaceAt(ctx context.Context, t ticket, id model.ID, p model.Patch) bool {
	r.mu.Lock()
	found := r.set.ReplaceByID(id, p)
	r.markApplied(t)
	r.mu.Unlock()

	if found {
		r.persist(ctx)
	}
	return found
}

// RemoveWhere drops every comment matching pred.
func (r *Repository) RemoveWhere(ctx context.Context, pred func(model.Comment) bool) int {
	return r.removeAt(ctx, r.begin(), pred)
}

func (r *Repository) removeAt(ctx context.Context, t ticket, pred func(model.Comment) bool) int {
	r.mu.Lock()
	n := r.set.RemoveWhere(pred)
	r.markApplied(t)
	r.mu.Unlock()

	if n > 0 {
		r.persist(ctx)
	}
	return n
}

// removeSubtreeAt drops id and all of its local descendants.
func (r *Repository) removeSubtreeAt(ctx context.Context, t ticket, id model.ID) int {
	r.mu.Lock()
	doomed := subtree(r.set.All(), id)
	n := r.set.RemoveWhere(func(c model.Comment) bool {
		_, ok := doomed[c.ID]
		return ok
	})
	r.markApplied(t)
	r.mu.Unlock()

	if n > 0 {
		r.persist(ctx)
	}
	return n
}

func subtree(all []model.Comment, root model.ID) map[model.ID]struct{} {
	children := make(map[model.ID][]model.ID, len(all))
	for _, c := range all {
		if !c.IsRoot() {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	out := map[model.ID]struct{}{root: {}}
	stack := []model.ID{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, ch := range children[n] {
			if _, seen := out[ch]; seen {
				continue
			}
			out[ch] = struct{}{}
			stack = append(stack, ch)
		}
	}
	return out
}

func (r *Repository) Get(id model.ID) (model.Comment, bool) {
	return r.set.Get(id)
}

// All returns the flat set in arrival order.
func (r *Repository) All() []model.Comment {
	return r.set.All()
}

type loadStatus struct {
	state model.LoadState
	stale bool
	err   error
}

func (r *Repository) status() loadStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return loadStatus{state: r.state, stale: r.stale, err: r.loadErr}
}

func (r *Repository) persist(ctx context.Context) {
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	if err := r.snaps.Save(context.WithoutCancel(ctx), r.bookID, r.set.All()); err != nil {
		r.log.Warn().Err(err).Str("book_id", string(r.bookID)).Msg("save snapshot")
	}
}
