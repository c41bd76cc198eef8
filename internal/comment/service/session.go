package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/storage"
)

// Session is one viewer's discussion of one book.
type Session struct {
	bookID model.ID
	remote Remote
	repo   *Repository
	who    *identity
	ready  atomic.Bool
	log    zerolog.Logger

	Reactions  *ReactionEngine
	Moderation *ModerationEngine
	Composer   *Composer
}

func NewSession(bookID model.ID, r Remote, snaps storage.Snapshots, opts Options, log zerolog.Logger) *Session {
	log = log.With().Str("book_id", string(bookID)).Logger()
	repo := NewRepository(bookID, r, snaps, log)
	who := &identity{}

	return &Session{
		bookID: bookID,
		remote: r,
		repo:   repo,
		who:    who,
		log:    log,
		Reactions: &ReactionEngine{
			repo: repo, remote: r, who: who,
			log: log.With().Str("component", "reactions").Logger(),
		},
		Moderation: &ModerationEngine{
			repo: repo, remote: r, who: who, cascade: opts.CascadeDelete,
			log: log.With().Str("component", "moderation").Logger(),
		},
		Composer: &Composer{
			bookID: bookID, repo: repo, remote: r, who: who,
			log: log.With().Str("component", "composer").Logger(),
		},
	}
}

func (s *Session) Repository() *Repository { return s.repo }

// Ready reports whether the book itself is known. Without it nobody holds
// author privileges.
func (s *Session) Ready() bool { return s.ready.Load() }

// Open fetches the book, the viewer and the comments concurrently. A failure
// to fetch the book is returned; the comment load outcome is otherwise.
func (s *Session) Open(ctx context.Context) Result {
	var (
		g    errgroup.Group
		load Result
	)

	g.Go(func() error {
		book, err := s.remote.GetBook(ctx, s.bookID)
		if err != nil {
			return fmt.Errorf("get book %s: %w", s.bookID, err)
		}
		s.who.setAuthor(book.AuthorID)
		s.ready.Store(true)
		return nil
	})
	g.Go(func() error {
		s.refreshViewer(ctx)
		return nil
	})
	g.Go(func() error {
		load = s.repo.Load(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("open discussion")
		return remoteFailure(err)
	}
	return load
}

// Reload re-reads the viewer and the comment set.
func (s *Session) Reload(ctx context.Context) Result {
	s.refreshViewer(ctx)
	return s.repo.Load(ctx)
}

// refreshViewer resolves the token owner. Any failure means anonymous.
func (s *Session) refreshViewer(ctx context.Context) {
	v, err := s.remote.Verify(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("verify viewer, continuing anonymously")
		v = model.Viewer{}
	}
	s.who.setViewer(v)
}

// View projects the current comment set for rendering.
func (s *Session) View() model.Discussion {
	viewer, author := s.who.get()
	all := s.repo.All()
	nodes, orphaned := Project(all, viewer, author)
	st := s.repo.status()

	d := model.Discussion{
		BookID:      s.bookID,
		Viewer:      viewer,
		Comments:    nodes,
		Total:       len(all),
		Orphaned:    orphaned,
		State:       st.state,
		Stale:       st.stale,
		ReplyTarget: s.Composer.ReplyTarget(),
		Prompt:      s.Composer.Prompt(),
		CanCompose:  viewer.Authenticated(),
	}
	if st.state == model.LoadFailed {
		d.Error = "Failed to load comments"
	}
	return d
}
