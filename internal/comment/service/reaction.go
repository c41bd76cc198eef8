package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
)

// ReactionEngine sends likes and dislikes. Counts are never predicted locally;
// whatever the book service answers replaces them.
type ReactionEngine struct {
	repo   *Repository
	remote Remote
	who    *identity
	log    zerolog.Logger
}

func (e *ReactionEngine) React(ctx context.Context, commentID model.ID, kind model.Reaction) Result {
	viewer, _ := e.who.get()
	if !viewer.Authenticated() {
		return fail(KindSkipped, ErrNotAuthenticated)
	}
	if !kind.Valid() {
		return fail(KindValidation, ErrInvalidReaction)
	}

	t := e.repo.begin()
	counts, err := e.remote.React(ctx, commentID, kind)
	if err != nil {
		e.log.Error().Err(err).
			Str("comment_id", string(commentID)).
			Str("reaction", string(kind)).
			Msg("react")
		return remoteFailure(err)
	}

	e.repo.replaceAt(ctx, t, commentID, model.Patch{Reactions: &counts})
	return ok
}
