package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
)

// ModerationEngine pins and deletes comments on behalf of the viewer.
type ModerationEngine struct {
	repo    *Repository
	remote  Remote
	who     *identity
	cascade bool
	log     zerolog.Logger
}

// TogglePin flips the pinned flag of a root comment. Only the book author may
// do it.
func (e *ModerationEngine) TogglePin(ctx context.Context, commentID model.ID) Result {
	_, caps, found := e.who.capabilities(e.repo, commentID)
	if !found {
		return fail(KindNotFound, ErrNotFound)
	}
	if !caps.CanPin {
		return fail(KindForbidden, ErrForbidden)
	}

	t := e.repo.begin()
	pinned, err := e.remote.TogglePin(ctx, commentID)
	if err != nil {
		e.log.Error().Err(err).Str("comment_id", string(commentID)).Msg("toggle pin")
		return remoteFailure(err)
	}

	e.repo.replaceAt(ctx, t, commentID, model.Patch{Pinned: &pinned})
	return ok
}

// Delete removes a comment after the viewer confirms. Locally the comment goes
// together with its direct replies; deeper replies stay in the set, detached
// from the tree, until the next reload. With cascading enabled the whole local
// subtree goes.
func (e *ModerationEngine) Delete(ctx context.Context, commentID model.ID, confirm Confirmer) Result {
	c, caps, found := e.who.capabilities(e.repo, commentID)
	if !found {
		return fail(KindNotFound, ErrNotFound)
	}
	if !caps.CanDelete {
		return fail(KindForbidden, ErrForbidden)
	}
	if confirm == nil || !confirm.Confirm(ctx, c) {
		return fail(KindUnconfirmed, ErrNotConfirmed)
	}

	t := e.repo.begin()
	if err := e.remote.DeleteComment(ctx, commentID); err != nil {
		e.log.Error().Err(err).Str("comment_id", string(commentID)).Msg("delete comment")
		return remoteFailure(err)
	}

	var removed int
	if e.cascade {
		removed = e.repo.removeSubtreeAt(ctx, t, commentID)
	} else {
		removed = e.repo.removeAt(ctx, t, func(x model.Comment) bool {
			return x.ID == commentID || x.IsChildOf(commentID)
		})
	}
	e.log.Debug().Str("comment_id", string(commentID)).Int("removed", removed).Msg("comment deleted")
	return ok
}
