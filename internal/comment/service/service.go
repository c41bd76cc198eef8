package service

import (
	"context"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
)

// Remote is the part of the book service a discussion depends on.
type Remote interface {
	GetBook(ctx context.Context, bookID model.ID) (model.Book, error)
	Verify(ctx context.Context) (model.Viewer, error)
	ListComments(ctx context.Context, bookID model.ID) ([]model.Comment, error)
	CreateComment(ctx context.Context, bookID model.ID, content string, parentID *model.ID) (model.Comment, error)
	React(ctx context.Context, commentID model.ID, kind model.Reaction) (model.Reactions, error)
	TogglePin(ctx context.Context, commentID model.ID) (bool, error)
	DeleteComment(ctx context.Context, commentID model.ID) error
}

// Confirmer asks the viewer to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, c model.Comment) bool
}

type ConfirmFunc func(ctx context.Context, c model.Comment) bool

func (f ConfirmFunc) Confirm(ctx context.Context, c model.Comment) bool { return f(ctx, c) }

// Confirmed approves everything. Use it when the approval was collected
// before the call.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, model.Comment) bool { return true })

type Options struct {
	// CascadeDelete removes the whole local subtree of a deleted comment
	// instead of the comment and its direct replies only.
	CascadeDelete bool
}
