package storage

import (
	"context"
	"errors"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
)

var ErrNoSnapshot = errors.New("no snapshot")

// Snapshots keeps the last known flat comment set of each book so a session can
// show something when the book service is unreachable at startup.
type Snapshots interface {
	Save(ctx context.Context, bookID model.ID, comments []model.Comment) error
	Load(ctx context.Context, bookID model.ID) ([]model.Comment, error)
}

// Nop discards snapshots.
type Nop struct{}

func (Nop) Save(context.Context, model.ID, []model.Comment) error { return nil }

func (Nop) Load(context.Context, model.ID) ([]model.Comment, error) {
	return nil, ErrNoSnapshot
}
