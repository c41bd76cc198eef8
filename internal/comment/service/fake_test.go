package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/remote"
)

const (
	testBook   model.ID = "book-1"
	bookAuthor model.ID = "author"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeRemote answers from func fields and counts calls per operation.
type fakeRemote struct {
	mu    sync.Mutex
	calls map[string]int

	GetBookFunc   func(ctx context.Context, bookID model.ID) (model.Book, error)
	VerifyFunc    func(ctx context.Context) (model.Viewer, error)
	ListFunc      func(ctx context.Context, bookID model.ID) ([]model.Comment, error)
	CreateFunc    func(ctx context.Context, bookID model.ID, content string, parentID *model.ID) (model.Comment, error)
	ReactFunc     func(ctx context.Context, id model.ID, kind model.Reaction) (model.Reactions, error)
	TogglePinFunc func(ctx context.Context, id model.ID) (bool, error)
	DeleteFunc    func(ctx context.Context, id model.ID) error
}

func newFakeRemote(viewer model.Viewer, comments ...model.Comment) *fakeRemote {
	f := &fakeRemote{calls: make(map[string]int)}
	f.GetBookFunc = func(ctx context.Context, bookID model.ID) (model.Book, error) {
		return model.Book{ID: bookID, AuthorID: bookAuthor}, nil
	}
	f.VerifyFunc = func(ctx context.Context) (model.Viewer, error) {
		if !viewer.Authenticated() {
			return model.Viewer{}, remote.ErrNoToken
		}
		return viewer, nil
	}
	f.ListFunc = func(ctx context.Context, bookID model.ID) ([]model.Comment, error) {
		return append([]model.Comment(nil), comments...), nil
	}
	f.CreateFunc = func(ctx context.Context, bookID model.ID, content string, parentID *model.ID) (model.Comment, error) {
		n := f.count("create")
		return model.Comment{
			ID:        model.ID(fmt.Sprintf("new-%d", n)),
			Content:   content,
			UserID:    viewer.ID,
			Username:  viewer.Username,
			ParentID:  parentID,
			CreatedAt: t0.Add(time.Hour),
		}, nil
	}
	f.ReactFunc = func(ctx context.Context, id model.ID, kind model.Reaction) (model.Reactions, error) {
		return model.Reactions{Likes: 1}, nil
	}
	f.TogglePinFunc = func(ctx context.Context, id model.ID) (bool, error) {
		return true, nil
	}
	f.DeleteFunc = func(ctx context.Context, id model.ID) error { return nil }
	return f
}

func (f *fakeRemote) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeRemote) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeRemote) GetBook(ctx context.Context, bookID model.ID) (model.Book, error) {
	f.record("get_book")
	return f.GetBookFunc(ctx, bookID)
}

func (f *fakeRemote) Verify(ctx context.Context) (model.Viewer, error) {
	f.record("verify")
	return f.VerifyFunc(ctx)
}

func (f *fakeRemote) ListComments(ctx context.Context, bookID model.ID) ([]model.Comment, error) {
	f.record("list")
	return f.ListFunc(ctx, bookID)
}

func (f *fakeRemote) CreateComment(ctx context.Context, bookID model.ID, content string, parentID *model.ID) (model.Comment, error) {
	f.record("create")
	return f.CreateFunc(ctx, bookID, content, parentID)
}

func (f *fakeRemote) React(ctx context.Context, id model.ID, kind model.Reaction) (model.Reactions, error) {
	f.record("react")
	return f.ReactFunc(ctx, id, kind)
}

func (f *fakeRemote) TogglePin(ctx context.Context, id model.ID) (bool, error) {
	f.record("pin")
	return f.TogglePinFunc(ctx, id)
}

func (f *fakeRemote) DeleteComment(ctx context.Context, id model.ID) error {
	f.record("delete")
	return f.DeleteFunc(ctx, id)
}

func comment(id, parent string, minute int, pinned bool) model.Comment {
	c := model.Comment{
		ID:        model.ID(id),
		Content:   "comment " + id,
		UserID:    "alice",
		Username:  "alice",
		CreatedAt: t0.Add(time.Duration(minute) * time.Minute),
		Pinned:    pinned,
	}
	if parent != "" {
		p := model.ID(parent)
		c.ParentID = &p
	}
	return c
}

func by(c model.Comment, user model.ID) model.Comment {
	c.UserID = user
	c.Username = string(user)
	return c
}

func openSession(f *fakeRemote, opts Options) *Session {
	s := NewSession(testBook, f, nil, opts, zerolog.Nop())
	s.Open(context.Background())
	return s
}

func rootIDs(nodes []model.Node) []model.ID {
	out := make([]model.ID, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func findNode(nodes []model.Node, id model.ID) (model.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if found, ok := findNode(n.Children, id); ok {
			return found, true
		}
	}
	return model.Node{}, false
}

func equalIDs(a, b []model.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
