package service

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
)

const (
	promptComment = "Write a comment..."
	promptReply   = "Write a reply..."
)

// Composer holds the draft and the comment being replied to.
type Composer struct {
	bookID model.ID
	repo   *Repository
	remote Remote
	who    *identity
	log    zerolog.Logger

	mu     sync.Mutex
	target *model.ID
	text   string
}

func (c *Composer) SetReplyTarget(id model.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = &id
}

func (c *Composer) ClearReplyTarget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = nil
}

func (c *Composer) ReplyTarget() *model.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target == nil {
		return nil
	}
	id := *c.target
	return &id
}

func (c *Composer) SetText(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = s
}

func (c *Composer) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

func (c *Composer) Prompt() string {
	if c.ReplyTarget() != nil {
		return promptReply
	}
	return promptComment
}

// Submit posts the draft as a root comment or as a reply to the current
// target. The parent is not checked locally: a reply to a comment that is not
// loaded is sent anyway and stays detached from the tree until its parent
// shows up.
func (c *Composer) Submit(ctx context.Context) (model.Comment, Result) {
	viewer, _ := c.who.get()
	if !viewer.Authenticated() {
		return model.Comment{}, fail(KindSkipped, ErrNotAuthenticated)
	}

	c.mu.Lock()
	text := c.text
	var parent *model.ID
	if c.target != nil {
		id := *c.target
		parent = &id
	}
	c.mu.Unlock()

	if err := validateText(text); err != nil {
		return model.Comment{}, fail(KindValidation, err)
	}

	t := c.repo.begin()
	created, err := c.remote.CreateComment(ctx, c.bookID, text, parent)
	if err != nil {
		ev := c.log.Error().Err(err).Str("book_id", string(c.bookID))
		if parent != nil {
			ev = ev.Str("parent_id", string(*parent))
		}
		ev.Msg("create comment")
		return model.Comment{}, remoteFailure(err)
	}

	c.repo.insertAt(ctx, t, created)

	// The viewer may have edited the draft or picked another target while
	// the request was in flight; only what was sent is cleared.
	c.mu.Lock()
	if c.text == text {
		c.text = ""
	}
	if sameTarget(c.target, parent) {
		c.target = nil
	}
	c.mu.Unlock()

	return created, ok
}

func sameTarget(a, b *model.ID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyContent
	}
	return nil
}
