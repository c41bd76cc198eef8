package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// ID is an opaque identifier assigned by the book service. Numeric and string
// ids on the wire both decode into it.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errors.New("empty id")
	}
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type Comment struct {
	ID        ID        `json:"id"`
	Content   string    `json:"content"`
	UserID    ID        `json:"user_id"`
	Username  string    `json:"username"`
	ParentID  *ID       `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	Pinned    bool      `json:"is_pinned"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
}

// IsRoot reports whether the comment is attached directly to the book.
func (c Comment) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// IsChildOf reports whether parent is the direct parent of c.
func (c Comment) IsChildOf(parent ID) bool {
	return !c.IsRoot() && *c.ParentID == parent
}

type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

func (r Reaction) Valid() bool {
	return r == ReactionLike || r == ReactionDislike
}

// Reactions is the authoritative count pair returned by the book service after
// a reaction.
type Reactions struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Patch is a partial update applied to a single comment. Nil fields are left
// untouched.
type Patch struct {
	Reactions *Reactions
	Pinned    *bool
}

func (p Patch) Apply(c *Comment) {
	if p.Reactions != nil {
		c.Likes = p.Reactions.Likes
		c.Dislikes = p.Reactions.Dislikes
	}
	if p.Pinned != nil {
		c.Pinned = *p.Pinned
	}
}

type Node struct {
	Comment
	Depth        int          `json:"depth"`
	Capabilities Capabilities `json:"capabilities"`
	Children     []Node       `json:"children"`
}

// Book is the content item a discussion is attached to.
type Book struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	AuthorID ID     `json:"user_id"`
	Author   string `json:"author_name"`
}

// Viewer is the identity acting on a discussion. The zero value is anonymous.
type Viewer struct {
	ID       ID     `json:"id"`
	Username string `json:"username"`
}

func (v Viewer) Authenticated() bool { return v.ID != "" }

type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadLoaded  LoadState = "loaded"
	LoadFailed  LoadState = "failed"
)

// Discussion is the rendered state of one book's comment section.
type Discussion struct {
	BookID      ID        `json:"book_id"`
	Viewer      Viewer    `json:"viewer"`
	Comments    []Node    `json:"comments"`
	Total       int       `json:"total"`
	Orphaned    int       `json:"orphaned"`
	State       LoadState `json:"state"`
	Stale       bool      `json:"stale"`
	Error       string    `json:"error,omitempty"`
	ReplyTarget *ID       `json:"reply_target"`
	Prompt      string    `json:"prompt"`
	CanCompose  bool      `json:"can_compose"`
}
