package model

// Capabilities lists what a viewer may do with one comment.
type Capabilities struct {
	CanReact     bool `json:"can_react"`
	CanReply     bool `json:"can_reply"`
	CanPin       bool `json:"can_pin"`
	CanDelete    bool `json:"can_delete"`
	ByBookAuthor bool `json:"by_book_author"`
}

// CapabilitiesFor derives the capability set of viewer on c inside a book
// written by bookAuthor. Pinning is offered on root comments only.
func CapabilitiesFor(viewer Viewer, c Comment, bookAuthor ID) Capabilities {
	caps := Capabilities{
		ByBookAuthor: bookAuthor != "" && c.UserID == bookAuthor,
	}
	if !viewer.Authenticated() {
		return caps
	}

	isBookAuthor := viewer.ID == bookAuthor
	caps.CanReact = true
	caps.CanReply = true
	caps.CanPin = isBookAuthor && c.IsRoot()
	caps.CanDelete = isBookAuthor || viewer.ID == c.UserID
	return caps
}
