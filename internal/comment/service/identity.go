package service

import (
	"sync"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
)

// identity is who is looking at a discussion and who wrote the book.
type identity struct {
	mu     sync.RWMutex
	viewer model.Viewer
	author model.ID
}

func (i *identity) get() (model.Viewer, model.ID) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.viewer, i.author
}

func (i *identity) setViewer(v model.Viewer) {
	i.mu.Lock()
	i.viewer = v
	i.mu.Unlock()
}

func (i *identity) setAuthor(a model.ID) {
	i.mu.Lock()
	i.author = a
	i.mu.Unlock()
}

// capabilities looks the comment up and derives what the viewer may do with it.
func (i *identity) capabilities(repo *Repository, id model.ID) (model.Comment, model.Capabilities, bool) {
	c, found := repo.Get(id)
	if !found {
		return model.Comment{}, model.Capabilities{}, false
	}
	viewer, author := i.get()
	return c, model.CapabilitiesFor(viewer, c, author), true
}
