package service

import (
	"sort"

	"github.com/MyNameIsWhaaat/bookcomments/internal/comment/model"
)

// displayBefore orders siblings: pinned first, then newest first. Equal keys
// keep their arrival order because callers sort stably.
func displayBefore(a, b model.Comment) bool {
	if a.Pinned != b.Pinned {
		return a.Pinned
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Project turns the flat set into the ordered forest that gets rendered, with
// the viewer's capabilities attached to every node. It also reports how many
// comments are unreachable from any root.
func Project(comments []model.Comment, viewer model.Viewer, bookAuthor model.ID) ([]model.Node, int) {
	p := projector{
		comments: comments,
		children: make(map[model.ID][]int, len(comments)),
		placed:   make([]bool, len(comments)),
		viewer:   viewer,
		author:   bookAuthor,
	}

	roots := make([]int, 0, len(comments))
	for i, c := range comments {
		if c.IsRoot() {
			roots = append(roots, i)
			continue
		}
		p.children[*c.ParentID] = append(p.children[*c.ParentID], i)
	}

	nodes := p.build(roots, 0)
	return nodes, len(comments) - p.count
}

type projector struct {
	comments []model.Comment
	children map[model.ID][]int
	placed   []bool
	count    int

	viewer model.Viewer
	author model.ID
}

func (p *projector) build(idx []int, depth int) []model.Node {
	sort.SliceStable(idx, func(i, j int) bool {
		return displayBefore(p.comments[idx[i]], p.comments[idx[j]])
	})

	out := make([]model.Node, 0, len(idx))
	for _, i := range idx {
		// Malformed data (duplicate ids, cycles) must not place a node twice.
		if p.placed[i] {
			continue
		}
		p.placed[i] = true
		p.count++

		c := p.comments[i]
		n := model.Node{
			Comment:      c,
			Depth:        depth,
			Capabilities: model.CapabilitiesFor(p.viewer, c, p.author),
		}
		n.Children = p.build(p.children[c.ID], depth+1)
		delete(p.children, c.ID)
		out = append(out, n)
	}
	return out
}
